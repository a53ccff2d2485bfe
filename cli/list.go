package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Jabolol/gameboy/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#306230", Dark: "#9bbc0f"})
	nameStyle  = lipgloss.NewStyle().Bold(true)
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"})
)

// PrintCatalog writes the game library to w, one game per line with the
// name to pass to -game.
func PrintCatalog(w io.Writer) error {
	width := 0
	for _, g := range catalog.Library {
		width = max(width, len(g.DisplayName()))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d games", len(catalog.Library))))
	b.WriteByte('\n')
	for _, g := range catalog.Library {
		name := g.DisplayName()
		b.WriteString(nameStyle.Render(name))
		b.WriteString(strings.Repeat(" ", width-len(name)+2))
		b.WriteString(fileStyle.Render(g.String()))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
