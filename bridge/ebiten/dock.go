package ebiten

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jabolol/gameboy/catalog"
	"github.com/Jabolol/gameboy/theme"
)

// KeyHelp is the dock line listing the shortcuts.
const KeyHelp = "S scale  -/= volume  T theme  G tiles  [ ] game  C share  Esc quit"

// DockState is everything the dock shows.
type DockState struct {
	Game     catalog.Game
	Scale    int
	Volume   float64
	Theme    theme.Mode
	Detected theme.Detected
	Tiles    bool
	Notice   string
}

// VolumePercent rounds a volume in [0,1] to a whole percentage.
func VolumePercent(v float64) int {
	return int(math.Round(v * 100))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// DockLines renders the dock as text lines: settings, key help, notice.
func DockLines(s DockState) []string {
	name := "-"
	if s.Game != "" {
		name = s.Game.DisplayName()
	}

	mode := string(s.Theme)
	if s.Theme == theme.ModeAuto && s.Detected != "" {
		mode = fmt.Sprintf("auto (%s)", s.Detected)
	}

	settings := strings.Join([]string{
		name,
		fmt.Sprintf("%dx", s.Scale),
		fmt.Sprintf("vol %d%%", VolumePercent(s.Volume)),
		"theme " + mode,
		"tiles " + onOff(s.Tiles),
	}, " | ")

	return []string{settings, KeyHelp, s.Notice}
}
