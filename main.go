package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"runtime"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"
	"github.com/sqweek/dialog"
	"golang.design/x/clipboard"

	"github.com/Jabolol/gameboy/catalog"
	"github.com/Jabolol/gameboy/cli"
	"github.com/Jabolol/gameboy/core"
	"github.com/Jabolol/gameboy/prefs"
	"github.com/Jabolol/gameboy/ui"
)

const windowTitle = "Game Boy"

// defaultCore is the file name of the native core library on this platform.
func defaultCore() string {
	switch runtime.GOOS {
	case "darwin":
		return "libgameboy.dylib"
	case "windows":
		return "gameboy.dll"
	}
	return "libgameboy.so"
}

// gameQuery turns the -game flag into a query string. Both "tetris" and
// "?game=tetris" are accepted.
func gameQuery(game string) string {
	if game == "" || strings.Contains(game, "=") {
		return game
	}
	return catalog.QueryParam + "=" + url.QueryEscape(game)
}

func main() {
	corePath := flag.String("core", defaultCore(), "native core library, or go:<name> for a registered Go core")
	game := flag.String("game", "", "game to load, by name (tetris) or query string (?game=tetris); random when empty or unknown")
	romDir := flag.String("roms", catalog.DefaultDir, "directory holding the ROM files")
	configDir := flag.String("config", "", "preferences directory (default: the user configuration directory)")
	list := flag.Bool("list", false, "list the games in the catalog and exit")
	shareURL := flag.String("share-url", "http://localhost:8080/", "base URL of share links")
	flag.Parse()

	if *list {
		if err := cli.PrintCatalog(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	p := prefs.Load(openBackend(*configDir), prefs.DefaultsFor(screenWidth()))

	canvas := ui.NewCanvas(ui.CanvasWidth, ui.CanvasHeight)

	var output ui.Output
	var sink core.AudioSink
	var flusher ui.Flusher
	player, err := ui.NewAudioPlayer(p.Volume())
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
		output = ui.NewSilentOutput(p.Volume())
	} else {
		output, sink, flusher = player, player, player
		defer player.Close()
	}

	session := core.NewSession(*romDir)
	loader := core.NewLoader(core.Opener(afero.NewOsFs(), canvas, sink))

	runner := cli.NewRunner(cli.Config{
		Session:  session,
		Prefs:    p,
		Output:   output,
		Canvas:   canvas,
		Flusher:  flusher,
		Copy:     clipboardWriter(),
		ShareURL: *shareURL,
	})

	selected := catalog.Select(gameQuery(*game), nil)
	if _, ok := catalog.FromQuery(gameQuery(*game)); *game != "" && !ok {
		log.Printf("Unknown game %q, loading %s instead", *game, selected)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c, err := loader.Load(ctx, *corePath)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				session.Fail(err)
				showError(err)
			}
			return
		}
		session.Attach(c)
		if err := session.Boot(selected); err != nil {
			log.Printf("Failed to boot %s: %v", selected, err)
		}
	}()

	ebiten.SetWindowSize(runner.WindowSize())
	ebiten.SetWindowTitle(windowTitle + " - " + selected.DisplayName())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err = ebiten.RunGame(runner)

	cancel()
	runner.Close()
	loader.Cleanup(*corePath)

	if err != nil {
		log.Fatal(err)
	}
}

// openBackend returns the preferences backend, or nil when no directory
// can be found. A nil backend keeps preferences in memory only.
func openBackend(dir string) prefs.Backend {
	if dir == "" {
		d, err := prefs.DefaultDir()
		if err != nil {
			log.Printf("Warning: preferences will not be saved: %v", err)
			return nil
		}
		dir = d
	}
	return prefs.NewFileBackend(afero.NewOsFs(), dir)
}

func screenWidth() int {
	m := ebiten.Monitor()
	if m == nil {
		return 0
	}
	w, _ := m.Size()
	return w
}

// clipboardWriter returns a func writing text to the system clipboard, or
// nil when there is no clipboard.
func clipboardWriter() func(string) error {
	if err := clipboard.Init(); err != nil {
		log.Printf("Warning: clipboard unavailable: %v", err)
		return nil
	}
	return func(text string) error {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return nil
	}
}

// showError reports a core load failure in a native dialog.
func showError(err error) {
	log.Printf("Failed to load the emulator: %v", err)
	dialog.Message("%s", fmt.Sprintf("Failed to load the emulator:\n\n%v", err)).Title(windowTitle).Error()
}
