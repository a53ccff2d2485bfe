// Package cli runs the shell in a window: it draws the canvas and dock,
// handles dock shortcuts and forwards joypad input to the core.
package cli

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	emubridge "github.com/Jabolol/gameboy/bridge/ebiten"
	"github.com/Jabolol/gameboy/catalog"
	"github.com/Jabolol/gameboy/core"
	"github.com/Jabolol/gameboy/prefs"
	"github.com/Jabolol/gameboy/theme"
	"github.com/Jabolol/gameboy/ui"
)

// noticeDuration is how long a dock notice stays visible.
const noticeDuration = 2 * time.Second

// Config wires a Runner to the rest of the shell.
type Config struct {
	Session *core.Session
	Prefs   *prefs.Preferences
	Output  ui.Output
	Canvas  *ui.Canvas
	Sampler *theme.Sampler

	// Flusher drops the previous game's queued audio on a switch. Nil when
	// there is no audio device.
	Flusher ui.Flusher

	// Copy puts text on the clipboard. Nil disables the share shortcut.
	Copy func(text string) error

	// ShareURL is prefixed to the game query in share links.
	ShareURL string
}

// Runner implements ebiten.Game.
type Runner struct {
	cfg      Config
	renderer *emubridge.Renderer
	frame    []byte // scratch for cores that implement core.FrameReader

	ctx    context.Context
	cancel context.CancelFunc

	// set by the session's goroutines, consumed by Update
	switched    atomic.Bool
	unsubscribe func()

	// the core was paused because the window lost focus
	paused bool

	notice      string
	noticeUntil time.Time
	now         func() time.Time
}

// NewRunner creates a runner and applies the stored volume to the output.
func NewRunner(cfg Config) *Runner {
	if cfg.Sampler == nil {
		cfg.Sampler = theme.NewSampler(theme.DefaultConfig())
	}
	if cfg.Output == nil {
		cfg.Output = ui.NewSilentOutput(cfg.Prefs.Volume())
	}
	cfg.Output.SetVolume(cfg.Prefs.Volume())

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		cfg:      cfg,
		renderer: emubridge.NewRenderer(),
		frame:    make([]byte, cfg.Canvas.Width()*cfg.Canvas.Height()*4),
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}

	r.unsubscribe = cfg.Session.Subscribe(func(st core.Status) {
		if st.Loading {
			r.cfg.Canvas.Clear()
			if r.cfg.Flusher != nil {
				r.cfg.Flusher.Flush()
			}
			r.switched.Store(true)
		}
		if st.Err != nil {
			log.Printf("session: %v", st.Err)
		}
	})
	return r
}

// WindowSize returns the window size for the current preferences.
func (r *Runner) WindowSize() (int, int) {
	return emubridge.ScreenSize(int(r.cfg.Prefs.Scale()), r.cfg.Prefs.Tiles())
}

func (r *Runner) resize() {
	ebiten.SetWindowSize(r.WindowSize())
}

func (r *Runner) setNotice(msg string) {
	r.notice = msg
	r.noticeUntil = r.now().Add(noticeDuration)
}

// Close cancels any game switch in progress and destroys the running game.
func (r *Runner) Close() {
	r.cancel()
	r.unsubscribe()
	if err := r.cfg.Session.Close(); err != nil {
		log.Printf("Warning: closing session: %v", err)
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if r.switched.Swap(false) {
		r.cfg.Sampler.Reset()
	}

	r.handleDock()
	r.pullFrame()

	focused := ebiten.IsFocused()
	r.setFocused(focused)
	if focused {
		r.pushInput()
	}

	if r.cfg.Prefs.Theme() == theme.ModeAuto {
		r.cfg.Sampler.Tick(r.cfg.Canvas)
	}
	return nil
}

// setFocused pauses the running instance when the window goes to the
// background and resumes it on return. Cores without Pauser keep running.
func (r *Runner) setFocused(focused bool) {
	if focused != r.paused {
		return
	}
	c, h := r.cfg.Session.Core()
	p, ok := c.(core.Pauser)
	if !ok || h == 0 {
		return
	}
	if focused {
		p.Resume(h)
	} else {
		p.Pause(h)
	}
	r.paused = !focused
}

func (r *Runner) handleDock() {
	p := r.cfg.Prefs

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		p.CycleScale()
		r.resize()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		p.VolumeDown()
		r.cfg.Output.SetVolume(p.Volume())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		p.VolumeUp()
		r.cfg.Output.SetVolume(p.Volume())
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		p.CycleTheme()
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		p.ToggleTiles()
		r.resize()
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		r.switchTo(r.current().Prev())
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		r.switchTo(r.current().Next())
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		r.share()
	}
}

func (r *Runner) current() catalog.Game {
	return r.cfg.Session.Status().Game
}

// switchTo runs the switch on its own goroutine since it sleeps through the
// core's cleanup delay.
func (r *Runner) switchTo(g catalog.Game) {
	if r.cfg.Session.Status().Loading {
		return
	}
	r.setNotice("loading " + g.DisplayName())
	go func() {
		if err := r.cfg.Session.Switch(r.ctx, g); err != nil {
			log.Printf("switch to %s: %v", g, err)
		}
	}()
}

// ShareLink returns the link that opens the running game.
func (r *Runner) ShareLink() (string, bool) {
	g := r.current()
	if g == "" {
		return "", false
	}
	return r.cfg.ShareURL + catalog.Query(g), true
}

func (r *Runner) share() {
	if r.cfg.Copy == nil {
		r.setNotice("clipboard unavailable")
		return
	}
	link, ok := r.ShareLink()
	if !ok {
		return
	}
	if err := r.cfg.Copy(link); err != nil {
		log.Printf("copy share link: %v", err)
		r.setNotice("copy failed")
		return
	}
	r.setNotice("copied " + link)
}

// pullFrame copies the current frame out of cores that do not publish to
// the canvas themselves.
func (r *Runner) pullFrame() {
	c, h := r.cfg.Session.Core()
	fr, ok := c.(core.FrameReader)
	if !ok || h == 0 {
		return
	}
	stride, rows, err := fr.ReadFrame(h, r.frame)
	if err != nil {
		return
	}
	r.cfg.Canvas.Update(r.frame, stride, rows)
}

func (r *Runner) pushInput() {
	c, h := r.cfg.Session.Core()
	in, ok := c.(core.InputSetter)
	if !ok || h == 0 {
		return
	}
	in.SetInput(h, uint32(PollJoypad()))
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	st := r.cfg.Session.Status()
	detected := r.cfg.Sampler.Detected()

	dark, background := theme.Effective(r.cfg.Prefs.Theme(), detected)
	bg, fg := emubridge.Palette(dark, background)
	screen.Fill(bg)

	scale := int(r.cfg.Prefs.Scale())
	switch {
	case st.Err != nil:
		r.renderer.DrawLines(screen, errorLines(st), 8, 8, fg)
	case !st.Initialized:
		r.renderer.DrawLines(screen, []string{"Loading..."}, 8, 8, fg)
	default:
		pixels, stride, rows := r.cfg.Canvas.Read()
		r.renderer.DrawCanvas(screen, pixels, stride, rows, scale, r.cfg.Prefs.Tiles())
	}

	notice := ""
	if r.now().Before(r.noticeUntil) {
		notice = r.notice
	}
	r.renderer.DrawDock(screen, emubridge.DockLines(emubridge.DockState{
		Game:     st.Game,
		Scale:    scale,
		Volume:   r.cfg.Prefs.Volume(),
		Theme:    r.cfg.Prefs.Theme(),
		Detected: detected,
		Tiles:    r.cfg.Prefs.Tiles(),
		Notice:   notice,
	}), fg)
}

func errorLines(st core.Status) []string {
	if !st.ModuleLoaded {
		return []string{
			"Error loading the emulator:",
			fmt.Sprint(st.Err),
			"Press Esc to quit.",
		}
	}
	return []string{
		"Error loading the game:",
		fmt.Sprint(st.Err),
		"Press [ or ] to try another game.",
	}
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
