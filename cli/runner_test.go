package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jabolol/gameboy/core"
	"github.com/Jabolol/gameboy/prefs"
	"github.com/Jabolol/gameboy/ui"
)

// frameCore renders a solid frame of one colour on request.
type frameCore struct {
	shade byte
	next  core.Handle
}

func (c *frameCore) Create(string) (core.Handle, error) {
	c.next++
	return c.next, nil
}

func (c *frameCore) Start(core.Handle) error   { return core.ErrUnwind }
func (c *frameCore) Destroy(core.Handle) error { return nil }

func (c *frameCore) ReadFrame(h core.Handle, dst []byte) (int, int, error) {
	if c.shade == 0 {
		return 0, 0, core.ErrNoFrame
	}
	for i := range dst {
		dst[i] = c.shade
	}
	return ui.CanvasWidth * 4, ui.CanvasHeight, nil
}

// pausingCore is a frameCore that records pause and resume requests.
type pausingCore struct {
	frameCore
	paused  []core.Handle
	resumed []core.Handle
}

func (c *pausingCore) Pause(h core.Handle)  { c.paused = append(c.paused, h) }
func (c *pausingCore) Resume(h core.Handle) { c.resumed = append(c.resumed, h) }

type countingFlusher struct {
	flushes int
}

func (f *countingFlusher) Flush() { f.flushes++ }

func newTestRunner(t *testing.T, c core.Core) (*Runner, *core.Session) {
	t.Helper()
	session := core.NewSession("ROMs")
	session.Attach(c)
	p := prefs.Load(nil, prefs.DefaultsFor(1024))

	r := NewRunner(Config{
		Session:  session,
		Prefs:    p,
		Canvas:   ui.NewCanvas(ui.CanvasWidth, ui.CanvasHeight),
		ShareURL: "https://gameboy.example/",
	})
	t.Cleanup(r.Close)
	return r, session
}

func TestNewRunner_AppliesVolume(t *testing.T) {
	out := ui.NewSilentOutput(1)
	p := prefs.Load(nil, prefs.DefaultsFor(1024))
	p.SetVolume(0.3)

	r := NewRunner(Config{
		Session: core.NewSession("ROMs"),
		Prefs:   p,
		Output:  out,
		Canvas:  ui.NewCanvas(ui.CanvasWidth, ui.CanvasHeight),
	})
	defer r.Close()

	assert.Equal(t, 0.3, out.Volume())
}

func TestRunner_ShareLink(t *testing.T) {
	r, session := newTestRunner(t, &frameCore{})

	_, ok := r.ShareLink()
	assert.False(t, ok, "no game yet")

	require.NoError(t, session.Boot("zelda-dx.gbc"))
	link, ok := r.ShareLink()
	require.True(t, ok)
	assert.Equal(t, "https://gameboy.example/?game=zelda-dx", link)
}

func TestRunner_Share(t *testing.T) {
	r, session := newTestRunner(t, &frameCore{})
	require.NoError(t, session.Boot("tetris.gb"))

	r.share()
	assert.Equal(t, "clipboard unavailable", r.notice)

	var copied string
	r.cfg.Copy = func(s string) error {
		copied = s
		return nil
	}
	r.share()
	assert.Equal(t, "https://gameboy.example/?game=tetris", copied)
	assert.Contains(t, r.notice, copied)

	r.cfg.Copy = func(string) error { return errors.New("no display") }
	r.share()
	assert.Equal(t, "copy failed", r.notice)
}

func TestRunner_NoticeExpires(t *testing.T) {
	r, _ := newTestRunner(t, &frameCore{})
	now := time.Unix(0, 0)
	r.now = func() time.Time { return now }

	r.setNotice("hello")
	assert.True(t, r.now().Before(r.noticeUntil))

	now = now.Add(noticeDuration)
	assert.False(t, r.now().Before(r.noticeUntil))
}

func TestRunner_PullFrame(t *testing.T) {
	fc := &frameCore{}
	r, session := newTestRunner(t, fc)

	r.pullFrame()
	assert.False(t, r.cfg.Canvas.Ready(), "no instance yet")

	require.NoError(t, session.Boot("tetris.gb"))
	r.pullFrame()
	assert.False(t, r.cfg.Canvas.Ready(), "core has no frame yet")

	fc.shade = 0x80
	r.pullFrame()
	require.True(t, r.cfg.Canvas.Ready())
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80}, r.cfg.Canvas.Sample(0, 0, 1, 1))
}

func TestRunner_SwitchClearsCanvas(t *testing.T) {
	fc := &frameCore{shade: 0x40}
	r, session := newTestRunner(t, fc)
	require.NoError(t, session.Boot("tetris.gb"))
	r.pullFrame()
	require.True(t, r.cfg.Canvas.Ready())
	r.switched.Store(false)
	flusher := &countingFlusher{}
	r.cfg.Flusher = flusher

	require.NoError(t, session.Switch(context.Background(), "zelda.gb"))

	assert.True(t, r.switched.Load(), "sampler reset is pending")
	assert.False(t, r.cfg.Canvas.Ready(), "old frame is gone")
	assert.Equal(t, 1, flusher.flushes, "old audio is dropped")
}

func TestRunner_PausesWhenUnfocused(t *testing.T) {
	pc := &pausingCore{}
	r, session := newTestRunner(t, pc)

	r.setFocused(false)
	assert.Empty(t, pc.paused, "no instance yet")

	require.NoError(t, session.Boot("tetris.gb"))
	_, h := session.Core()

	r.setFocused(true)
	assert.Empty(t, pc.resumed, "already running")

	r.setFocused(false)
	r.setFocused(false)
	assert.Equal(t, []core.Handle{h}, pc.paused)

	r.setFocused(true)
	assert.Equal(t, []core.Handle{h}, pc.resumed)
}

func TestRunner_UnfocusedWithoutPauser(t *testing.T) {
	r, session := newTestRunner(t, &frameCore{})
	require.NoError(t, session.Boot("tetris.gb"))

	r.setFocused(false)
	assert.False(t, r.paused, "core cannot pause")
}

func TestErrorLines(t *testing.T) {
	err := errors.New("boom")

	lines := errorLines(core.Status{Err: err})
	assert.Equal(t, "Error loading the emulator:", lines[0])
	assert.Equal(t, "boom", lines[1])

	lines = errorLines(core.Status{ModuleLoaded: true, Err: err})
	assert.Equal(t, "Error loading the game:", lines[0])
}
