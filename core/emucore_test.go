package core

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	emucore "github.com/user-none/eblitui/api"

	"github.com/Jabolol/gameboy/ui"
)

const (
	fakeWidth  = 160
	fakeHeight = 144
)

// fakeEmulator fills its framebuffer with the frame counter and keeps
// battery RAM in memory. Methods it does not override panic.
type fakeEmulator struct {
	emucore.Emulator

	frames  atomic.Int32
	buttons atomic.Uint32
	pixels  []byte
	closed  atomic.Bool

	mu   sync.Mutex
	sram []byte
}

func (e *fakeEmulator) RunFrame() {
	n := e.frames.Add(1)
	for i := range e.pixels {
		e.pixels[i] = byte(n)
	}
}

func (e *fakeEmulator) GetFramebuffer() []byte    { return e.pixels }
func (e *fakeEmulator) GetFramebufferStride() int { return fakeWidth * 4 }
func (e *fakeEmulator) GetActiveHeight() int      { return fakeHeight }
func (e *fakeEmulator) GetAudioSamples() []int16  { return []int16{1, -1} }

func (e *fakeEmulator) SetInput(player int, buttons uint32) { e.buttons.Store(buttons) }

func (e *fakeEmulator) HasSRAM() bool { return true }

func (e *fakeEmulator) GetSRAM() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.sram...)
}

func (e *fakeEmulator) SetSRAM(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sram = append([]byte(nil), data...)
}

func (e *fakeEmulator) Close() { e.closed.Store(true) }

type fakeFactory struct {
	mu        sync.Mutex
	created   []*fakeEmulator
	roms      [][]byte
	createErr error
}

func (f *fakeFactory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "fake",
		ScreenWidth:     fakeWidth,
		MaxScreenHeight: fakeHeight,
		SampleRate:      ui.SampleRate,
	}
}

func (f *fakeFactory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := &fakeEmulator{pixels: make([]byte, fakeWidth*fakeHeight*4)}
	f.created = append(f.created, e)
	f.roms = append(f.roms, rom)
	return e, nil
}

func (f *fakeFactory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emucore.RegionNTSC, false
}

func (f *fakeFactory) last() *fakeEmulator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[len(f.created)-1]
}

type fakeSink struct {
	queued atomic.Int32
}

func (s *fakeSink) QueueSamples(samples []int16) { s.queued.Add(int32(len(samples))) }

func newTestEmucore(t *testing.T) (*Emucore, *fakeFactory, afero.Fs, *ui.Canvas, *fakeSink) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ROMs/tetris.gb", []byte("TETRIS"), 0644))

	factory := &fakeFactory{}
	canvas := ui.NewCanvas(ui.CanvasWidth, ui.CanvasHeight)
	sink := &fakeSink{}
	c, err := NewEmucore(factory, fs, canvas, sink)
	require.NoError(t, err)
	return c, factory, fs, canvas, sink
}

func TestEmucore_RunsFrames(t *testing.T) {
	c, factory, _, canvas, sink := newTestEmucore(t)

	h, err := c.Create("ROMs/tetris.gb")
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.Equal(t, []byte("TETRIS"), factory.roms[0])

	require.NoError(t, c.Start(h))
	require.NoError(t, c.Start(h), "starting twice is harmless")

	require.Eventually(t, canvas.Ready, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return sink.queued.Load() > 0 }, time.Second, time.Millisecond)

	c.SetInput(h, uint32(ui.ButtonA|ui.ButtonStart))
	require.Eventually(t, func() bool {
		return factory.last().buttons.Load() == uint32(ui.ButtonA|ui.ButtonStart)
	}, time.Second, time.Millisecond)

	require.NoError(t, c.Destroy(h))
	assert.True(t, factory.last().closed.Load())

	frames := factory.last().frames.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frames, factory.last().frames.Load(), "no frames after Destroy")
}

func TestEmucore_SRAMRoundTrip(t *testing.T) {
	c, factory, fs, _, _ := newTestEmucore(t)

	h, err := c.Create("ROMs/tetris.gb")
	require.NoError(t, err)
	factory.last().SetSRAM([]byte{1, 2, 3})
	require.NoError(t, c.Destroy(h))

	saved, err := afero.ReadFile(fs, "ROMs/tetris.srm")
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte{1, 2, 3}, saved))

	_, err = c.Create("ROMs/tetris.gb")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, factory.last().GetSRAM(), "loaded on create")
}

func TestEmucore_ROMCache(t *testing.T) {
	c, factory, fs, _, _ := newTestEmucore(t)

	h, err := c.Create("ROMs/tetris.gb")
	require.NoError(t, err)
	require.NoError(t, c.Destroy(h))

	require.NoError(t, fs.Remove("ROMs/tetris.gb"))
	_, err = c.Create("ROMs/tetris.gb")
	require.NoError(t, err, "served from the cache")
	assert.Len(t, factory.roms, 2)
}

func TestEmucore_CreateErrors(t *testing.T) {
	c, factory, _, _, _ := newTestEmucore(t)

	_, err := c.Create("ROMs/missing.gb")
	assert.ErrorIs(t, err, ErrCreate)

	factory.createErr = errors.New("bad header")
	_, err = c.Create("ROMs/tetris.gb")
	assert.ErrorIs(t, err, ErrCreate)
}

func TestEmucore_UnknownHandle(t *testing.T) {
	c, _, _, _, _ := newTestEmucore(t)

	assert.ErrorIs(t, c.Start(42), ErrUnknownHandle)
	assert.ErrorIs(t, c.Destroy(42), ErrUnknownHandle)
	c.SetInput(42, 1)
}

func TestEmucore_PauseResume(t *testing.T) {
	c, factory, _, _, _ := newTestEmucore(t)

	h, err := c.Create("ROMs/tetris.gb")
	require.NoError(t, err)
	require.NoError(t, c.Start(h))
	require.Eventually(t, func() bool { return factory.last().frames.Load() > 0 }, time.Second, time.Millisecond)

	c.Pause(h)
	frames := factory.last().frames.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, frames, factory.last().frames.Load())

	c.Resume(h)
	require.Eventually(t, func() bool { return factory.last().frames.Load() > frames }, time.Second, time.Millisecond)
	require.NoError(t, c.Close())
}

func TestEmucore_PauseBeforeStart(t *testing.T) {
	c, _, _, _, _ := newTestEmucore(t)

	h, err := c.Create("ROMs/tetris.gb")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		c.Pause(h)
		c.Pause(42)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pause blocked on an instance that is not running")
	}
	require.NoError(t, c.Close())
}

func TestSramPath(t *testing.T) {
	assert.Equal(t, "ROMs/zelda.srm", sramPath("ROMs/zelda.gb"))
	assert.Equal(t, "ROMs/zelda-dx.srm", sramPath("ROMs/zelda-dx.gbc"))
}
