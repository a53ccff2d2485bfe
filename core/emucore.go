package core

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	emucore "github.com/user-none/eblitui/api"

	"github.com/Jabolol/gameboy/ui"
)

// Frame pacing keeps the queued audio between these levels, in bytes.
const (
	pacingMinBuffer = 9600
	pacingMaxBuffer = 19200
)

// romCacheSize is the number of ROM images kept in memory so switching
// back to a recent game does not hit the disk.
const romCacheSize = 8

// AudioSink receives interleaved int16 stereo samples after every frame.
type AudioSink interface {
	QueueSamples(samples []int16)
}

// bufferLeveler is implemented by sinks that can report their backlog.
// Frame pacing follows it when present.
type bufferLeveler interface {
	BufferLevel() int
}

// machine is what the frame loop needs from an emulator.
type machine interface {
	RunFrame()
	GetFramebuffer() []byte
	GetFramebufferStride() int
	GetActiveHeight() int
	GetAudioSamples() []int16
}

type joypad interface {
	SetInput(player int, buttons uint32)
}

type timed interface {
	GetTiming() emucore.Timing
}

type battery interface {
	HasSRAM() bool
	GetSRAM() []byte
	SetSRAM(data []byte)
}

type closer interface {
	Close()
}

// instance is one emulator created by Emucore.
type instance struct {
	rom     string
	emu     emucore.Emulator
	control *ui.EmuControl
	input   *ui.SharedInput
	done    chan struct{} // closed when the frame loop exits, nil before Start
}

// Emucore adapts a Go emulator behind the eblitui CoreFactory to Core.
// Each instance runs its frames on its own goroutine and publishes them to
// a shared canvas.
type Emucore struct {
	factory emucore.CoreFactory
	fs      afero.Fs
	canvas  *ui.Canvas
	audio   AudioSink
	roms    *lru.Cache[string, []byte]

	mu        sync.Mutex
	next      Handle
	instances map[Handle]*instance
}

var (
	_ Core        = (*Emucore)(nil)
	_ InputSetter = (*Emucore)(nil)
	_ Pauser      = (*Emucore)(nil)
)

// NewEmucore creates an adapter reading ROMs and save files from fs. audio
// may be nil.
func NewEmucore(factory emucore.CoreFactory, fs afero.Fs, canvas *ui.Canvas, audio AudioSink) (*Emucore, error) {
	roms, err := lru.New[string, []byte](romCacheSize)
	if err != nil {
		return nil, err
	}
	return &Emucore{
		factory:   factory,
		fs:        fs,
		canvas:    canvas,
		audio:     audio,
		roms:      roms,
		instances: make(map[Handle]*instance),
	}, nil
}

func (c *Emucore) readROM(path string) ([]byte, error) {
	if data, ok := c.roms.Get(path); ok {
		return data, nil
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, err
	}
	c.roms.Add(path, data)
	return data, nil
}

// sramPath returns the save file for a ROM, "ROMs/zelda.gb" saves to
// "ROMs/zelda.srm".
func sramPath(rom string) string {
	return strings.TrimSuffix(rom, filepath.Ext(rom)) + ".srm"
}

func (c *Emucore) Create(rom string) (Handle, error) {
	data, err := c.readROM(rom)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	region, _ := c.factory.DetectRegion(data)
	e, err := c.factory.CreateEmulator(data, region)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCreate, rom, err)
	}
	if _, ok := e.(machine); !ok {
		return 0, fmt.Errorf("%w: %s: emulator cannot run frames", ErrCreate, rom)
	}

	if b, ok := e.(battery); ok && b.HasSRAM() {
		if save, err := afero.ReadFile(c.fs, sramPath(rom)); err == nil {
			b.SetSRAM(save)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := c.next
	c.instances[h] = &instance{
		rom:     rom,
		emu:     e,
		control: ui.NewEmuControl(),
		input:   &ui.SharedInput{},
	}
	return h, nil
}

func (c *Emucore) lookup(h Handle) (*instance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.instances[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return inst, nil
}

// Start launches the frame loop. Starting a running instance does nothing.
func (c *Emucore) Start(h Handle) error {
	inst, err := c.lookup(h)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if inst.done != nil {
		c.mu.Unlock()
		return nil
	}
	inst.done = make(chan struct{})
	c.mu.Unlock()

	go c.frameLoop(inst)
	return nil
}

// Destroy stops the frame loop, writes battery RAM back to disk and
// releases the instance.
func (c *Emucore) Destroy(h Handle) error {
	c.mu.Lock()
	inst, ok := c.instances[h]
	delete(c.instances, h)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}

	inst.control.Stop()
	if inst.done != nil {
		<-inst.done
	}

	err := c.saveSRAM(inst)
	if cl, ok := inst.emu.(closer); ok {
		cl.Close()
	}
	return err
}

func (c *Emucore) saveSRAM(inst *instance) error {
	b, ok := inst.emu.(battery)
	if !ok || !b.HasSRAM() {
		return nil
	}
	data := b.GetSRAM()
	if len(data) == 0 {
		return nil
	}
	if err := afero.WriteFile(c.fs, sramPath(inst.rom), data, 0644); err != nil {
		return fmt.Errorf("saving %s: %w", sramPath(inst.rom), err)
	}
	return nil
}

// SetInput updates the joypad of a running instance. Unknown handles are
// ignored.
func (c *Emucore) SetInput(h Handle, buttons uint32) {
	inst, err := c.lookup(h)
	if err != nil {
		return
	}
	inst.input.Set(ui.Joypad(buttons))
}

// Pause blocks until the instance's frame loop is paused. Instances that
// were never started are left alone.
func (c *Emucore) Pause(h Handle) {
	c.mu.Lock()
	inst, ok := c.instances[h]
	started := ok && inst.done != nil
	c.mu.Unlock()

	if started {
		inst.control.RequestPause()
	}
}

func (c *Emucore) Resume(h Handle) {
	if inst, err := c.lookup(h); err == nil {
		inst.control.RequestResume()
	}
}

func frameDuration(e emucore.Emulator) time.Duration {
	fps := 60.0
	if t, ok := e.(timed); ok && t.GetTiming().FPS > 0 {
		fps = float64(t.GetTiming().FPS)
	}
	return time.Duration(float64(time.Second) / fps)
}

// frameLoop runs on a dedicated goroutine and paces itself on the audio
// backlog when the sink reports one.
func (c *Emucore) frameLoop(inst *instance) {
	defer close(inst.done)

	m := inst.emu.(machine)
	pad, _ := inst.emu.(joypad)
	leveler, _ := c.audio.(bufferLeveler)

	frameTime := frameDuration(inst.emu)
	last := time.Now()

	for inst.control.CheckPause() {
		if pad != nil {
			pad.SetInput(0, uint32(inst.input.Read()))
		}

		m.RunFrame()

		if c.audio != nil {
			c.audio.QueueSamples(m.GetAudioSamples())
		}
		if c.canvas != nil {
			c.canvas.Update(m.GetFramebuffer(), m.GetFramebufferStride(), m.GetActiveHeight())
		}

		sleep := frameTime - time.Since(last)
		if leveler != nil {
			switch level := leveler.BufferLevel(); {
			case level < pacingMinBuffer:
				sleep = time.Duration(float64(sleep) * 0.9)
			case level > pacingMaxBuffer:
				sleep = time.Duration(float64(sleep) * 1.1)
			}
		}
		if sleep > time.Millisecond {
			time.Sleep(sleep)
		}
		last = time.Now()
	}

	log.Printf("core: stopped %s", inst.rom)
}

// Close destroys every instance still running.
func (c *Emucore) Close() error {
	c.mu.Lock()
	handles := make([]Handle, 0, len(c.instances))
	for h := range c.instances {
		handles = append(handles, h)
	}
	c.mu.Unlock()

	var first error
	for _, h := range handles {
		if err := c.Destroy(h); err != nil && first == nil {
			first = err
		}
	}
	return first
}
