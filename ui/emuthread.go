package ui

import (
	"sync"
	"time"
)

// Joypad is a button bitmask in the layout cores read from SetInput.
type Joypad uint32

// Button bits. The D-pad sits in the low bits, the face buttons use the
// IDs cores advertise in their button lists.
const (
	ButtonUp     Joypad = 1 << 0
	ButtonDown   Joypad = 1 << 1
	ButtonLeft   Joypad = 1 << 2
	ButtonRight  Joypad = 1 << 3
	ButtonA      Joypad = 1 << 4
	ButtonB      Joypad = 1 << 5
	ButtonSelect Joypad = 1 << 6
	ButtonStart  Joypad = 1 << 7
)

// SharedInput holds the joypad state written by the Ebiten thread and read
// by the emulation goroutine.
type SharedInput struct {
	mu      sync.Mutex
	buttons Joypad
}

func (si *SharedInput) Set(buttons Joypad) {
	si.mu.Lock()
	si.buttons = buttons
	si.mu.Unlock()
}

func (si *SharedInput) Read() Joypad {
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.buttons
}

// EmuControl coordinates pause, resume and stop between the Ebiten thread
// and an emulation goroutine.
type EmuControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	stopped  bool
	ack      chan struct{}
}

func NewEmuControl() *EmuControl {
	return &EmuControl{
		ack: make(chan struct{}, 1),
	}
}

// RequestPause asks the emulation goroutine to pause and blocks until it
// has. It returns at once if already paused or stopped.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || ec.stopped {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	<-ec.ack
}

func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. While a
// pause is requested it acknowledges and waits. It returns false when the
// goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	if ec.stopped {
		ec.mu.Unlock()
		return false
	}
	if !ec.pauseReq {
		ec.mu.Unlock()
		return true
	}
	ec.paused = true
	ec.mu.Unlock()

	select {
	case ec.ack <- struct{}{}:
	default:
	}

	for {
		time.Sleep(10 * time.Millisecond)

		ec.mu.Lock()
		switch {
		case ec.stopped:
			ec.mu.Unlock()
			return false
		case !ec.pauseReq:
			ec.paused = false
			ec.mu.Unlock()
			return true
		}
		ec.mu.Unlock()
	}
}

// Stop makes the next CheckPause return false. A pending RequestPause is
// released.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.pauseReq && !ec.paused {
		select {
		case ec.ack <- struct{}{}:
		default:
		}
	}
	ec.stopped = true
	ec.pauseReq = false
}
