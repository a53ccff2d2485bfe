// Package core drives an emulator core: a native library loaded at run
// time or a Go core behind the eblitui API. It loads the core once,
// creates one running instance per game and switches between games.
package core

import "errors"

// Handle identifies a running instance inside a core. Zero is never a
// valid handle.
type Handle uintptr

// Core creates, starts and destroys emulator instances. rom is the path
// of the ROM file the instance should run.
type Core interface {
	Create(rom string) (Handle, error)
	Start(h Handle) error
	Destroy(h Handle) error
}

// FrameReader is implemented by cores that render into memory the caller
// must copy out. It fills dst with RGBA rows stride bytes apart and returns
// the number of rows written.
type FrameReader interface {
	ReadFrame(h Handle, dst []byte) (stride, height int, err error)
}

// InputSetter is implemented by cores that accept joypad input from the
// shell.
type InputSetter interface {
	SetInput(h Handle, buttons uint32)
}

// Pauser is implemented by cores that can suspend an instance while the
// window is in the background. Pause returns once the instance is idle.
type Pauser interface {
	Pause(h Handle)
	Resume(h Handle)
}

var (
	// ErrCreate is returned when a core could not create an instance.
	ErrCreate = errors.New("core: failed to create instance")

	// ErrUnwind is returned by Start when the core handed its main loop
	// over to the host and returned early. The instance is running.
	ErrUnwind = errors.New("core: unwind")

	// ErrNoFrame is returned by ReadFrame when no frame is available.
	ErrNoFrame = errors.New("core: no frame")

	// ErrUnknownHandle is returned for a handle the core did not create
	// or has already destroyed.
	ErrUnknownHandle = errors.New("core: unknown handle")
)
