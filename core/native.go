//go:build darwin || freebsd || linux || netbsd

package core

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Symbols exported by the native core library.
const (
	symCreate  = "gameboy_create"
	symStart   = "gameboy_start"
	symDestroy = "gameboy_destroy"
	symFrame   = "gameboy_frame"
)

// Return codes of gameboy_start.
const (
	startOK     = 0
	startUnwind = 1
)

// Native is a core implemented by a shared library.
//
//	void   *gameboy_create(const char *rom);
//	int32_t gameboy_start(void *gb);
//	void    gameboy_destroy(void *gb);
//	int32_t gameboy_frame(void *gb, uint8_t *dst, int32_t len); // optional
//
// gameboy_create returns NULL on failure. gameboy_frame copies the canvas
// into dst as RGBA rows of FrameWidth pixels and returns the number of rows.
type Native struct {
	path string
	lib  uintptr

	create  func(rom string) uintptr
	start   func(gb uintptr) int32
	destroy func(gb uintptr)
	frame   func(gb uintptr, dst unsafe.Pointer, n int32) int32

	mu     sync.Mutex
	closed bool
}

var (
	_ Core        = (*Native)(nil)
	_ FrameReader = (*Native)(nil)
)

// FrameWidth is the width in pixels of frames returned by gameboy_frame.
const FrameWidth = 448

// OpenNative loads the library at path and resolves its symbols.
func OpenNative(path string) (*Native, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	n := &Native{path: path, lib: lib}
	for _, s := range []struct {
		fptr any
		name string
	}{
		{&n.create, symCreate},
		{&n.start, symStart},
		{&n.destroy, symDestroy},
	} {
		sym, err := purego.Dlsym(lib, s.name)
		if err != nil {
			purego.Dlclose(lib)
			return nil, fmt.Errorf("%s: missing symbol %s: %w", path, s.name, err)
		}
		purego.RegisterFunc(s.fptr, sym)
	}

	if sym, err := purego.Dlsym(lib, symFrame); err == nil {
		purego.RegisterFunc(&n.frame, sym)
	}

	return n, nil
}

func (n *Native) String() string {
	return n.path
}

func (n *Native) usable() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return fmt.Errorf("%s: library closed", n.path)
	}
	return nil
}

func (n *Native) Create(rom string) (Handle, error) {
	if err := n.usable(); err != nil {
		return 0, err
	}
	h := n.create(rom)
	if h == 0 {
		return 0, fmt.Errorf("%w: %s", ErrCreate, rom)
	}
	return Handle(h), nil
}

// Start runs the instance. ErrUnwind means the library took over its own
// main loop and the instance is running.
func (n *Native) Start(h Handle) error {
	if h == 0 {
		return ErrUnknownHandle
	}
	if err := n.usable(); err != nil {
		return err
	}
	switch rc := n.start(uintptr(h)); rc {
	case startOK:
		return nil
	case startUnwind:
		return ErrUnwind
	default:
		return fmt.Errorf("%s returned %d", symStart, rc)
	}
}

func (n *Native) Destroy(h Handle) error {
	if h == 0 {
		return ErrUnknownHandle
	}
	if err := n.usable(); err != nil {
		return err
	}
	n.destroy(uintptr(h))
	return nil
}

// ReadFrame returns ErrNoFrame when the library does not export
// gameboy_frame or has nothing to show yet.
func (n *Native) ReadFrame(h Handle, dst []byte) (int, int, error) {
	if n.frame == nil || len(dst) == 0 {
		return 0, 0, ErrNoFrame
	}
	if err := n.usable(); err != nil {
		return 0, 0, err
	}

	rows := n.frame(uintptr(h), unsafe.Pointer(&dst[0]), int32(len(dst)))
	if rows <= 0 {
		return 0, 0, ErrNoFrame
	}
	return FrameWidth * 4, int(rows), nil
}

// Close unloads the library. Instances must be destroyed first.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return purego.Dlclose(n.lib)
}
