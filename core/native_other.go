//go:build !(darwin || freebsd || linux || netbsd)

package core

import (
	"errors"
	"fmt"
	"runtime"
)

// FrameWidth is the width in pixels of frames returned by a native core.
const FrameWidth = 448

// Native is unavailable on this platform.
type Native struct{}

var errNativeUnsupported = errors.New("native cores are not supported on " + runtime.GOOS)

// OpenNative always fails on this platform.
func OpenNative(path string) (*Native, error) {
	return nil, fmt.Errorf("loading %s: %w", path, errNativeUnsupported)
}

func (*Native) Create(string) (Handle, error)              { return 0, errNativeUnsupported }
func (*Native) Start(Handle) error                         { return errNativeUnsupported }
func (*Native) Destroy(Handle) error                       { return errNativeUnsupported }
func (*Native) ReadFrame(Handle, []byte) (int, int, error) { return 0, 0, ErrNoFrame }
func (*Native) Close() error                               { return nil }
