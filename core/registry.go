package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/afero"
	emucore "github.com/user-none/eblitui/api"

	"github.com/Jabolol/gameboy/ui"
)

// GoPrefix marks a core source naming a registered Go core instead of a
// library path, as in "go:mycore".
const GoPrefix = "go:"

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]emucore.CoreFactory)
)

// Register makes a Go core available under name. It is meant to be called
// from the init function of the package implementing the core. Registering
// a name twice panics.
func Register(name string, f emucore.CoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("core: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("core: Register called twice for " + name)
	}
	factories[name] = f
}

// Registered returns the names of the registered Go cores, sorted.
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Opener returns an OpenFunc that opens "go:" sources as Emucore adapters
// over fs and everything else as a native library.
func Opener(fs afero.Fs, canvas *ui.Canvas, audio AudioSink) OpenFunc {
	return func(ctx context.Context, src string) (Core, error) {
		name, ok := strings.CutPrefix(src, GoPrefix)
		if !ok {
			return OpenNativeFunc(ctx, src)
		}

		factoriesMu.RLock()
		f, ok := factories[name]
		factoriesMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("no Go core registered as %q (have %v)", name, Registered())
		}
		return NewEmucore(f, fs, canvas, audio)
	}
}
