package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadStatus is the state of a core source in a Loader.
type LoadStatus int

const (
	StatusIdle LoadStatus = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s LoadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// OpenFunc opens the core named by src, usually the path of a library.
type OpenFunc func(ctx context.Context, src string) (Core, error)

var errCleanedUp = errors.New("cleaned up while loading")

type loadEntry struct {
	status LoadStatus
	core   Core
	err    error
}

// Loader opens each core source at most once. Concurrent loads of the
// same source share one open call. A failed load is remembered and not
// retried until the source is cleaned up.
type Loader struct {
	open  OpenFunc
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*loadEntry
}

func NewLoader(open OpenFunc) *Loader {
	return &Loader{
		open:    open,
		entries: make(map[string]*loadEntry),
	}
}

// OpenNativeFunc is an OpenFunc loading shared libraries with OpenNative.
func OpenNativeFunc(_ context.Context, src string) (Core, error) {
	n, err := OpenNative(src)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Status returns the state of src. Sources never loaded are idle.
func (l *Loader) Status(src string) LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[src]; ok {
		return e.status
	}
	return StatusIdle
}

// Load returns the core for src, opening it if needed. If ctx is done
// before an in-flight open finishes, Load returns ctx.Err() and the open
// carries on for the other callers.
func (l *Loader) Load(ctx context.Context, src string) (Core, error) {
	l.mu.Lock()
	e, ok := l.entries[src]
	if ok {
		switch e.status {
		case StatusReady:
			l.mu.Unlock()
			return e.core, nil
		case StatusError:
			l.mu.Unlock()
			return nil, e.err
		}
	} else {
		e = &loadEntry{status: StatusLoading}
		l.entries[src] = e
	}
	l.mu.Unlock()

	// the open must outlive any one caller's context
	openCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(src, func() (any, error) {
		return l.openOnce(openCtx, src)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Core), nil
	}
}

// openOnce runs inside a flight. A caller that saw the entry loading may
// start its flight after an earlier one finished, so the entry is checked
// again before opening.
func (l *Loader) openOnce(ctx context.Context, src string) (Core, error) {
	l.mu.Lock()
	cur, ok := l.entries[src]
	switch {
	case !ok:
		l.mu.Unlock()
		return nil, fmt.Errorf("loading core %s: %w", src, errCleanedUp)
	case cur.status == StatusReady:
		l.mu.Unlock()
		return cur.core, nil
	case cur.status == StatusError:
		l.mu.Unlock()
		return nil, cur.err
	}
	l.mu.Unlock()

	c, err := l.open(ctx, src)
	if err != nil {
		err = fmt.Errorf("loading core %s: %w", src, err)
		log.Printf("core: %v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok = l.entries[src]
	if !ok {
		// cleaned up while loading
		if err == nil {
			closeCore(c)
		}
		return nil, fmt.Errorf("loading core %s: %w", src, errCleanedUp)
	}
	if err != nil {
		cur.status, cur.err = StatusError, err
		return nil, err
	}
	cur.status, cur.core = StatusReady, c
	return c, nil
}

// Cleanup forgets src and closes its core if it has one. The next Load
// opens it again.
func (l *Loader) Cleanup(src string) {
	l.mu.Lock()
	e, ok := l.entries[src]
	delete(l.entries, src)
	l.mu.Unlock()

	if ok && e.status == StatusReady {
		closeCore(e.core)
	}
}

func closeCore(c Core) {
	if cl, ok := c.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			log.Printf("core: close: %v", err)
		}
	}
}
