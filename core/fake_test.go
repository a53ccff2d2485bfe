package core

import (
	"errors"
	"sync"
)

// fakeCore records calls and fails on demand.
type fakeCore struct {
	mu sync.Mutex

	createErr error
	startErr  error
	failROM   string // Create fails for this ROM only

	next      Handle
	created   []string
	started   []Handle
	destroyed []Handle
	live      map[Handle]bool
	closed    bool
}

func newFakeCore() *fakeCore {
	return &fakeCore{live: make(map[Handle]bool)}
}

func (f *fakeCore) Create(rom string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, rom)
	if f.createErr != nil {
		return 0, f.createErr
	}
	if rom == f.failROM {
		return 0, ErrCreate
	}
	f.next++
	f.live[f.next] = true
	return f.next, nil
}

func (f *fakeCore) Start(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, h)
	return f.startErr
}

func (f *fakeCore) Destroy(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live[h] {
		return ErrUnknownHandle
	}
	delete(f.live, h)
	f.destroyed = append(f.destroyed, h)
	return nil
}

func (f *fakeCore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCore) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeCore) createdROMs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.created...)
}

var errBoom = errors.New("boom")
