package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Jabolol/gameboy/catalog"
)

// CleanupDelay is how long a switch waits after destroying the running
// instance before creating the next one, so the core can release it.
const CleanupDelay = 100 * time.Millisecond

// ErrSessionClosed is returned by a boot or switch that finished after
// Close. The instance it created has been destroyed.
var ErrSessionClosed = errors.New("core: session closed")

// Status is what the shell shows about the session.
type Status struct {
	ModuleLoaded bool         // a core is attached
	Initialized  bool         // a game is running
	Loading      bool         // a boot or switch is in progress
	Game         catalog.Game // the running game, empty when none
	Err          error        // why the last boot or switch failed
}

// Session runs at most one game at a time on a core.
type Session struct {
	romDir string
	delay  time.Duration

	mu     sync.Mutex
	core   Core
	handle Handle
	closed bool
	status Status
	subs   map[int]func(Status)
	nextID int
}

// NewSession creates a session loading ROMs from romDir. It has no core
// until Attach is called.
func NewSession(romDir string) *Session {
	return &Session{
		romDir: romDir,
		delay:  CleanupDelay,
		subs:   make(map[int]func(Status)),
	}
}

// Status returns a snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Core returns the attached core and the handle of the running instance.
func (s *Session) Core() (Core, Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core, s.handle
}

// Subscribe calls fn with the new status after every change. fn runs on
// the goroutine that made the change. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies fn to the status under the lock and notifies subscribers
// outside of it.
func (s *Session) update(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
	st := s.status
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(Status), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// Attach sets the core to run games on.
func (s *Session) Attach(c Core) {
	s.mu.Lock()
	s.core = c
	s.mu.Unlock()
	s.update(func(st *Status) { st.ModuleLoaded = c != nil })
}

// Fail records an error that happened before a core could be attached,
// typically a load failure.
func (s *Session) Fail(err error) {
	s.update(func(st *Status) {
		st.Loading = false
		st.Err = err
	})
}

// begin marks the session busy. It reports false when there is no core,
// the session is closed, another boot or switch is running, or game is
// already running.
func (s *Session) begin(game catalog.Game) bool {
	s.mu.Lock()
	ok := s.core != nil && !s.closed && !s.status.Loading && game != s.status.Game
	if ok {
		s.status.Loading = true
	}
	s.mu.Unlock()

	if ok {
		s.update(func(*Status) {})
	}
	return ok
}

// Boot starts the first game. It does nothing if a game is already running
// or a switch is in progress.
func (s *Session) Boot(game catalog.Game) error {
	s.mu.Lock()
	running := s.status.Initialized
	s.mu.Unlock()
	if running || !s.begin(game) {
		return nil
	}
	return s.load(game)
}

// Switch replaces the running game with game. It is ignored while another
// boot or switch is in progress and when game is already running. The
// previous instance is destroyed first and the session waits CleanupDelay
// before creating the next one.
func (s *Session) Switch(ctx context.Context, game catalog.Game) error {
	if !s.begin(game) {
		return nil
	}

	if err := s.destroy(); err != nil {
		log.Printf("core: destroy: %v", err)
	}

	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		s.update(func(st *Status) {
			st.Loading = false
			st.Err = ctx.Err()
		})
		return ctx.Err()
	case <-t.C:
	}

	return s.load(game)
}

// destroy tears down the running instance, if any.
func (s *Session) destroy() error {
	s.mu.Lock()
	c, h := s.core, s.handle
	s.handle = 0
	s.mu.Unlock()

	if h == 0 {
		return nil
	}
	s.update(func(st *Status) {
		st.Initialized = false
		st.Game = ""
	})
	return c.Destroy(h)
}

// load creates and starts game. Failures are logged and recorded in the
// status, there is no retry and no fallback game.
func (s *Session) load(game catalog.Game) error {
	s.mu.Lock()
	c := s.core
	s.mu.Unlock()

	err := s.createAndStart(c, game)
	if err != nil {
		log.Printf("core: failed to load %s: %v", game, err)
	}

	s.update(func(st *Status) {
		st.Loading = false
		st.Err = err
		if err == nil {
			st.Initialized = true
			st.Game = game
		}
	})
	return err
}

func (s *Session) createAndStart(c Core, game catalog.Game) error {
	h, err := c.Create(game.Path(s.romDir))
	if err != nil {
		return err
	}
	if h == 0 {
		return fmt.Errorf("%w: %s", ErrCreate, game)
	}

	if err := c.Start(h); err != nil && !errors.Is(err, ErrUnwind) {
		if derr := c.Destroy(h); derr != nil {
			log.Printf("core: destroy after failed start: %v", derr)
		}
		return fmt.Errorf("starting %s: %w", game, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if err := c.Destroy(h); err != nil {
			log.Printf("core: destroy after close: %v", err)
		}
		return fmt.Errorf("starting %s: %w", game, ErrSessionClosed)
	}
	s.handle = h
	s.mu.Unlock()
	return nil
}

// Close destroys the running instance. A boot or switch still in progress
// destroys its instance when it finishes, later ones are ignored.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.destroy()
}
