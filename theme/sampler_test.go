package theme

import (
	"testing"
	"time"
)

type fakeSource struct {
	pix   []byte
	calls int
}

func (f *fakeSource) Sample(x, y, width, height int) []byte {
	f.calls++
	return f.pix
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSampler() (*Sampler, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := NewSampler(DefaultConfig())
	s.now = clk.now
	return s, clk
}

func TestSampler_Throttle(t *testing.T) {
	s, clk := newTestSampler()
	src := &fakeSource{pix: solid(SampleWidth, SampleHeight, 16, 16, 16, 255)}

	if s.Tick(src) {
		t.Errorf("first tick should not change the detected value")
	}

	clk.advance(10 * time.Millisecond)
	s.Tick(src)
	if src.calls != 1 {
		t.Errorf("throttled tick sampled the source: calls=%d, want 1", src.calls)
	}

	clk.advance(40 * time.Millisecond)
	s.Tick(src)
	if src.calls != 2 {
		t.Errorf("calls: got %d, want 2", src.calls)
	}

	clk.advance(50 * time.Millisecond)
	if !s.Tick(src) {
		t.Errorf("third sample should reach consensus")
	}
	if got := s.Detected(); got != "#101010" {
		t.Errorf("Detected: got %v, want #101010", got)
	}
}

func TestSampler_NotReady(t *testing.T) {
	s, clk := newTestSampler()
	src := &fakeSource{}

	for range 5 {
		if s.Tick(src) {
			t.Errorf("a source without pixels must not change the value")
		}
		clk.advance(time.Millisecond)
	}
	if src.calls != 5 {
		t.Errorf("source should be polled on every tick: calls=%d, want 5", src.calls)
	}
	if s.Detected() != White {
		t.Errorf("Detected: got %v, want %v", s.Detected(), White)
	}

	if s.Tick(nil) {
		t.Errorf("nil source must not change the value")
	}
}

func TestSampler_OutlierIgnored(t *testing.T) {
	s, clk := newTestSampler()
	dark := &fakeSource{pix: solid(SampleWidth, SampleHeight, 0, 0, 0, 255)}
	light := &fakeSource{pix: solid(SampleWidth, SampleHeight, 255, 255, 255, 255)}

	for range 3 {
		s.Tick(dark)
		clk.advance(DefaultInterval)
	}
	if s.Detected() != "#000000" {
		t.Fatalf("Detected: got %v, want #000000", s.Detected())
	}

	// one white frame is not enough to move away from black
	s.Tick(light)
	clk.advance(DefaultInterval)
	if s.Detected() != "#000000" {
		t.Errorf("after one outlier: got %v, want #000000", s.Detected())
	}

	s.Tick(light)
	clk.advance(DefaultInterval)
	s.Tick(light)
	if s.Detected() != White {
		t.Errorf("after three white frames: got %v, want %v", s.Detected(), White)
	}
}

func TestSampler_ResetKeepsDetected(t *testing.T) {
	s, clk := newTestSampler()
	src := &fakeSource{pix: solid(SampleWidth, SampleHeight, 0, 0, 0, 255)}

	for range 3 {
		s.Tick(src)
		clk.advance(DefaultInterval)
	}
	s.Reset()

	if s.Detected() != "#000000" {
		t.Errorf("Reset changed the detected value to %v", s.Detected())
	}
	if s.tracker.Len() != 0 {
		t.Errorf("Reset left %d values in the history", s.tracker.Len())
	}

	// the next tick samples immediately, regardless of the interval
	calls := src.calls
	s.Tick(src)
	if src.calls != calls+1 {
		t.Errorf("tick after Reset did not sample")
	}
}

func TestSampler_BinaryClassifier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classify = BinaryClassifier(DefaultDominance)
	s := NewSampler(cfg)
	clk := &fakeClock{t: time.Unix(0, 0)}
	s.now = clk.now

	src := &fakeSource{pix: solid(SampleWidth, SampleHeight, 10, 10, 10, 255)}
	for range 3 {
		s.Tick(src)
		clk.advance(DefaultInterval)
	}
	if s.Detected() != Dark {
		t.Errorf("got %v, want dark", s.Detected())
	}
}

func TestEffective(t *testing.T) {
	if dark, bg := Effective(ModeDark, White); !dark || bg != "" {
		t.Errorf("dark mode: got %v %q", dark, bg)
	}
	if dark, bg := Effective(ModeLight, "#000000"); dark || bg != "" {
		t.Errorf("light mode: got %v %q", dark, bg)
	}
	if dark, bg := Effective(ModeAuto, "#000000"); !dark || bg != "#000000" {
		t.Errorf("auto black: got %v %q", dark, bg)
	}
	if dark, bg := Effective(ModeAuto, Dark); !dark || bg != "" {
		t.Errorf("auto dark label: got %v %q", dark, bg)
	}
}

func TestMode_Next(t *testing.T) {
	m := ModeLight
	for _, want := range []Mode{ModeDark, ModeAuto, ModeLight} {
		m = m.Next()
		if m != want {
			t.Errorf("got %v, want %v", m, want)
		}
	}
	if Mode("sepia").Valid() {
		t.Errorf("sepia should not be a valid mode")
	}
}
