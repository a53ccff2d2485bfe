package theme

import "time"

// FrameSource hands out copies of a rectangle of canvas pixels. Sample
// returns nil while nothing has been rendered yet.
type FrameSource interface {
	Sample(x, y, width, height int) []byte
}

// Classifier turns one sampled region into a detected value.
type Classifier func(pix []byte, cfg SamplingConfig) Detected

// BinaryClassifier analyses border and interior brightness and decides
// between Light and Dark.
func BinaryClassifier(dominance float64) Classifier {
	return func(pix []byte, cfg SamplingConfig) Detected {
		return DetectFromAnalysis(AnalyzePixels(pix, cfg), dominance)
	}
}

// Config for a Sampler.
type Config struct {
	Interval    time.Duration
	HistorySize int
	Threshold   float64
	Sampling    SamplingConfig
	Classify    Classifier
}

// Default sampling parameters.
const (
	DefaultInterval            = 50 * time.Millisecond
	DefaultHistorySize         = 3
	DefaultThreshold           = 0.67
	DefaultBorderThickness     = 40
	DefaultBrightnessThreshold = 127
	DefaultDominance           = 1.5

	// the sampled region is the Game Boy screen in the top-left of the canvas
	SampleWidth  = 160
	SampleHeight = 144
)

// DefaultConfig samples the Game Boy screen every 50ms and reports its
// dominant border colour.
func DefaultConfig() Config {
	return Config{
		Interval:    DefaultInterval,
		HistorySize: DefaultHistorySize,
		Threshold:   DefaultThreshold,
		Sampling: SamplingConfig{
			Width:               SampleWidth,
			Height:              SampleHeight,
			BorderThickness:     DefaultBorderThickness,
			BrightnessThreshold: DefaultBrightnessThreshold,
		},
		Classify: DominantColor,
	}
}

// Sampler runs the throttled sampling loop. Tick is expected once per frame
// and only while the theme mode is auto; not calling it is how the loop is
// cancelled.
type Sampler struct {
	cfg      Config
	tracker  *Tracker[Detected]
	detected Detected

	now     func() time.Time
	last    time.Time
	sampled bool
}

// NewSampler creates a sampler whose detected value starts as White.
func NewSampler(cfg Config) *Sampler {
	if cfg.Classify == nil {
		cfg.Classify = DominantColor
	}
	return &Sampler{
		cfg:      cfg,
		tracker:  NewTracker[Detected](cfg.HistorySize, cfg.Threshold),
		detected: White,
		now:      time.Now,
	}
}

// Detected returns the current smoothed value.
func (s *Sampler) Detected() Detected {
	return s.detected
}

// Tick samples src if the interval has elapsed since the previous sample.
// A source with nothing to give is not an error; the next tick tries again.
// The return value is true when the detected value changed.
func (s *Sampler) Tick(src FrameSource) bool {
	if src == nil {
		return false
	}

	now := s.now()
	if s.sampled && now.Sub(s.last) < s.cfg.Interval {
		return false
	}

	sc := s.cfg.Sampling
	pix := src.Sample(0, 0, sc.Width, sc.Height)
	if pix == nil {
		return false
	}

	s.last = now
	s.sampled = true

	s.tracker.Add(s.cfg.Classify(pix, sc))
	if !s.tracker.Ready() {
		return false
	}

	next := s.tracker.Consensus(s.detected)
	if next == s.detected {
		return false
	}
	s.detected = next
	return true
}

// Reset forgets the sample history but keeps the current detected value, so
// the display does not change until a new consensus forms.
func (s *Sampler) Reset() {
	s.tracker.Reset()
	s.sampled = false
}
