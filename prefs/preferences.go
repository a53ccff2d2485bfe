package prefs

import (
	"log"
	"math"

	"github.com/Jabolol/gameboy/theme"
)

// Scale is the integer zoom applied to the canvas.
type Scale int

// ValidScales lists the scales in cycle order.
var ValidScales = []Scale{1, 2, 3}

// Valid reports whether s is one of ValidScales.
func (s Scale) Valid() bool {
	for _, v := range ValidScales {
		if v == s {
			return true
		}
	}
	return false
}

// Next returns the scale that follows s, wrapping from 3 back to 1.
func (s Scale) Next() Scale {
	for i, v := range ValidScales {
		if v == s {
			return ValidScales[(i+1)%len(ValidScales)]
		}
	}
	return ValidScales[0]
}

const (
	DefaultVolume       = 0.7
	VolumeStep          = 0.1
	MinVolume           = 0.0
	MaxVolume           = 1.0
	DefaultDesktopScale = Scale(3)
	DefaultMobileScale  = Scale(2)

	// screens narrower than this get the smaller default scale
	MobileBreakpoint = 768
)

// Defaults are used for any preference that has not been stored yet.
type Defaults struct {
	Scale  Scale
	Volume float64
	Theme  theme.Mode
	Tiles  bool
}

// DefaultsFor returns the defaults for a screen of the given width in
// pixels. A width of zero means unknown and is treated as a desktop.
func DefaultsFor(screenWidth int) Defaults {
	d := Defaults{
		Scale:  DefaultDesktopScale,
		Volume: DefaultVolume,
		Theme:  theme.ModeLight,
	}
	if screenWidth > 0 && screenWidth < MobileBreakpoint {
		d.Scale = DefaultMobileScale
	}
	return d
}

// Preferences holds the four persisted user settings. Every mutation is
// written through to the backend straight away. Preferences is owned by
// the UI loop and is not safe for concurrent use.
type Preferences struct {
	scales  *Typed[Scale]
	volumes *Typed[float64]
	themes  *Typed[theme.Mode]
	tiles   *Typed[bool]

	scale  Scale
	volume float64
	mode   theme.Mode
	tile   bool
}

func validVolume(v float64) bool {
	return v >= MinVolume && v <= MaxVolume
}

// Load reads every preference from the backend, falling back to d.
func Load(b Backend, d Defaults) *Preferences {
	p := &Preferences{
		scales:  Scales(b),
		volumes: NewTyped(b, parseNumber, formatNumber, validVolume),
		themes:  Themes(b),
		tiles:   Booleans(b),
	}
	p.scale = p.scales.Get(KeyScale, d.Scale)
	p.volume = p.volumes.Get(KeyVolume, d.Volume)
	p.mode = p.themes.Get(KeyTheme, d.Theme)
	p.tile = p.tiles.Get(KeyTiles, d.Tiles)
	return p
}

func persist(key Key, err error) {
	if err != nil {
		log.Printf("prefs: failed to store %s: %v", key, err)
	}
}

func (p *Preferences) Scale() Scale { return p.scale }

// SetScale ignores values outside ValidScales.
func (p *Preferences) SetScale(s Scale) {
	if !s.Valid() {
		return
	}
	p.scale = s
	persist(KeyScale, p.scales.Set(KeyScale, s))
}

// CycleScale moves to the next scale, 1 to 2 to 3 and back to 1.
func (p *Preferences) CycleScale() {
	p.SetScale(p.scale.Next())
}

func (p *Preferences) Volume() float64 { return p.volume }

// SetVolume clamps v to [0,1] before storing it.
func (p *Preferences) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	p.volume = math.Max(MinVolume, math.Min(MaxVolume, v))
	persist(KeyVolume, p.volumes.Set(KeyVolume, p.volume))
}

// step rounds to hundredths so repeated steps do not accumulate error
func step(v, delta float64) float64 {
	return math.Round((v+delta)*100) / 100
}

func (p *Preferences) VolumeUp() {
	p.SetVolume(step(p.volume, VolumeStep))
}

func (p *Preferences) VolumeDown() {
	p.SetVolume(step(p.volume, -VolumeStep))
}

func (p *Preferences) Theme() theme.Mode { return p.mode }

// SetTheme ignores unknown modes.
func (p *Preferences) SetTheme(m theme.Mode) {
	if !m.Valid() {
		return
	}
	p.mode = m
	persist(KeyTheme, p.themes.Set(KeyTheme, m))
}

// CycleTheme moves light to dark to auto and back to light.
func (p *Preferences) CycleTheme() {
	p.SetTheme(p.mode.Next())
}

func (p *Preferences) Tiles() bool { return p.tile }

func (p *Preferences) SetTiles(v bool) {
	p.tile = v
	persist(KeyTiles, p.tiles.Set(KeyTiles, v))
}

func (p *Preferences) ToggleTiles() {
	p.SetTiles(!p.tile)
}
