package prefs

import (
	"strconv"

	"github.com/Jabolol/gameboy/theme"
)

// Parser converts a stored string into a value.
type Parser[T any] func(raw string) (T, error)

// Serializer converts a value into the string that is stored.
type Serializer[T any] func(v T) string

// Validator rejects parsed values that are not acceptable.
type Validator[T any] func(v T) bool

// Typed reads and writes values of one type through a Backend.
type Typed[T any] struct {
	backend   Backend
	parse     Parser[T]
	serialize Serializer[T]
	validate  Validator[T]
}

// NewTyped creates a typed accessor. A nil validator accepts every parsed
// value. A nil backend stands for storage that is not available.
func NewTyped[T any](backend Backend, parse Parser[T], serialize Serializer[T], validate Validator[T]) *Typed[T] {
	return &Typed[T]{
		backend:   backend,
		parse:     parse,
		serialize: serialize,
		validate:  validate,
	}
}

// Get returns the stored value for key or def when the key is missing or
// empty, fails to parse or fails validation. It never reports an error.
func (s *Typed[T]) Get(key Key, def T) T {
	if s.backend == nil {
		return def
	}

	raw, ok := s.backend.Load(key)
	if !ok || raw == "" {
		return def
	}

	v, err := s.parse(raw)
	if err != nil {
		return def
	}
	if s.validate != nil && !s.validate(v) {
		return def
	}
	return v
}

// Set stores v under key. With no backend it does nothing.
func (s *Typed[T]) Set(key Key, v T) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Store(key, s.serialize(v))
}

func parseString(raw string) (string, error) {
	return raw, nil
}

func formatString(v string) string {
	return v
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

// formatNumber uses the shortest representation that parses back to the
// same float64.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseBool(raw string) (bool, error) {
	return raw == "true", nil
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

// Strings stores values verbatim.
func Strings(b Backend) *Typed[string] {
	return NewTyped(b, parseString, formatString, nil)
}

// Numbers stores float64 values.
func Numbers(b Backend) *Typed[float64] {
	return NewTyped(b, parseNumber, formatNumber, nil)
}

// Booleans stores bool values. Anything other than "true" reads as false.
func Booleans(b Backend) *Typed[bool] {
	return NewTyped(b, parseBool, formatBool, nil)
}

// Scales stores a Scale, accepting only 1, 2 or 3.
func Scales(b Backend) *Typed[Scale] {
	return NewTyped(b,
		func(raw string) (Scale, error) {
			n, err := strconv.Atoi(raw)
			return Scale(n), err
		},
		func(v Scale) string {
			return strconv.Itoa(int(v))
		},
		Scale.Valid,
	)
}

// Themes stores a theme.Mode, accepting only light, dark or auto.
func Themes(b Backend) *Typed[theme.Mode] {
	return NewTyped(b,
		func(raw string) (theme.Mode, error) {
			return theme.Mode(raw), nil
		},
		func(v theme.Mode) string {
			return string(v)
		},
		theme.Mode.Valid,
	)
}
