// Package catalog is the fixed library of ROMs the shell can load, and the
// rules for picking one from a query string.
package catalog

import (
	"math/rand/v2"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Game is the file name of a ROM in the library, including its extension.
type Game string

// Library lists every playable ROM, sorted by name.
var Library = []Game{
	"asteroids.gb",
	"batman.gb",
	"contra.gb",
	"donkey-kong.gb",
	"dr-mario-dx.gb",
	"dr-mario.gb",
	"galaga-dx.gb",
	"kirby-dream-2.gb",
	"kirby-dream-dx.gb",
	"kirby-dream.gb",
	"megaman-willy.gb",
	"pokemon-crystal.gbc",
	"pokemon-gold.gbc",
	"pokemon-silver.gbc",
	"pokemon-yellow.gb",
	"super-mario-2.gb",
	"super-mario-dx.gbc",
	"super-mario.gb",
	"tetris-dx.gb",
	"tetris.gb",
	"trip-world.gb",
	"wario-land-3.gbc",
	"zelda-dx.gbc",
	"zelda.gb",
}

// Extensions accepted for ROM names. When a name has no extension they are
// tried in reverse order, so a colour version wins over a monochrome one.
var Extensions = []string{".gb", ".gbc"}

// DefaultDir is where ROMs are looked for unless told otherwise.
const DefaultDir = "ROMs"

// QueryParam is the query string parameter naming the game to load.
const QueryParam = "game"

// IsValid reports whether name is in the library.
func IsValid(name string) bool {
	return slices.Contains(Library, Game(name))
}

// Normalize appends an extension to name when it has none and the result is
// in the library. Otherwise name is returned unchanged.
func Normalize(name string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return name
		}
	}
	for i := len(Extensions) - 1; i >= 0; i-- {
		if c := name + Extensions[i]; IsValid(c) {
			return c
		}
	}
	return name
}

// FromQuery returns the game named by the "game" parameter of a raw query
// string. A leading '?' is allowed. The bool is false when the parameter is
// missing or does not name a game in the library. Malformed parameters
// other than "game" are skipped.
func FromQuery(rawQuery string) (Game, bool) {
	// ParseQuery keeps every pair it could decode alongside the error
	q, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))

	requested := q.Get(QueryParam)
	if requested == "" {
		return "", false
	}

	name := Normalize(requested)
	if !IsValid(name) {
		return "", false
	}
	return Game(name), true
}

// Random returns a game picked with rnd. A nil rnd uses the global source.
func Random(rnd *rand.Rand) Game {
	if rnd == nil {
		return Library[rand.IntN(len(Library))]
	}
	return Library[rnd.IntN(len(Library))]
}

// Select returns the game named in rawQuery, or a random game when the
// query does not name a valid one. It never fails.
func Select(rawQuery string, rnd *rand.Rand) Game {
	if g, ok := FromQuery(rawQuery); ok {
		return g
	}
	return Random(rnd)
}

// Query returns the query string that selects g, suitable for a share link.
func Query(g Game) string {
	v := url.Values{}
	v.Set(QueryParam, strings.TrimSuffix(string(g), path.Ext(string(g))))
	return "?" + v.Encode()
}

func (g Game) index() int {
	return slices.Index(Library, g)
}

// Next returns the game after g in the library, wrapping around. A game
// not in the library is followed by the first entry.
func (g Game) Next() Game {
	return Library[(g.index()+1)%len(Library)]
}

// Prev returns the game before g in the library, wrapping around.
func (g Game) Prev() Game {
	i := g.index()
	if i < 0 {
		return Library[0]
	}
	return Library[(i+len(Library)-1)%len(Library)]
}

// Path returns the location of g inside dir.
func (g Game) Path(dir string) string {
	return filepath.Join(dir, string(g))
}

// acronyms are shown upper-case in display names
var acronyms = map[string]bool{
	"dx": true,
}

// DisplayName turns "kirby-dream-dx.gbc" into "Kirby Dream DX".
func (g Game) DisplayName() string {
	name := strings.TrimSuffix(string(g), path.Ext(string(g)))
	words := strings.Split(name, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		if acronyms[w] {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (g Game) String() string {
	return string(g)
}
