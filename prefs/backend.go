// Package prefs persists user preferences as small string values, one entry
// per key, and reads them back with typed, fail-open accessors.
package prefs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Key names a persisted preference. Every key lives in the "gb-" namespace.
type Key string

const (
	KeyScale  Key = "gb-scale"
	KeyVolume Key = "gb-volume"
	KeyTheme  Key = "gb-theme"
	KeyTiles  Key = "gb-tiles"
)

// Backend stores raw string values. Load reports false for a missing key.
type Backend interface {
	Load(key Key) (string, bool)
	Store(key Key, value string) error
}

// the name of the directory inside the user's configuration directory
const configDir = "gameboy"

// DefaultDir returns the directory preferences are written to when no other
// directory is given on the command line.
func DefaultDir() (string, error) {
	p, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(p, configDir), nil
}

// FileBackend keeps each key in its own file inside a directory. The
// directory is created on the first Store.
type FileBackend struct {
	fs  afero.Fs
	dir string

	crit sync.Mutex
}

// NewFileBackend creates a backend rooted at dir on the given filesystem.
func NewFileBackend(fs afero.Fs, dir string) *FileBackend {
	return &FileBackend{
		fs:  fs,
		dir: dir,
	}
}

func (b *FileBackend) path(key Key) string {
	return filepath.Join(b.dir, string(key))
}

// Load returns the content of the file for key. Any read error, including
// a missing file, is reported as a missing key.
func (b *FileBackend) Load(key Key) (string, bool) {
	b.crit.Lock()
	defer b.crit.Unlock()

	data, err := afero.ReadFile(b.fs, b.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Store replaces the file for key with value.
func (b *FileBackend) Store(key Key, value string) error {
	b.crit.Lock()
	defer b.crit.Unlock()

	if err := b.fs.MkdirAll(b.dir, 0700); err != nil {
		return err
	}
	return afero.WriteFile(b.fs, b.path(key), []byte(value), 0600)
}
