// Package filesystem routes every disk access of malcr through a swappable afero backend.
package filesystem

import (
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory backend. Used by tests.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// OpenAppend opens path for appending, creating it when needed.
func OpenAppend(path string) (afero.File, error) {
	return backend.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
}
