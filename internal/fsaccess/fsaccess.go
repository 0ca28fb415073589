// Package fsaccess is component A: the sole place file-system side effects
// happen. Everything above it deals in URIs and strings, never *os.File.
//
// Grounded on ruby-lsp-go's indexer.BuildIndex, which walks and reads files
// directly with os/filepath rather than through an fs abstraction; afero
// (present only transitively, via viper, in every example repo's go.mod and
// never imported directly by any of them) would add a swappable-backend
// layer nothing in this spec asks for — the dependency loader's own
// idempotence requirement (§4.E) is satisfied by a plain os.Stat check, and
// tests exercise this package against real temporary directories the same
// way the pack's own test suites do.
package fsaccess

import (
	"os"
	"path/filepath"

	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Error wraps an I/O failure with the URI that caused it, so callers can
// convert it into a source.Message at the component boundary per §7.
type Error struct {
	URI uri.URI
	Err error
}

func (e *Error) Error() string { return e.URI.String() + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// FS is the file-access surface every other component programs against.
type FS interface {
	Read(u uri.URI) (string, error)
	Write(u uri.URI, code string) (uri.URI, error)
	Exists(u uri.URI) (bool, error)
	List(dir uri.URI) ([]uri.URI, error)
}

// OS is the real, disk-backed FS implementation.
type OS struct{}

func New() OS { return OS{} }

func (OS) Read(u uri.URI) (string, error) {
	b, err := os.ReadFile(u.Path())
	if err != nil {
		return "", &Error{URI: u, Err: err}
	}
	return string(b), nil
}

func (OS) Write(u uri.URI, code string) (uri.URI, error) {
	if err := os.MkdirAll(filepath.Dir(u.Path()), 0o755); err != nil {
		return "", &Error{URI: u, Err: err}
	}
	if err := os.WriteFile(u.Path(), []byte(code), 0o644); err != nil {
		return "", &Error{URI: u, Err: err}
	}
	return u, nil
}

func (OS) Exists(u uri.URI) (bool, error) {
	_, err := os.Stat(u.Path())
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, &Error{URI: u, Err: err}
	}
}

func (OS) List(dir uri.URI) ([]uri.URI, error) {
	entries, err := os.ReadDir(dir.Path())
	if err != nil {
		return nil, &Error{URI: dir, Err: err}
	}
	var out []uri.URI
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, dir.Join(e.Name()))
	}
	return out, nil
}
