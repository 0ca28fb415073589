// Package uri implements the stable opaque identifier for files and
// directories described in the data model: a hierarchical namespace that
// supports parent/filename/extension queries and containment checks.
package uri

import (
	"net/url"
	"path"
	"strings"
)

// URI identifies a file or directory. It is always stored as a "file://"
// URI with a slash-separated, cleaned path, so that two URIs referring to
// the same location compare equal as plain strings.
type URI string

// FromPath builds a URI from a filesystem path.
func FromPath(p string) URI {
	p = path.Clean(filepathToSlash(p))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return URI("file://" + p)
}

// Path returns the filesystem path this URI addresses.
func (u URI) Path() string {
	s := string(u)
	if strings.HasPrefix(s, "file://") {
		if parsed, err := url.Parse(s); err == nil {
			return parsed.Path
		}
		return strings.TrimPrefix(s, "file://")
	}
	return s
}

// String returns the raw URI text.
func (u URI) String() string { return string(u) }

// Parent returns the URI of the containing directory. The parent of the
// root is the root itself.
func (u URI) Parent() URI {
	p := u.Path()
	dir := path.Dir(p)
	return FromPath(dir)
}

// Filename returns the last path segment, including its extension.
func (u URI) Filename() string {
	return path.Base(u.Path())
}

// Ext returns the filename extension including the leading dot, or "" if
// there is none.
func (u URI) Ext() string {
	return path.Ext(u.Path())
}

// Join returns a new URI for rel resolved against u, treated as a directory.
func (u URI) Join(rel string) URI {
	return FromPath(path.Join(u.Path(), filepathToSlash(rel)))
}

// Contains reports whether other names a location inside u (or equal to u),
// after normalization. A directory always contains itself.
func (u URI) Contains(other URI) bool {
	a := strings.TrimSuffix(u.Path(), "/")
	b := other.Path()
	if a == b {
		return true
	}
	return strings.HasPrefix(b, a+"/")
}

// RelativeTo returns the slash-separated path of u relative to base, and
// whether base actually contains u.
func (u URI) RelativeTo(base URI) (string, bool) {
	if !base.Contains(u) {
		return "", false
	}
	a := strings.TrimSuffix(base.Path(), "/")
	b := u.Path()
	rel := strings.TrimPrefix(b, a)
	return strings.TrimPrefix(rel, "/"), true
}

// TrimExt removes a trailing extension, if any.
func (u URI) TrimExt() URI {
	s := u.Path()
	ext := path.Ext(s)
	if ext == "" {
		return u
	}
	return FromPath(strings.TrimSuffix(s, ext))
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
