// Package source implements the small value types shared by every other
// component: a position within a file (Index) and a compiler-produced
// diagnostic anchored at one (Message). These mirror diag.Ranging and
// diag.Error from elves-elvish's pkg/diag, collapsed into value
// types since the target language's batch compiler is a black box: we only
// ever need to carry positions through, never interpret them ourselves.
package source

import (
	"fmt"

	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Index is a half-open byte range [Offset, Offset+Width) within a single
// file. The invariant Offset+Width <= len(file) is enforced by callers that
// construct an Index from real source text; this type itself just carries
// the three fields.
type Index struct {
	Offset int
	Width  int
	File   uri.URI
}

// ZeroIndex returns the dedicated zero value that carries only a file URI,
// used when a diagnostic cannot be pinned to a specific range (e.g. "file
// could not be read at all").
func ZeroIndex(file uri.URI) Index {
	return Index{Offset: 0, Width: 0, File: file}
}

// End returns the exclusive end offset of the range.
func (i Index) End() int { return i.Offset + i.Width }

// IsZero reports whether i carries no range information beyond its file.
func (i Index) IsZero() bool { return i.Offset == 0 && i.Width == 0 }

// Contains reports whether offset falls within [Offset, End()). A
// zero-width index never contains any offset.
func (i Index) Contains(offset int) bool {
	return i.Width > 0 && offset >= i.Offset && offset < i.End()
}

// Kind classifies a CompilerMessage.
type Kind int

const (
	KindError Kind = iota
	KindWarning
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Message is a single diagnostic produced by the compiler or by one of the
// core components (build validation, dependency loading, import
// resolution). Kind, Text, and At together are enough for the
// server adapter to render an LSP Diagnostic without knowing which
// component produced it.
type Message struct {
	Kind Kind
	Text string
	At   Index
}

// IsError reports whether m belongs to the distinguished error subset.
func (m Message) IsError() bool { return m.Kind == KindError }

// Errorf builds an error-kind Message.
func Errorf(at Index, format string, args ...any) Message {
	return Message{Kind: KindError, Text: fmt.Sprintf(format, args...), At: at}
}

// Warningf builds a warning-kind Message.
func Warningf(at Index, format string, args ...any) Message {
	return Message{Kind: KindWarning, Text: fmt.Sprintf(format, args...), At: at}
}

// Filter returns the subset of msgs matching kind.
func Filter(msgs []Message, kind Kind) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Errors returns the distinguished error subset of msgs.
func Errors(msgs []Message) []Message { return Filter(msgs, KindError) }

// HasErrors reports whether msgs contains at least one error.
func HasErrors(msgs []Message) bool {
	for _, m := range msgs {
		if m.IsError() {
			return true
		}
	}
	return false
}
