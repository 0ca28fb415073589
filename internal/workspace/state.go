// Package workspace implements component H: the top-level engine that owns
// the WorkspaceState tagged variant (§3) and orchestrates the build model
// (C, D), the dependency loader (E), and per-source transitions (F).
//
// Grounded on elves-elvish's pkg/lsp server (a single struct holding
// workspace state, mutated under one lock) and ruby-lsp-go's own
// GlobalState-plus-sync.Mutex pattern in main.go/store.go.
package workspace

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/sourcefile"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// State is the sealed WorkspaceState tagged variant.
type State interface {
	WorkspaceURI() uri.URI
	Generation() uint64
	isWorkspaceState()
}

type common struct {
	URI uri.URI
	Gen uint64
}

func (c common) WorkspaceURI() uri.URI { return c.URI }
func (c common) Generation() uint64    { return c.Gen }

// Created is a workspace before any build file has been loaded.
type Created struct{ common }

func (Created) isWorkspaceState() {}

// buildAware is the shared shape of every state that has a build loaded;
// it's embedded, not exported, since §3 treats BuildAware as a family of
// specializations rather than a state in its own right (design note
// "tagged variants over inheritance": behavior varies per concrete case,
// never by inspecting a shared base).
type buildAware struct {
	common
	Build   buildfile.State
	Sources map[uri.URI]sourcefile.State
}

// UnCompiled is a BuildAware workspace with at least one source not yet
// parsed.
type UnCompiled struct{ buildAware }

func (UnCompiled) isWorkspaceState() {}

// Parsed is a BuildAware workspace where every source has been parsed.
type Parsed struct{ buildAware }

func (Parsed) isWorkspaceState() {}

// Compiled is a BuildAware workspace that has been through a successful
// compile pass, retaining the previous Parsed snapshot for diagnostics
// diffing.
type Compiled struct {
	buildAware
	Previous *Parsed
}

func (Compiled) isWorkspaceState() {}

// Errored is a workspace-level failure: a bad build file, a failed
// dependency load, or compiler errors unattributable to any single file.
// Sources retains whatever per-file states existed before the failure, which
// is what lets a subsequent successful build recover them without having to
// re-synchronise from disk.
type Errored struct {
	buildAware
	Errors []source.Message
}

func (Errored) isWorkspaceState() {}

func newGen(prev State) uint64 {
	if prev == nil {
		return 1
	}
	return prev.Generation() + 1
}

// sources returns the source map of any BuildAware-family state, or nil for
// Created.
func sources(s State) map[uri.URI]sourcefile.State {
	switch v := s.(type) {
	case UnCompiled:
		return v.Sources
	case Parsed:
		return v.Sources
	case Compiled:
		return v.Sources
	case Errored:
		return v.Sources
	default:
		return nil
	}
}

func build(s State) (buildfile.State, bool) {
	switch v := s.(type) {
	case UnCompiled:
		return v.Build, true
	case Parsed:
		return v.Build, true
	case Compiled:
		return v.Build, true
	case Errored:
		return v.Build, true
	default:
		return nil, false
	}
}
