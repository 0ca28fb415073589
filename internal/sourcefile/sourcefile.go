// Package sourcefile implements component F: the per-file state machine
// (§3 SourceCodeState) and its transitions (§4.F).
//
// Grounded on ruby-lsp-go's store.Document lifecycle (open/read/parse held
// as fields on one struct) generalized into this repo's closed tagged
// variant; parse() is written as an explicit loop per design note
// "recursive state transitions... implement as a loop with an explicit
// state variable" rather than as literal Go recursion, since the loop
// termination is easier to see at a glance.
package sourcefile

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// State is the sealed SourceCodeState tagged variant.
type State interface {
	FileURI() uri.URI
	Generation() uint64
	isSourceState()
}

type common struct {
	URI uri.URI
	Gen uint64
}

func (c common) FileURI() uri.URI   { return c.URI }
func (c common) Generation() uint64 { return c.Gen }

// OnDisk is known to exist but has not been read.
type OnDisk struct{ common }

func (OnDisk) isSourceState() {}

// UnCompiled has text loaded but has not been parsed.
type UnCompiled struct {
	common
	Code string
}

func (UnCompiled) isSourceState() {}

// Parsed has been parsed into an AST. The import resolver's syntactic pass
// (importresolve.Extract) reads import statements straight off AST rather
// than this state carrying its own copy.
type Parsed struct {
	common
	Code string
	AST  *ast.File
}

func (Parsed) isSourceState() {}

// Compiled has been through the batch compiler successfully.
type Compiled struct {
	common
	Code              string
	Parsed            Parsed
	Warnings          []source.Message
	CompiledContracts []string
}

func (Compiled) isSourceState() {}

// ErrorAccess records an I/O failure reading the file.
type ErrorAccess struct {
	common
	Err error
}

func (ErrorAccess) isSourceState() {}

// ErrorSource records a parse or compile failure, retaining the last good
// Parsed state (if any) so definition/completion can keep working against
// stale-but-valid data (§3, E5).
type ErrorSource struct {
	common
	Code     string
	Errors   []source.Message
	Previous *Parsed
}

func (ErrorSource) isSourceState() {}

// NewOnDisk builds an OnDisk state for u at the given generation. Exported
// for callers (the workspace engine) that transition a file back to OnDisk
// on save/close without going through the Parse loop.
func NewOnDisk(u uri.URI, gen uint64) State {
	return OnDisk{common{URI: u, Gen: gen}}
}

// NewUnCompiled builds an UnCompiled state carrying freshly edited text.
func NewUnCompiled(u uri.URI, gen uint64, code string) State {
	return UnCompiled{common{URI: u, Gen: gen}, code}
}

// NewErrorSource builds an ErrorSource state, e.g. for an unresolved import
// discovered outside the compiler's own Compile pass.
func NewErrorSource(u uri.URI, gen uint64, code string, errs []source.Message, previous *Parsed) State {
	return ErrorSource{common{URI: u, Gen: gen}, code, errs, previous}
}

func newGen(prev State) uint64 {
	if prev == nil {
		return 1
	}
	return prev.Generation() + 1
}

// Initialise lists dir and returns one OnDisk state per source file found
// there, per §4.F "initialise(dir): list(dir) -> set of OnDisk". §6 scopes
// source files to "files under contractPath with the target language's
// extension", so non-.ral files (a README, a stray build artifact) never
// enter the workspace's source set.
func Initialise(fs fsaccess.FS, dir uri.URI) (map[uri.URI]State, error) {
	uris, err := fs.List(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[uri.URI]State, len(uris))
	for _, u := range uris {
		if u.Ext() != ast.SourceExt {
			continue
		}
		out[u] = OnDisk{common{URI: u, Gen: 1}}
	}
	return out, nil
}

// Synchronise drops entries no longer within dir, then adds any newly
// discovered on-disk files, keeping existing entries untouched (§4.F,
// invariant #4 "synchronise idempotence").
func Synchronise(fs fsaccess.FS, dir uri.URI, current map[uri.URI]State) (map[uri.URI]State, error) {
	next := make(map[uri.URI]State, len(current))
	for u, s := range current {
		if dir.Contains(u) {
			next[u] = s
		}
	}
	onDisk, err := Initialise(fs, dir)
	if err != nil {
		return nil, err
	}
	for u, s := range onDisk {
		if _, exists := next[u]; !exists {
			next[u] = s
		}
	}
	return next, nil
}

// Parse drives a single file's state forward until it reaches a fixed
// point (Parsed, Compiled, ErrorSource, or a re-confirmed ErrorAccess),
// per §4.F's "tail-recursive" transition table.
func Parse(fs fsaccess.FS, facade compiler.Facade, s State) State {
	for {
		switch cur := s.(type) {
		case OnDisk:
			code, err := fs.Read(cur.URI)
			if err != nil {
				s = ErrorAccess{common{URI: cur.URI, Gen: newGen(cur)}, err}
				continue
			}
			s = UnCompiled{common{URI: cur.URI, Gen: newGen(cur)}, code}
			continue

		case ErrorAccess:
			code, err := fs.Read(cur.URI)
			if err != nil {
				return ErrorAccess{common{URI: cur.URI, Gen: newGen(cur)}, err}
			}
			s = UnCompiled{common{URI: cur.URI, Gen: newGen(cur)}, code}
			continue

		case UnCompiled:
			res, errs := facade.Parse(cur.URI, cur.Code)
			if source.HasErrors(errs) {
				return ErrorSource{common{URI: cur.URI, Gen: newGen(cur)}, cur.Code, errs, nil}
			}
			s = Parsed{
				common: common{URI: cur.URI, Gen: newGen(cur)},
				Code:   cur.Code,
				AST:    res.AST,
			}
			continue

		case Parsed, Compiled, ErrorSource:
			return s

		default:
			return s
		}
	}
}

// Compile distributes a batch CompileResult's per-file outcomes back onto
// their originating Parsed states, per §4.F "compile(parseds, options)".
func Compile(parsed map[uri.URI]Parsed, result compiler.CompileResult) map[uri.URI]State {
	out := make(map[uri.URI]State, len(parsed))
	for u, p := range parsed {
		outcome, ok := result.PerFile[u]
		if !ok {
			out[u] = p
			continue
		}
		if outcome.OK {
			out[u] = Compiled{
				common:            common{URI: u, Gen: newGen(p)},
				Code:              p.Code,
				Parsed:            p,
				Warnings:          outcome.Warnings,
				CompiledContracts: outcome.Contracts,
			}
		} else {
			pCopy := p
			out[u] = ErrorSource{
				common:   common{URI: u, Gen: newGen(p)},
				Code:     p.Code,
				Errors:   outcome.Errors,
				Previous: &pCopy,
			}
		}
	}
	return out
}
