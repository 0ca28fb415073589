// Package compiler defines the facade (§4.B) onto the target language's
// batch parser and type-checker. Both are explicitly out of scope (§1): this
// package only pins down the shape of the black box so the rest of the core
// has something concrete to call.
package compiler

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Options carries the compiler-specific settings from a build file's
// compilerOptions object straight through to the batch compiler, opaque to
// everything else in the core.
type Options map[string]any

// ParseResult is what Parse returns for one file.
type ParseResult struct {
	AST      *ast.File
	Warnings []source.Message
}

// ContractOutcome is one file's result out of a Compile call.
type ContractOutcome struct {
	OK        bool
	Warnings  []source.Message
	Errors    []source.Message
	Contracts []string
}

// CompileResult is the aggregate result of compiling a set of parsed files.
type CompileResult struct {
	PerFile         map[uri.URI]ContractOutcome
	WorkspaceErrors []source.Message
}

// Facade is the interface the rest of the core programs against. A real
// implementation shells out to (or links against) the target language's
// actual batch compiler; Fake (fake.go) is a test double standing
// in for it, grounded on ruby-lsp-go's own line-based "simplified parser for
// demonstration purposes" comment in documents.RubyDocument.Parse.
type Facade interface {
	// Parse turns source text into an AST, or a set of parse errors if the
	// text is not syntactically valid.
	Parse(file uri.URI, code string) (ParseResult, []source.Message)
	// Compile type-checks the given parsed files together (plus any
	// dependency files listed in deps, which are assumed already
	// type-checked and are consulted but not re-diagnosed) and returns a
	// per-file outcome.
	Compile(files map[uri.URI]*ast.File, deps map[uri.URI]*ast.File, options Options) CompileResult
}
