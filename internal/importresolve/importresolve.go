// Package importresolve implements component G: the two-pass import
// resolver that joins a workspace source's `import "<folder>/<file>"`
// statements to the dependency set materialized by internal/dependency.
//
// Grounded on ruby-lsp-go's regex-based indexing passes (associationPattern,
// includePattern in indexer.go) as the precedent for a syntactic-extraction
// pass separate from the type-checking pass that follows it.
package importresolve

import (
	"strings"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Unknown is the ImportError.Unknown case: an import statement that matched
// no dependency source.
type Unknown struct {
	Import *ast.Import
}

// Result is what resolving one file's imports produces: the dependency
// sources it actually references (the compiler's `deps` input) plus any
// unresolved imports, which the caller attaches to the importing file as an
// ErrorSource.
type Result struct {
	Referenced map[uri.URI]*ast.File
	Unresolved []Unknown
}

// Extract is the syntactic pass: it reads the import statements straight off
// an already-parsed file's AST. §4.G describes this as a distinct step from
// Resolve's type-check pass, so callers run the two separately rather than
// reaching into file.Imports themselves.
func Extract(file *ast.File) []*ast.Import {
	return file.Imports
}

// Resolve is the type-check pass: for each import, find either a dependency
// source or a sibling workspace source whose relative path equals
// folder/file, with or without the language's file extension. siblings maps
// a workspace source's path (relative to the contract directory, no
// extension) to its URI. Sibling contracts share one compilation unit, so
// an import naming one is resolved without being added to Referenced; the
// batch compiler already sees it via the workspace's own files.
func Resolve(imports []*ast.Import, deps *dependency.Set, root uri.URI, siblings map[string]uri.URI) Result {
	result := Result{Referenced: map[uri.URI]*ast.File{}}

	var files map[uri.URI]*ast.File
	pathToURI := map[string]uri.URI{}
	if deps != nil {
		files = deps.Files()
		// Built-in sources are not user-importable, per §6; only Std is offered.
		pathToURI = deps.URIsByRelativePath(dependency.Std, root)
	}

	for _, imp := range imports {
		want := strings.TrimSuffix(imp.Path(), ast.SourceExt)

		if u, ok := pathToURI[want]; ok {
			result.Referenced[u] = files[u]
			continue
		}
		if _, ok := siblings[want]; ok {
			continue
		}
		result.Unresolved = append(result.Unresolved, Unknown{Import: imp})
	}
	return result
}

// ToMessage converts an unresolved import into a source.Message attached to
// the importing file, per §4.G "attached to the importing file as
// ErrorSource".
func ToMessage(u Unknown) source.Message {
	return source.Errorf(u.Import.Range(), "unknown import %q", u.Import.Path())
}
