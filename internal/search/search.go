// Package search implements component I: node walks, scope tables, and
// inheritance collectors over the AST the compiler facade returns.
//
// Grounded on ruby-lsp-go's documents.RubyDocument.findNodeAtPosition
// (recurse into children first, fall back to the current node) and
// lsp/server.go's extractSymbolsFromAST (a plain pre-order Children() walk);
// generalized from a line/character Position to a byte-offset
// source.Index, and from a single-file Node tree to a
// multi-file, inheritance-aware graph.
package search

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// FindLast is the depth-first search for the deepest node whose Range
// contains offset, per §4.I. It mirrors findNodeAtPosition's shape
// (recurse into children, return the current node only if none of them
// matched) rather than tracking a "best so far" candidate, since the AST's
// child ranges are always nested inside their parent's.
func FindLast(root ast.Node, offset int) ast.Node {
	if root == nil || !root.Range().Contains(offset) {
		return nil
	}
	for _, child := range root.Children() {
		if found := FindLast(child, offset); found != nil {
			return found
		}
	}
	return root
}

// WalkDown performs a pre-order traversal of the tree rooted at root,
// calling visit on every node including root itself.
func WalkDown(root ast.Node, visit func(ast.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children() {
		WalkDown(child, visit)
	}
}

// Source pairs a parsed file with its own file URI, the
// unit collectInheritanceInScope and collectImplementingChildren operate
// over.
type Source struct {
	URI  uri.URI
	File *ast.File
}

// CollectParsed concatenates a workspace's own sources with its dependency
// sources into one flat scan list, per §4.I "concatenate workspace sources
// with dependency sources". Dependency sources come first, so that
// TypeDefsByName lets a workspace type shadow a dependency type of the same
// name.
func CollectParsed(workspaceSources, dependencySources map[uri.URI]*ast.File) []Source {
	out := make([]Source, 0, len(workspaceSources)+len(dependencySources))
	for u, f := range dependencySources {
		out = append(out, Source{URI: u, File: f})
	}
	for u, f := range workspaceSources {
		out = append(out, Source{URI: u, File: f})
	}
	return out
}

// TypeDefsByName indexes every TypeDef in scope by name, last write wins
// (CollectParsed puts workspace sources after dependency sources, so a
// workspace type shadows a dependency type, mirroring the fake compiler's
// own registry-building order in compile.go).
func TypeDefsByName(all []Source) map[string]*ast.TypeDef {
	byName := map[string]*ast.TypeDef{}
	for _, s := range all {
		for _, td := range s.File.Types {
			byName[td.Name] = td
		}
	}
	return byName
}

// SourceOf returns the URI and File that declares td, used to anchor a
// go-to-definition result once the target TypeDef/FuncDef has been found.
func SourceOf(td *ast.TypeDef, all []Source) (uri.URI, *ast.File, bool) {
	for _, s := range all {
		for _, candidate := range s.File.Types {
			if candidate == td {
				return s.URI, s.File, true
			}
		}
	}
	return "", nil, false
}

// CollectInheritanceInScope returns every TypeDef transitively reachable
// from start via extends/implements, excluding start itself, with no
// duplicates and no infinite loop on a cycle (invariant #6, scenario E6).
// Implemented as a worklist over type names with a visited set, per §9's
// "worklist with a visited-set of type names".
func CollectInheritanceInScope(start *ast.TypeDef, all []Source) []*ast.TypeDef {
	byName := TypeDefsByName(all)

	visited := map[string]bool{start.Name: true}
	var out []*ast.TypeDef
	worklist := append([]string{}, start.ParentNames()...)

	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		td, ok := byName[name]
		if !ok {
			continue
		}
		out = append(out, td)
		worklist = append(worklist, td.ParentNames()...)
	}
	return out
}

// CollectImplementingChildren returns every TypeDef in scope whose
// extends/implements chain reaches start — the reverse edge of
// CollectInheritanceInScope, per §4.I.
func CollectImplementingChildren(start *ast.TypeDef, all []Source) []*ast.TypeDef {
	var out []*ast.TypeDef
	for _, s := range all {
		for _, td := range s.File.Types {
			if td.Name == start.Name {
				continue
			}
			for _, parent := range CollectInheritanceInScope(td, all) {
				if parent.Name == start.Name {
					out = append(out, td)
					break
				}
			}
		}
	}
	return out
}
