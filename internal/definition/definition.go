// Package definition implements component J: resolving the identifier at a
// cursor offset to the location(s) that define it.
//
// Grounded on ruby-lsp-go's HandleDefinition cascade in lsp/server.go
// (direct lookup, then a fallback lookup, then LookupByConvention),
// generalized here from "convention-based Rails lookup" to "walk the
// inheritance graph a level at a time" — the cascade shape survives, the
// fallback rule changes.
package definition

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/search"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// SourceLocation is one go-to-definition (or find-usages) result.
type SourceLocation struct {
	URI   uri.URI
	Range source.Index
}

// GoTo implements the §4.J entry point. workspaceFiles are the parsed ASTs
// of the current workspace; dependencyFiles are the std/built-in
// sub-workspace's parsed ASTs (nil-able — a workspace with a failed
// dependency load still answers definitions local to itself).
func GoTo(fileURI uri.URI, cursorOffset int, workspaceFiles, dependencyFiles map[uri.URI]*ast.File) []SourceLocation {
	file, ok := workspaceFiles[fileURI]
	if !ok {
		return nil
	}
	node := search.FindLast(file, cursorOffset)
	if node == nil {
		return nil
	}

	all := search.CollectParsed(workspaceFiles, dependencyFiles)

	switch n := node.(type) {
	case *ast.Ident:
		return identDefinition(n, all)
	case *ast.FuncId:
		return funcIDDefinition(n, all, dependencyFiles)
	case *ast.TypeId:
		return typeIDDefinition(n, all)
	default:
		// Any other node kind, or an AST shape the compiler facade never
		// produces for this cursor position (§4.J "AST mismatch... empty").
		return nil
	}
}

// enclosingTypeDef walks up from n to the nearest containing TypeDef.
func enclosingTypeDef(n ast.Node) *ast.TypeDef {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if td, ok := cur.(*ast.TypeDef); ok {
			return td
		}
	}
	return nil
}

func identDefinition(n *ast.Ident, all []search.Source) []SourceLocation {
	owner := enclosingTypeDef(n)
	if owner == nil {
		return nil
	}

	if loc, ok := fieldOrParamLocation(n.Name, owner, all); ok {
		return []SourceLocation{loc}
	}
	for _, parent := range search.CollectInheritanceInScope(owner, all) {
		if loc, ok := fieldOrParamLocation(n.Name, parent, all); ok {
			return []SourceLocation{loc}
		}
	}
	return nil
}

func fieldOrParamLocation(name string, td *ast.TypeDef, all []search.Source) (SourceLocation, bool) {
	srcURI, _, ok := search.SourceOf(td, all)
	if !ok {
		return SourceLocation{}, false
	}
	for _, f := range td.Fields {
		if f.Name == name {
			return SourceLocation{URI: srcURI, Range: f.Range()}, true
		}
	}
	for _, fn := range td.Funcs {
		for _, p := range fn.Params {
			if p.Name == name {
				return SourceLocation{URI: srcURI, Range: p.Range()}, true
			}
		}
	}
	return SourceLocation{}, false
}

func funcIDDefinition(n *ast.FuncId, all []search.Source, dependencyFiles map[uri.URI]*ast.File) []SourceLocation {
	switch parent := n.Parent().(type) {
	case *ast.CallExpr:
		if n.IsBuiltIn {
			return builtInFuncDefinition(n.Name, dependencyFiles)
		}
		owner := enclosingTypeDef(n)
		if owner == nil {
			return nil
		}
		scope := append([]*ast.TypeDef{owner}, search.CollectInheritanceInScope(owner, all)...)
		return funcDefInScope(n.Name, scope, all)

	case *ast.FuncDef:
		// The cursor sits on a function's own declaration: find usages
		// across everything that inherits from its owner, per §4.J.
		owner := enclosingTypeDef(n)
		if owner == nil {
			return nil
		}
		scope := append([]*ast.TypeDef{owner}, search.CollectImplementingChildren(owner, all)...)
		return usagesInScope(n.Name, scope, all)

	case *ast.ContractCallExpr:
		typeName, ok := parent.ReceiverInferredType()
		if !ok {
			// §4.J failure mode: type inference absent on receiver.
			return nil
		}
		target, ok := search.TypeDefsByName(all)[typeName]
		if !ok {
			return nil
		}
		scope := append([]*ast.TypeDef{target}, search.CollectInheritanceInScope(target, all)...)
		return funcDefInScope(n.Name, scope, all)

	default:
		return nil
	}
}

func funcDefInScope(name string, scope []*ast.TypeDef, all []search.Source) []SourceLocation {
	var out []SourceLocation
	for _, td := range scope {
		srcURI, _, ok := search.SourceOf(td, all)
		if !ok {
			continue
		}
		for _, fn := range td.Funcs {
			if fn.Name == name {
				out = append(out, SourceLocation{URI: srcURI, Range: fn.SigRange})
			}
		}
	}
	return out
}

func usagesInScope(name string, scope []*ast.TypeDef, all []search.Source) []SourceLocation {
	seen := map[*ast.File]bool{}
	var out []SourceLocation
	for _, td := range scope {
		srcURI, file, ok := search.SourceOf(td, all)
		if !ok || seen[file] {
			continue
		}
		seen[file] = true
		search.WalkDown(file, func(node ast.Node) {
			switch call := node.(type) {
			case *ast.CallExpr:
				if call.ID != nil && call.ID.Name == name {
					out = append(out, SourceLocation{URI: srcURI, Range: call.ID.Range()})
				}
			case *ast.ContractCallExpr:
				if call.CallID != nil && call.CallID.Name == name {
					out = append(out, SourceLocation{URI: srcURI, Range: call.CallID.Range()})
				}
			}
		})
	}
	return out
}

func builtInFuncDefinition(name string, dependencyFiles map[uri.URI]*ast.File) []SourceLocation {
	var out []SourceLocation
	for u, f := range dependencyFiles {
		for _, td := range f.Types {
			for _, fn := range td.Funcs {
				if fn.Name == name {
					out = append(out, SourceLocation{URI: u, Range: fn.SigRange})
				}
			}
		}
	}
	return out
}

func typeIDDefinition(n *ast.TypeId, all []search.Source) []SourceLocation {
	td, ok := search.TypeDefsByName(all)[n.Name]
	if !ok {
		return nil
	}
	srcURI, _, ok := search.SourceOf(td, all)
	if !ok {
		return nil
	}
	return []SourceLocation{{URI: srcURI, Range: td.Range()}}
}
