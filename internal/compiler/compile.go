package compiler

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Compile implements Facade. It is a name-resolution pass only: it does not
// attempt real type inference, arithmetic, or control-flow analysis. It
// checks that every identifier and call target used in a function body
// resolves to a field, a parameter, a previously declared local, a sibling
// function, an inherited function, or (for `recv.method()` calls) a function
// declared on or inherited by the named contract; function visibility is not
// checked. That is enough to exercise every rule
// definition and completion need to dispatch on.
//
// Compile is the one place in the core allowed to mutate the AST it is
// given: it fills in Ident.InferredType as it resolves contract-call
// receivers, mirroring the annotation pass a real type-checker performs.
// Everything downstream only reads the tree.
func (Fake) Compile(files map[uri.URI]*ast.File, deps map[uri.URI]*ast.File, options Options) CompileResult {
	registry := map[string]*ast.TypeDef{}
	for _, f := range deps {
		for _, td := range f.Types {
			registry[td.Name] = td
		}
	}
	for _, f := range files {
		for _, td := range f.Types {
			registry[td.Name] = td
		}
	}

	result := CompileResult{PerFile: map[uri.URI]ContractOutcome{}}

	for fu, f := range files {
		outcome := ContractOutcome{OK: true}
		for _, td := range f.Types {
			outcome.Contracts = append(outcome.Contracts, td.Name)

			for _, parent := range td.ParentNames() {
				if _, ok := registry[parent]; !ok {
					outcome.Errors = append(outcome.Errors, source.Errorf(
						parentIndex(td, parent), "undefined type %s", parent))
				}
			}

			funcsInScope := collectFuncs(td, registry, map[string]bool{})

			for _, fn := range td.Funcs {
				known := map[string]bool{}
				for _, field := range td.Fields {
					known[field.Name] = true
				}
				for _, p := range fn.Params {
					known[p.Name] = true
				}
				if fn.Body == nil {
					continue
				}
				for _, stmt := range fn.Body.Stmts {
					switch s := stmt.(type) {
					case *ast.VarDecl:
						outcome.Errors = append(outcome.Errors,
							resolveExpr(s.Value, known, funcsInScope, registry)...)
						known[s.Name] = true
					case *ast.ReturnStmt:
						outcome.Errors = append(outcome.Errors,
							resolveExpr(s.Value, known, funcsInScope, registry)...)
					default:
						outcome.Errors = append(outcome.Errors,
							resolveExpr(stmt, known, funcsInScope, registry)...)
					}
				}
			}
		}
		outcome.OK = len(outcome.Errors) == 0
		result.PerFile[fu] = outcome
	}
	return result
}

// collectFuncs gathers the names of every function directly declared on td
// or reachable through its extends/implements chain, guarding against
// inheritance cycles with a visited set, as search.CollectInheritanceInScope
// does.
func collectFuncs(td *ast.TypeDef, registry map[string]*ast.TypeDef, visited map[string]bool) map[string]bool {
	if visited[td.Name] {
		return map[string]bool{}
	}
	visited[td.Name] = true

	out := map[string]bool{}
	for _, fn := range td.Funcs {
		out[fn.Name] = true
	}
	for _, parentName := range td.ParentNames() {
		parent, ok := registry[parentName]
		if !ok {
			continue
		}
		for name := range collectFuncs(parent, registry, visited) {
			out[name] = true
		}
	}
	return out
}

func resolveExpr(n ast.Node, known, funcsInScope map[string]bool, registry map[string]*ast.TypeDef) []source.Message {
	switch e := n.(type) {
	case nil:
		return nil
	case *ast.Ident:
		if !known[e.Name] {
			return []source.Message{source.Errorf(e.Range(), "undefined identifier %s", e.Name)}
		}
		return nil
	case *ast.CallExpr:
		if e.ID != nil && !funcsInScope[e.ID.Name] {
			return []source.Message{source.Errorf(e.ID.Range(), "undefined function %s", e.ID.Name)}
		}
		return nil
	case *ast.ContractCallExpr:
		return resolveContractCall(e, registry)
	default:
		return nil
	}
}

func resolveContractCall(e *ast.ContractCallExpr, registry map[string]*ast.TypeDef) []source.Message {
	recv, ok := e.Receiver.(*ast.Ident)
	if !ok {
		return nil
	}
	target, ok := registry[recv.Name]
	if !ok {
		return []source.Message{source.Errorf(recv.Range(), "undefined contract %s", recv.Name)}
	}
	// Simplification: the receiver identifier names its own type directly
	// (no local-variable-to-contract-instance binding is modeled).
	recv.InferredType = target.Name

	if e.CallID == nil {
		return nil
	}
	for fn := range collectFuncs(target, registry, map[string]bool{}) {
		if fn == e.CallID.Name {
			return nil
		}
	}
	return []source.Message{source.Errorf(e.CallID.Range(),
		"undefined function %s on %s", e.CallID.Name, target.Name)}
}

func parentIndex(td *ast.TypeDef, name string) source.Index {
	for _, list := range [][]*ast.TypeId{td.Extends, td.Implements} {
		for _, id := range list {
			if id.Name == name {
				return id.Range()
			}
		}
	}
	return td.Range()
}
