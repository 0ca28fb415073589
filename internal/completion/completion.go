// Package completion implements component K: suggesting names at a cursor
// offset inside a function body.
//
// Grounded on ruby-lsp-go's HandleCompletion/idx.PrefixSearch cascade in
// lsp/server.go and indexer.Index — the "look up the enclosing scope,
// union in inherited members, return the list" shape survives; the prefix
// index over Ruby symbols becomes a walk of the AST scope chain, since the
// compiler facade hands back live TypeDef/FuncDef nodes rather than a
// flat name table.
package completion

import (
	"regexp"
	"strings"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/search"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Kind mirrors ruby-lsp-go's indexer.SymbolType/CompletionKindFromType
// split: a closed set of suggestion flavors an editor renders with distinct
// icons.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindType
	KindInterface
	KindKeyword
)

// Suggestion is one completion candidate, per §4.K.
type Suggestion struct {
	Label         string
	Detail        string
	Documentation string
	Insert        string
	Kind          Kind
}

var receiverDot = regexp.MustCompile(`(\w+)\.(\w*)$`)

// Complete implements the §4.K entry point. sourceCode is the file's full
// text as of the request (the AST alone doesn't retain it); dependencyFiles
// supplies built-in functions and, when the receiver identifies a std
// import, its contract members.
func Complete(fileURI uri.URI, sourceCode string, cursorOffset int, workspaceFiles, dependencyFiles map[uri.URI]*ast.File) []Suggestion {
	file, ok := workspaceFiles[fileURI]
	if !ok {
		return nil
	}
	node := search.FindLast(file, cursorOffset)
	if node == nil {
		return nil
	}

	fn := enclosingFuncDef(node)
	if fn == nil {
		return nil
	}
	owner := enclosingTypeDef(fn)
	if owner == nil {
		return nil
	}

	all := search.CollectParsed(workspaceFiles, dependencyFiles)

	if before := textBeforeCursor(sourceCode, cursorOffset); before != "" {
		if m := receiverDot.FindStringSubmatch(before); m != nil {
			return memberSuggestions(m[1], fn, all)
		}
	}

	var out []Suggestion
	out = append(out, localVariables(fn, cursorOffset)...)
	out = append(out, functionSuggestions(owner, all)...)
	for _, parent := range search.CollectInheritanceInScope(owner, all) {
		out = append(out, functionSuggestions(parent, all)...)
	}
	out = append(out, builtInSuggestions(dependencyFiles)...)
	return out
}

func textBeforeCursor(code string, offset int) string {
	if offset < 0 || offset > len(code) {
		return ""
	}
	line := code[:offset]
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}
	return line
}

func enclosingFuncDef(n ast.Node) *ast.FuncDef {
	for cur := n; cur != nil; cur = cur.Parent() {
		if fn, ok := cur.(*ast.FuncDef); ok {
			return fn
		}
	}
	return nil
}

func enclosingTypeDef(n ast.Node) *ast.TypeDef {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if td, ok := cur.(*ast.TypeDef); ok {
			return td
		}
	}
	return nil
}

// localVariables collects the function's own parameters plus every
// let-bound variable declared before cursorOffset, per §4.K "local variables
// visible at offset".
func localVariables(fn *ast.FuncDef, cursorOffset int) []Suggestion {
	var out []Suggestion
	for _, p := range fn.Params {
		detail := p.Name
		if p.Type != nil {
			detail += ": " + p.Type.Name
		}
		out = append(out, Suggestion{Label: p.Name, Detail: detail, Insert: p.Name, Kind: KindVariable})
	}
	if fn.Body == nil {
		return out
	}
	for _, stmt := range fn.Body.Stmts {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok || decl.Range().Offset >= cursorOffset {
			continue
		}
		out = append(out, Suggestion{Label: decl.Name, Detail: decl.Name, Insert: decl.Name, Kind: KindVariable})
	}
	return out
}

func functionSuggestions(td *ast.TypeDef, all []search.Source) []Suggestion {
	var out []Suggestion
	for _, fn := range td.Funcs {
		out = append(out, Suggestion{
			Label:         fn.Name,
			Detail:        fn.Signature(),
			Documentation: "inherited from " + td.Name,
			Insert:        fn.Name + "()",
			Kind:          KindFunction,
		})
	}
	return out
}

func builtInSuggestions(dependencyFiles map[uri.URI]*ast.File) []Suggestion {
	var out []Suggestion
	for _, f := range dependencyFiles {
		for _, td := range f.Types {
			for _, fn := range td.Funcs {
				out = append(out, Suggestion{
					Label:         fn.Name,
					Detail:        fn.Signature(),
					Documentation: "built-in, from " + td.Name,
					Insert:        fn.Name + "()",
					Kind:          KindFunction,
				})
			}
		}
	}
	return out
}

// memberSuggestions resolves receiverName the same way the fake compiler's
// resolveContractCall does (§9 "the receiver identifier names its own type
// directly"): first as a contract/interface/struct name in scope, then as a
// typed function parameter, then as a typed field of the enclosing contract,
// and offers that type's own and inherited members.
func memberSuggestions(receiverName string, fn *ast.FuncDef, all []search.Source) []Suggestion {
	byName := search.TypeDefsByName(all)

	target, ok := byName[receiverName]
	if !ok {
		for _, p := range fn.Params {
			if p.Name == receiverName && p.Type != nil {
				target, ok = byName[p.Type.Name]
				break
			}
		}
	}
	if owner := enclosingTypeDef(fn); !ok && owner != nil {
		for _, f := range owner.Fields {
			if f.Name == receiverName && f.Type != nil {
				target, ok = byName[f.Type.Name]
				break
			}
		}
	}
	if !ok {
		return nil
	}

	var out []Suggestion
	out = append(out, functionSuggestions(target, all)...)
	for _, parent := range search.CollectInheritanceInScope(target, all) {
		out = append(out, functionSuggestions(parent, all)...)
	}
	return out
}
