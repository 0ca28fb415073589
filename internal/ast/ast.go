// Package ast defines the minimal AST shape produced by the batch compiler
// (§1: "the batch compiler itself... is a black-box dependency"; only its
// output shape is specified here, generalizing ruby-lsp-go's own
// documents.Node {Type, Name, Location, Children} into a closed set of typed
// node kinds per design note "tagged variants over inheritance").
//
// Parent pointers are materialized at parse time (the other of the two
// alternatives design note §9 allows) rather than tracked on a walk stack,
// because go-to-definition needs to inspect a FuncId's parent node long
// after the initial walk that found it has returned.
package ast

import "github.com/ralph-lang/ralph-lsp-go/internal/source"

// SourceExt is the target language's file extension.
const SourceExt = ".ral"

// Kind discriminates the closed set of node types this package models.
type Kind int

const (
	KindFile Kind = iota
	KindImport
	KindTypeDef
	KindFuncDef
	KindParam
	KindBlock
	KindVarDecl
	KindReturnStmt
	KindIdent
	KindFuncId
	KindTypeId
	KindCallExpr
	KindContractCallExpr
)

func (k Kind) String() string {
	names := [...]string{
		"File", "Import", "TypeDef", "FuncDef", "Param", "Block", "VarDecl",
		"ReturnStmt", "Ident", "FuncId", "TypeId", "CallExpr", "ContractCallExpr",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Node is implemented by every AST node. Range() reports the node's
// position in its source file; Parent() and Children() let callers walk in
// either direction without the tree itself containing reference cycles
// beyond the single parent uplink.
type Node interface {
	Kind() Kind
	Range() source.Index
	Parent() Node
	Children() []Node
	// SetRange lets a parser backpatch a node's range once its full extent
	// is known. A line-oriented scanner discovers where a TypeDef or FuncDef
	// ends (its matching closing brace) only after it has already
	// constructed the node from its opening line.
	SetRange(source.Index)
	setParent(Node)
}

type base struct {
	kind   Kind
	rng    source.Index
	parent Node
}

func (b *base) Kind() Kind             { return b.kind }
func (b *base) Range() source.Index    { return b.rng }
func (b *base) Parent() Node           { return b.parent }
func (b *base) SetRange(r source.Index) { b.rng = r }
func (b *base) setParent(p Node)       { b.parent = p }

// TypeDefKind distinguishes the three flavors of type definition the
// language allows; go-to-definition and inheritance-collection treat all
// three uniformly except for this tag.
type TypeDefKind int

const (
	TypeDefContract TypeDefKind = iota
	TypeDefInterface
	TypeDefStruct
)

// File is the root of a single parsed source file.
type File struct {
	base
	URI     string
	Imports []*Import
	Types   []*TypeDef
}

func (f *File) Children() []Node {
	out := make([]Node, 0, len(f.Imports)+len(f.Types))
	for _, i := range f.Imports {
		out = append(out, i)
	}
	for _, t := range f.Types {
		out = append(out, t)
	}
	return out
}

// Import is a single `import "<folder>/<file>"` statement.
type Import struct {
	base
	Folder string
	File   string
}

func (i *Import) Children() []Node { return nil }

// Path returns folder/file, the form matched against dependency relative
// paths by the import resolver.
func (i *Import) Path() string {
	if i.Folder == "" {
		return i.File
	}
	return i.Folder + "/" + i.File
}

// TypeDef is a Contract, Interface, or Struct definition.
type TypeDef struct {
	base
	DefKind    TypeDefKind
	Name       string
	NameID     *TypeId
	Extends    []*TypeId
	Implements []*TypeId
	Fields     []*Param
	Funcs      []*FuncDef
}

func (t *TypeDef) Children() []Node {
	out := make([]Node, 0, len(t.Extends)+len(t.Implements)+len(t.Fields)+len(t.Funcs)+1)
	if t.NameID != nil {
		out = append(out, t.NameID)
	}
	for _, e := range t.Extends {
		out = append(out, e)
	}
	for _, i := range t.Implements {
		out = append(out, i)
	}
	for _, f := range t.Fields {
		out = append(out, f)
	}
	for _, fn := range t.Funcs {
		out = append(out, fn)
	}
	return out
}

// ParentNames returns the names of every type this definition extends or
// implements, in source order, deduplicated. Used by collectInheritanceInScope.
func (t *TypeDef) ParentNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, list := range [][]*TypeId{t.Extends, t.Implements} {
		for _, id := range list {
			if !seen[id.Name] {
				seen[id.Name] = true
				names = append(names, id.Name)
			}
		}
	}
	return names
}

// FuncDef is a function definition, either free-standing (unused by Ralph,
// kept general) or a contract/interface method.
type FuncDef struct {
	base
	Name       string
	ID         *FuncId
	Params     []*Param
	ReturnType *TypeId
	Body       *Block
	IsPublic   bool
	IsBuiltIn  bool
	// SigRange spans just the function header ("pub fn f(...) -> T"), not
	// the body, so go-to-definition can jump to a stable anchor (§4.J
	// "Result coalescing").
	SigRange source.Index
}

func (f *FuncDef) Children() []Node {
	out := make([]Node, 0, len(f.Params)+2)
	if f.ID != nil {
		out = append(out, f.ID)
	}
	for _, p := range f.Params {
		out = append(out, p)
	}
	if f.ReturnType != nil {
		out = append(out, f.ReturnType)
	}
	if f.Body != nil {
		out = append(out, f.Body)
	}
	return out
}

// Signature renders the function header the way it appears in a
// completion suggestion's detail text.
func (f *FuncDef) Signature() string {
	sig := "fn " + f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			sig += ", "
		}
		sig += p.Name
		if p.Type != nil {
			sig += ": " + p.Type.Name
		}
	}
	sig += ")"
	if f.ReturnType != nil {
		sig += " -> " + f.ReturnType.Name
	}
	return sig
}

// Param is a function parameter or a contract field.
type Param struct {
	base
	Name string
	Type *TypeId
}

func (p *Param) Children() []Node {
	if p.Type == nil {
		return nil
	}
	return []Node{p.Type}
}

// Block is a `{ ... }` statement sequence.
type Block struct {
	base
	Stmts []Node
}

func (b *Block) Children() []Node { return b.Stmts }

// VarDecl introduces a local variable, e.g. `let x = ...`.
type VarDecl struct {
	base
	Name  string
	Value Node
}

func (v *VarDecl) Children() []Node {
	if v.Value == nil {
		return nil
	}
	return []Node{v.Value}
}

// ReturnStmt is a `return <expr>` statement.
type ReturnStmt struct {
	base
	Value Node
}

func (r *ReturnStmt) Children() []Node {
	if r.Value == nil {
		return nil
	}
	return []Node{r.Value}
}

// Ident is a reference to a local variable or contract field.
type Ident struct {
	base
	Name string
	// InferredType is the name of the type the compiler inferred for this
	// expression, when known. Type inference itself lives inside the
	// black-box batch compiler; this field is just where it reports the
	// result, matching §4.J's "resolve via the receiver expression's
	// inferred type".
	InferredType string
}

func (i *Ident) Children() []Node { return nil }

// FuncId is the identifier naming a function, either at its FuncDef site or
// at a call site (CallExpr/ContractCallExpr).
type FuncId struct {
	base
	Name      string
	IsBuiltIn bool
}

func (f *FuncId) Children() []Node { return nil }

// TypeId is the identifier naming a type, at a definition, extends clause,
// parameter type, or return type.
type TypeId struct {
	base
	Name string
}

func (t *TypeId) Children() []Node { return nil }

// CallExpr is a same-contract or free function call, e.g. `f()`.
type CallExpr struct {
	base
	ID   *FuncId
	Args []Node
}

func (c *CallExpr) Children() []Node {
	out := make([]Node, 0, len(c.Args)+1)
	if c.ID != nil {
		out = append(out, c.ID)
	}
	return append(out, c.Args...)
}

// ContractCallExpr is a call through a receiver expression, e.g. `a.f()`.
type ContractCallExpr struct {
	base
	Receiver Node
	CallID   *FuncId
	Args     []Node
}

func (c *ContractCallExpr) Children() []Node {
	out := make([]Node, 0, len(c.Args)+2)
	if c.Receiver != nil {
		out = append(out, c.Receiver)
	}
	if c.CallID != nil {
		out = append(out, c.CallID)
	}
	return append(out, c.Args...)
}

// ReceiverInferredType returns the inferred type name of the call's
// receiver expression, if the compiler was able to determine one.
func (c *ContractCallExpr) ReceiverInferredType() (string, bool) {
	if ident, ok := c.Receiver.(*Ident); ok && ident.InferredType != "" {
		return ident.InferredType, true
	}
	return "", false
}

// New constructors set the node's own range and kind; Annotate must be
// called on the finished tree to wire up Parent().

func NewFile(uri string, rng source.Index) *File {
	return &File{base: base{kind: KindFile, rng: rng}, URI: uri}
}

func NewImport(folder, file string, rng source.Index) *Import {
	return &Import{base: base{kind: KindImport, rng: rng}, Folder: folder, File: file}
}

func NewTypeDef(kind TypeDefKind, name string, rng source.Index) *TypeDef {
	return &TypeDef{base: base{kind: KindTypeDef, rng: rng}, DefKind: kind, Name: name}
}

func NewFuncDef(name string, rng source.Index) *FuncDef {
	return &FuncDef{base: base{kind: KindFuncDef, rng: rng}, Name: name}
}

func NewParam(name string, rng source.Index) *Param {
	return &Param{base: base{kind: KindParam, rng: rng}, Name: name}
}

func NewBlock(rng source.Index) *Block {
	return &Block{base: base{kind: KindBlock, rng: rng}}
}

func NewVarDecl(name string, rng source.Index) *VarDecl {
	return &VarDecl{base: base{kind: KindVarDecl, rng: rng}, Name: name}
}

func NewReturnStmt(rng source.Index) *ReturnStmt {
	return &ReturnStmt{base: base{kind: KindReturnStmt, rng: rng}}
}

func NewIdent(name string, rng source.Index) *Ident {
	return &Ident{base: base{kind: KindIdent, rng: rng}, Name: name}
}

func NewFuncId(name string, rng source.Index) *FuncId {
	return &FuncId{base: base{kind: KindFuncId, rng: rng}, Name: name}
}

func NewTypeId(name string, rng source.Index) *TypeId {
	return &TypeId{base: base{kind: KindTypeId, rng: rng}, Name: name}
}

func NewCallExpr(rng source.Index) *CallExpr {
	return &CallExpr{base: base{kind: KindCallExpr, rng: rng}}
}

func NewContractCallExpr(rng source.Index) *ContractCallExpr {
	return &ContractCallExpr{base: base{kind: KindContractCallExpr, rng: rng}}
}

// Annotate walks the tree rooted at n, wiring each child's Parent() to its
// immediate parent. It must be called once after a tree is fully built.
func Annotate(n Node) {
	for _, c := range n.Children() {
		c.setParent(n)
		Annotate(c)
	}
}
