package compiler

import (
	"regexp"
	"strings"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Fake is a line-based, regex-driven stand-in for the target language's
// batch compiler. It is deliberately simple: the real compiler is a
// black-box dependency (§1), so this exists only to make the rest of the
// core testable end to end, the same way ruby-lsp-go's own
// documents.RubyDocument.tokenize is a "simplified parser for demonstration
// purposes... in a real implementation we would use a real parser".
//
// It understands a small, line-oriented subset of the target language:
//
//	import "<folder>/<file>"
//
//	Contract Name(field: Type, ...) extends P1, P2 implements I1 {
//	    pub fn name(param: Type, ...) -> RetType {
//	        let x = <expr>
//	        return <expr>
//	    }
//	}
//
// where <expr> is one of: a bare identifier, `name(args)`, or
// `recv.name(args)`.
type Fake struct{}

func NewFake() *Fake { return &Fake{} }

var (
	reImport    = regexp.MustCompile(`^import\s+"([^"]+)"`)
	reTypeDef   = regexp.MustCompile(`^(Contract|Interface|Struct)\s+(\w+)\s*(?:\(([^)]*)\))?`)
	reExtends   = regexp.MustCompile(`extends\s+([\w,\s]+?)(?:\s+implements|\s*\{|$)`)
	reImplement = regexp.MustCompile(`implements\s+([\w,\s]+?)(?:\s*\{|$)`)
	reFuncDef   = regexp.MustCompile(`^(pub\s+)?fn\s+(\w+)\s*\(([^)]*)\)\s*(?:->\s*(\w+))?`)
	reReturn    = regexp.MustCompile(`^return\s+(.+)$`)
	reLet       = regexp.MustCompile(`^let\s+(\w+)\s*=\s*(.+)$`)
	reCallChain = regexp.MustCompile(`^(\w+)\.(\w+)\(([^)]*)\)$`)
	reCall      = regexp.MustCompile(`^(\w+)\(([^)]*)\)$`)
	reIdent     = regexp.MustCompile(`^\w+$`)
)

// Parse implements Facade.
func (Fake) Parse(file uri.URI, code string) (ParseResult, []source.Message) {
	// The File node's own range spans the whole text, not just line one, so
	// search.FindLast (which starts its recursion at the File) can descend
	// into any child regardless of which line the cursor lands on.
	f := ast.NewFile(file.String(), source.Index{Offset: 0, Width: len(code), File: file})

	var (
		cur       *ast.TypeDef
		curFn     *ast.FuncDef
		curBlock  *ast.Block
		typeStart int
		funcStart int
		offset    int
		errs      []source.Message
	)

	lines := strings.Split(code, "\n")
	for _, line := range lines {
		lineLen := len(line) + 1 // account for the '\n' stripped by Split
		trimmed := strings.TrimSpace(stripLineComment(line))
		lineOffset := offset
		offset += lineLen

		if trimmed == "" {
			continue
		}

		switch {
		case trimmed == "}":
			// A node's own range, per its opening line, is too narrow for
			// FindLast to descend into its body; backpatch it to run through
			// this closing brace now that the extent is known. SigRange was
			// already captured (header line only) at construction time, so
			// widening FuncDef.Range() here doesn't disturb it.
			end := lineOffset + len(line)
			if curFn != nil {
				curFn.SetRange(source.Index{Offset: funcStart, Width: end - funcStart, File: file})
				curBlock.SetRange(source.Index{Offset: funcStart, Width: end - funcStart, File: file})
				curFn = nil
				curBlock = nil
			} else if cur != nil {
				cur.SetRange(source.Index{Offset: typeStart, Width: end - typeStart, File: file})
				cur = nil
			}
			continue

		case reImport.MatchString(trimmed):
			m := reImport.FindStringSubmatch(trimmed)
			folder, file := splitImportPath(m[1])
			idx := indexOf(line, lineOffset, m[1])
			f.Imports = append(f.Imports, ast.NewImport(folder, file, idx))
			continue

		case reTypeDef.MatchString(trimmed):
			m := reTypeDef.FindStringSubmatch(trimmed)
			kind := typeDefKind(m[1])
			nameIdx := indexOf(line, lineOffset, m[2])
			typeStart = lineOffset
			td := ast.NewTypeDef(kind, m[2], source.Index{Offset: lineOffset, Width: len(line), File: file})
			td.NameID = ast.NewTypeId(m[2], nameIdx)
			for _, field := range splitParams(m[3]) {
				td.Fields = append(td.Fields, paramFromSpec(field, line, lineOffset))
			}
			if em := reExtends.FindStringSubmatch(trimmed); em != nil {
				for _, name := range splitNames(em[1]) {
					td.Extends = append(td.Extends, ast.NewTypeId(name, indexOf(line, lineOffset, name)))
				}
			}
			if im := reImplement.FindStringSubmatch(trimmed); im != nil {
				for _, name := range splitNames(im[1]) {
					td.Implements = append(td.Implements, ast.NewTypeId(name, indexOf(line, lineOffset, name)))
				}
			}
			f.Types = append(f.Types, td)
			cur = td
			continue

		case reFuncDef.MatchString(trimmed):
			m := reFuncDef.FindStringSubmatch(trimmed)
			funcStart = lineOffset
			fn := ast.NewFuncDef(m[2], source.Index{Offset: lineOffset, Width: len(line), File: file})
			fn.SigRange = fn.Range()
			fn.IsPublic = strings.TrimSpace(m[1]) == "pub"
			fn.ID = ast.NewFuncId(m[2], indexOf(line, lineOffset, m[2]))
			for _, field := range splitParams(m[3]) {
				fn.Params = append(fn.Params, paramFromSpec(field, line, lineOffset))
			}
			if m[4] != "" {
				fn.ReturnType = ast.NewTypeId(m[4], indexOf(line, lineOffset, m[4]))
			}
			fn.Body = ast.NewBlock(source.Index{Offset: lineOffset, File: file})
			if cur != nil {
				cur.Funcs = append(cur.Funcs, fn)
			}
			curFn = fn
			curBlock = fn.Body
			continue

		case curFn != nil && reReturn.MatchString(trimmed):
			m := reReturn.FindStringSubmatch(trimmed)
			expr := parseExpr(strings.TrimSpace(m[1]), line, lineOffset, file)
			stmt := ast.NewReturnStmt(source.Index{Offset: lineOffset, Width: len(line), File: file})
			stmt.Value = expr
			curBlock.Stmts = append(curBlock.Stmts, stmt)
			continue

		case curFn != nil && reLet.MatchString(trimmed):
			m := reLet.FindStringSubmatch(trimmed)
			expr := parseExpr(strings.TrimSpace(m[2]), line, lineOffset, file)
			decl := ast.NewVarDecl(m[1], indexOf(line, lineOffset, m[1]))
			decl.Value = expr
			curBlock.Stmts = append(curBlock.Stmts, decl)
			continue

		case curFn != nil:
			// Any other statement is passed through uninterpreted, per §6:
			// "other statements are ignored by the import extractor but
			// passed to the compiler". The fake compiler has nothing
			// further to do with them.
			if expr := parseExpr(trimmed, line, lineOffset, file); expr != nil {
				curBlock.Stmts = append(curBlock.Stmts, expr)
			}
		}
	}

	ast.Annotate(f)
	return ParseResult{AST: f}, errs
}

func typeDefKind(s string) ast.TypeDefKind {
	switch s {
	case "Interface":
		return ast.TypeDefInterface
	case "Struct":
		return ast.TypeDefStruct
	default:
		return ast.TypeDefContract
	}
}

func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func splitImportPath(p string) (folder, file string) {
	p = strings.TrimSuffix(p, ".ral")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return splitNames(s)
}

func paramFromSpec(spec, line string, lineOffset int) *ast.Param {
	name, typeName, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	typeName = strings.TrimSpace(typeName)
	p := ast.NewParam(name, indexOf(line, lineOffset, name))
	if typeName != "" {
		p.Type = ast.NewTypeId(typeName, indexOf(line, lineOffset, typeName))
	}
	return p
}

func parseExpr(expr, line string, lineOffset int, file uri.URI) ast.Node {
	idx := indexOf(line, lineOffset, expr)
	switch {
	case reCallChain.MatchString(expr):
		m := reCallChain.FindStringSubmatch(expr)
		call := ast.NewContractCallExpr(idx)
		call.Receiver = ast.NewIdent(m[1], indexOf(line, lineOffset, m[1]))
		call.CallID = ast.NewFuncId(m[2], indexOf(line, lineOffset, m[2]))
		return call
	case reCall.MatchString(expr):
		m := reCall.FindStringSubmatch(expr)
		call := ast.NewCallExpr(idx)
		call.ID = ast.NewFuncId(m[1], indexOf(line, lineOffset, m[1]))
		return call
	case reIdent.MatchString(expr):
		return ast.NewIdent(expr, idx)
	default:
		return nil
	}
}

func indexOf(line string, lineOffset int, needle string) source.Index {
	i := strings.Index(line, needle)
	if i < 0 {
		return source.Index{Offset: lineOffset, Width: len(line)}
	}
	return source.Index{Offset: lineOffset + i, Width: len(needle)}
}
