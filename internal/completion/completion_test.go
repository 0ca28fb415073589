package completion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/completion"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

func labels(sugs []completion.Suggestion) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Label
	}
	return out
}

func TestCompleteInsideFunctionBodyUnionsLocalsAndInherited(t *testing.T) {
	baseCode := `Contract Base(owner: Address) {
    pub fn hook() -> U256 {
        return 0
    }
}
`
	childCode := `Contract Child extends Base {
    pub fn call() -> U256 {
        let total = 0
        return total
    }
}
`
	baseURI := uri.FromPath("/w/contracts/Base.ral")
	childURI := uri.FromPath("/w/contracts/Child.ral")
	facade := compiler.NewFake()

	baseRes, errs := facade.Parse(baseURI, baseCode)
	require.Empty(t, errs)
	childRes, errs := facade.Parse(childURI, childCode)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{baseURI: baseRes.AST, childURI: childRes.AST}

	cursor := indexOf(childCode, "return total") + len("return ")
	sugs := completion.Complete(childURI, childCode, cursor, files, nil)

	got := labels(sugs)
	assert.Contains(t, got, "total")
	assert.Contains(t, got, "hook")
}

func TestCompleteAfterDotOnParamResolvesContractMembers(t *testing.T) {
	tokenCode := `Contract Token() {
    pub fn balanceOf() -> U256 {
        return 0
    }
}
`
	holderCode := `Contract Holder(token: Token) {
    pub fn check() -> U256 {
        return token.balanceOf()
    }
}
`
	tokenURI := uri.FromPath("/w/contracts/Token.ral")
	holderURI := uri.FromPath("/w/contracts/Holder.ral")
	facade := compiler.NewFake()

	tokenRes, errs := facade.Parse(tokenURI, tokenCode)
	require.Empty(t, errs)
	holderRes, errs := facade.Parse(holderURI, holderCode)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{tokenURI: tokenRes.AST, holderURI: holderRes.AST}

	cursor := indexOf(holderCode, "token.balanceOf") + len("token.")
	sugs := completion.Complete(holderURI, holderCode, cursor, files, nil)

	require.Len(t, sugs, 1)
	assert.Equal(t, "balanceOf", sugs[0].Label)
}

func TestCompleteAfterDotOnSiblingTypeNameResolvesContractMembers(t *testing.T) {
	aCode := `Contract A(id: U256) {
    pub fn f() -> U256 {
        return id
    }
}
`
	bCode := `Contract B() {
    pub fn g() -> U256 {
        return A.f()
    }
}
`
	aURI := uri.FromPath("/w/contracts/A.ral")
	bURI := uri.FromPath("/w/contracts/B.ral")
	facade := compiler.NewFake()

	aRes, errs := facade.Parse(aURI, aCode)
	require.Empty(t, errs)
	bRes, errs := facade.Parse(bURI, bCode)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{aURI: aRes.AST, bURI: bRes.AST}

	cursor := indexOf(bCode, "A.f") + len("A.")
	sugs := completion.Complete(bURI, bCode, cursor, files, nil)

	require.Len(t, sugs, 1)
	assert.Equal(t, "f", sugs[0].Label)
}

func TestCompleteIncludesBuiltInsFromDependencySources(t *testing.T) {
	code := `Contract A() {
    pub fn f() -> U256 {
        return 0
    }
}
`
	builtInCode := `Interface Intrinsics() {
    pub fn blockTimestamp() -> U256 {
        return 0
    }
}
`
	aURI := uri.FromPath("/w/contracts/A.ral")
	builtInURI := uri.FromPath("/deps/built-in/intrinsics.ral")
	facade := compiler.NewFake()

	aRes, errs := facade.Parse(aURI, code)
	require.Empty(t, errs)
	builtInRes, errs := facade.Parse(builtInURI, builtInCode)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{aURI: aRes.AST}
	deps := map[uri.URI]*ast.File{builtInURI: builtInRes.AST}

	cursor := indexOf(code, "return 0") + len("return ")
	sugs := completion.Complete(aURI, code, cursor, files, deps)

	assert.Contains(t, labels(sugs), "blockTimestamp")
}

func TestCompleteOutsideFunctionBodyIsEmpty(t *testing.T) {
	code := `Contract A(id: U256) {
    pub fn f() -> U256 {
        return id
    }
}
`
	aURI := uri.FromPath("/w/contracts/A.ral")
	facade := compiler.NewFake()
	res, errs := facade.Parse(aURI, code)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{aURI: res.AST}
	cursor := indexOf(code, "Contract A")
	sugs := completion.Complete(aURI, code, cursor, files, nil)
	assert.Empty(t, sugs)
}

// TestCompleteExcludesVariablesDeclaredAfterCursor exercises §4.K's "local
// variables visible at offset": a let-binding on a later line must not
// leak into a suggestion list computed for an earlier cursor position.
func TestCompleteExcludesVariablesDeclaredAfterCursor(t *testing.T) {
	code := `Contract A() {
    pub fn f() -> U256 {
        let early = 1
        let late = 2
        return early
    }
}
`
	aURI := uri.FromPath("/w/contracts/A.ral")
	facade := compiler.NewFake()
	res, errs := facade.Parse(aURI, code)
	require.Empty(t, errs)

	files := map[uri.URI]*ast.File{aURI: res.AST}
	cursor := indexOf(code, "let late")
	sugs := completion.Complete(aURI, code, cursor, files, nil)

	got := labels(sugs)
	assert.Contains(t, got, "early")
	assert.NotContains(t, got, "late")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
