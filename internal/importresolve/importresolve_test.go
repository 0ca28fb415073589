package importresolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/importresolve"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

type memFS struct{ files map[uri.URI]string }

func (m *memFS) Read(u uri.URI) (string, error) { return m.files[u], nil }
func (m *memFS) Write(u uri.URI, code string) (uri.URI, error) {
	if m.files == nil {
		m.files = map[uri.URI]string{}
	}
	m.files[u] = code
	return u, nil
}
func (m *memFS) Exists(u uri.URI) (bool, error) { _, ok := m.files[u]; return ok, nil }
func (m *memFS) List(dir uri.URI) ([]uri.URI, error) {
	var out []uri.URI
	for u := range m.files {
		if rel, ok := u.RelativeTo(dir); ok && rel != "" {
			hasSlash := false
			for _, r := range rel {
				if r == '/' {
					hasSlash = true
				}
			}
			if !hasSlash {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func loadDeps(t *testing.T) (*dependency.Set, uri.URI) {
	t.Helper()
	root := uri.FromPath("/deps")
	set, errs := dependency.Load(&memFS{files: map[uri.URI]string{}}, compiler.NewFake(), root, uri.FromPath("/w/ralph.json"))
	require.Empty(t, errs)
	return set, root
}

func TestResolveMatchesStdImport(t *testing.T) {
	deps, root := loadDeps(t)
	imp := ast.NewImport("std", "nft_interface", source.Index{})

	result := importresolve.Resolve([]*ast.Import{imp}, deps, root, nil)
	assert.Empty(t, result.Unresolved)
	assert.Len(t, result.Referenced, 1)
}

func TestResolveReportsUnknownImport(t *testing.T) {
	deps, root := loadDeps(t)
	imp := ast.NewImport("std", "does_not_exist", source.Index{})

	result := importresolve.Resolve([]*ast.Import{imp}, deps, root, nil)
	require.Len(t, result.Unresolved, 1)
	assert.Empty(t, result.Referenced)

	msg := importresolve.ToMessage(result.Unresolved[0])
	assert.True(t, msg.IsError())
}

func TestResolveWithNilDependencySetTreatsAllAsUnknown(t *testing.T) {
	imp := ast.NewImport("std", "nft_interface", source.Index{})
	result := importresolve.Resolve([]*ast.Import{imp}, nil, uri.FromPath("/deps"), nil)
	assert.Len(t, result.Unresolved, 1)
}

func TestResolveMatchesSiblingWorkspaceImportWithoutReferencingIt(t *testing.T) {
	deps, root := loadDeps(t)
	imp := ast.NewImport("", "A", source.Index{})
	siblings := map[string]uri.URI{"A": uri.FromPath("/w/contracts/A.ral")}

	result := importresolve.Resolve([]*ast.Import{imp}, deps, root, siblings)
	assert.Empty(t, result.Unresolved)
	assert.Empty(t, result.Referenced)
}
