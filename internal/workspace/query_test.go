package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

// TestAnySourceTextCoversBothWorkspaceAndDependencyFiles exercises the fix
// for go-to-definition targets landing in a std/built-in dependency file: a
// caller that only knew about workspace.SourceText would get "" for those
// URIs and collapse the resulting range to line 0.
func TestAnySourceTextCoversBothWorkspaceAndDependencyFiles(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)
	fileURI := workspaceURI.Join("contracts").Join("A.ral")

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON
	fs.files[fileURI] = contractA

	e := newEngine(fs)
	state := e.GetOrBuild(e.Create(workspaceURI))
	final := e.ParseAndCompile(state)

	text, ok := workspace.AnySourceText(final, fileURI)
	require.True(t, ok)
	assert.Equal(t, contractA, text)

	compiled, ok := final.(workspace.Compiled)
	require.True(t, ok, "expected Compiled, got %T", final)
	compiledBuild := compiled.Build.(buildfile.Compiled)
	require.NotNil(t, compiledBuild.Dependency)

	stdPaths := compiledBuild.Dependency.RelativePaths(dependency.Std, e.DependencyRoot)
	require.NotEmpty(t, stdPaths)
	stdURI, ok := compiledBuild.Dependency.URIsByRelativePath(dependency.Std, e.DependencyRoot)["std/"+stdPaths[0]]
	require.True(t, ok)

	depText, ok := workspace.AnySourceText(final, stdURI)
	require.True(t, ok)
	assert.NotEmpty(t, depText)

	_, ok = workspace.AnySourceText(final, uri.FromPath("/w/contracts/Missing.ral"))
	assert.False(t, ok)
}
