package workspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/sourcefile"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

type fakeFS struct {
	files map[uri.URI]string
	dirs  map[uri.URI]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[uri.URI]string{}, dirs: map[uri.URI]bool{}}
}

func (f *fakeFS) Read(u uri.URI) (string, error) {
	if code, ok := f.files[u]; ok {
		return code, nil
	}
	return "", &fsNotFound{u}
}

func (f *fakeFS) Write(u uri.URI, code string) (uri.URI, error) {
	f.files[u] = code
	return u, nil
}

func (f *fakeFS) Exists(u uri.URI) (bool, error) {
	if f.dirs[u] {
		return true, nil
	}
	_, ok := f.files[u]
	return ok, nil
}

func (f *fakeFS) List(dir uri.URI) ([]uri.URI, error) {
	var out []uri.URI
	for u := range f.files {
		if u.Parent() == dir {
			out = append(out, u)
		}
	}
	return out, nil
}

type fsNotFound struct{ u uri.URI }

func (e *fsNotFound) Error() string { return e.u.String() + ": not found" }

const contractA = `Contract A(id: U256) {
    pub fn f() -> U256 {
        return id
    }
}
`

// contractB imports its sibling A by name. Sibling contracts already share
// one compilation unit (the fake compiler's registry-based name resolution
// would find A even without this), but the import resolver still has to
// resolve "A" against the workspace's own sources rather than flagging it
// as an unknown import, since it isn't a dependency source.
const contractB = `import "A"

Contract B() {
    pub fn g() -> U256 {
        return A.f()
    }
}
`

const validRalphJSON = `{
  "compilerOptions": {},
  "contractPath": "contracts",
  "artifactPath": "artifacts"
}`

func newEngine(fs *fakeFS) *workspace.Engine {
	return &workspace.Engine{
		FS:             fs,
		Facade:         compiler.NewFake(),
		DependencyRoot: uri.FromPath("/deps"),
	}
}

func TestE1_EmptyWorkspaceBuildsAndCompiles(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON

	e := newEngine(fs)
	state := e.Create(workspaceURI)
	require.IsType(t, workspace.Created{}, state)

	state = e.GetOrBuild(state)
	uncompiled, ok := state.(workspace.UnCompiled)
	require.True(t, ok, "expected UnCompiled after a successful build, got %T", state)

	compiledBuild, ok := uncompiled.Build.(buildfile.Compiled)
	require.True(t, ok)
	require.NotNil(t, compiledBuild.Dependency)

	final := e.ParseAndCompile(state)
	compiled, ok := final.(workspace.Compiled)
	require.True(t, ok, "expected Compiled, got %T", final)
	assert.Empty(t, compiled.Sources)
}

func TestE1_TwoContractsCompileAndCrossReference(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON
	fs.files[workspaceURI.Join("contracts").Join("A.ral")] = contractA
	fs.files[workspaceURI.Join("contracts").Join("B.ral")] = contractB

	e := newEngine(fs)
	state := e.GetOrBuild(e.Create(workspaceURI))
	final := e.ParseAndCompile(state)

	compiled, ok := final.(workspace.Compiled)
	require.True(t, ok, "expected Compiled, got %T", final)
	require.Len(t, compiled.Sources, 2)

	for u, s := range compiled.Sources {
		_, ok := s.(sourcefile.Compiled)
		assert.True(t, ok, "expected %s to compile cleanly, got %T", u, s)
	}
	_ = buildURI
}

func TestE2_ArtifactPathOutsideWorkspaceProducesErroredWorkspace(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)
	code := `{
  "compilerOptions": {},
  "contractPath": "contracts",
  "artifactPath": "../outside"
}`

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.files[buildURI] = code

	e := newEngine(fs)
	state, unchanged := e.Build(buildURI, &code, e.Create(workspaceURI))
	assert.False(t, unchanged)

	errored, ok := state.(workspace.Errored)
	require.True(t, ok, "expected Errored, got %T", state)
	require.Len(t, errored.Errors, 1)
}

func TestBuildUnchangedSkipsReparse(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)
	code := `{
  "compilerOptions": {},
  "contractPath": "contracts",
  "artifactPath": "artifacts"
}`

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = code

	e := newEngine(fs)
	first, unchanged := e.Build(buildURI, &code, e.Create(workspaceURI))
	require.False(t, unchanged)

	second, unchanged := e.Build(buildURI, &code, first)
	assert.True(t, unchanged)
	assert.Equal(t, first, second)
}

func TestE5_CodeChangeIntroducingUndefinedIdentifierEntersErrorSource(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)

	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON
	fs.files[workspaceURI.Join("contracts").Join("A.ral")] = contractA

	e := newEngine(fs)
	state := e.GetOrBuild(e.Create(workspaceURI))
	state = e.ParseAndCompile(state)
	compiled, ok := state.(workspace.Compiled)
	require.True(t, ok)
	fileURI := workspaceURI.Join("contracts").Join("A.ral")
	_, ok = compiled.Sources[fileURI].(sourcefile.Compiled)
	require.True(t, ok)

	broken := `Contract A(id: U256) {
    pub fn f() -> U256 {
        return notDefined
    }
}
`
	state = e.CodeChanged(fileURI, &broken, state)
	state = e.ParseAndCompile(state)

	after, ok := state.(workspace.Compiled)
	require.True(t, ok, "per-file errors stay attached to the file, the workspace itself still Compiled, got %T", state)

	errSrc, ok := after.Sources[fileURI].(sourcefile.ErrorSource)
	require.True(t, ok, "expected the edited file to be ErrorSource, got %T", after.Sources[fileURI])
	assert.NotEmpty(t, errSrc.Errors)
	require.NotNil(t, errSrc.Previous)
	assert.Equal(t, contractA, errSrc.Previous.Code)
}

func TestInvariant_SourceURIsUniquePerWorkspace(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)
	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON
	fs.files[workspaceURI.Join("contracts").Join("A.ral")] = contractA

	e := newEngine(fs)
	state := e.GetOrBuild(e.Create(workspaceURI))
	compiledState := e.ParseAndCompile(state)
	compiled := compiledState.(workspace.Compiled)

	seen := map[uri.URI]bool{}
	for u := range compiled.Sources {
		require.False(t, seen[u])
		seen[u] = true
	}
}

func TestInvariant_DependencySetIsBuiltInAndStdSeparated(t *testing.T) {
	workspaceURI := uri.FromPath("/w")
	buildURI := workspaceURI.Join(buildfile.FileName)
	fs := newFakeFS()
	fs.dirs[workspaceURI.Join("contracts")] = true
	fs.dirs[workspaceURI.Join("artifacts")] = true
	fs.files[buildURI] = validRalphJSON

	e := newEngine(fs)
	state := e.GetOrBuild(e.Create(workspaceURI))
	uncompiled := state.(workspace.UnCompiled)
	compiledBuild := uncompiled.Build.(buildfile.Compiled)

	stdPaths := compiledBuild.Dependency.RelativePaths(dependency.Std, e.DependencyRoot)
	builtInPaths := compiledBuild.Dependency.RelativePaths(dependency.BuiltIn, e.DependencyRoot)
	assert.NotEmpty(t, stdPaths)
	assert.NotEmpty(t, builtInPaths)
	for _, p := range stdPaths {
		assert.NotContains(t, builtInPaths, p)
	}
}
