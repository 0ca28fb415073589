package workspace

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/importresolve"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/sourcefile"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Engine bundles the collaborators the workspace state machine needs but
// never owns itself: file access, the compiler facade, and the server's
// dependency root. It is stateless; State is threaded through explicitly on
// every call, per design note "single mutable cell" (the cell lives above
// this type, in Cell).
type Engine struct {
	FS             fsaccess.FS
	Facade         compiler.Facade
	DependencyRoot uri.URI
}

// Create implements `create(workspaceURI) -> Created`.
func (e *Engine) Create(workspaceURI uri.URI) State {
	return Created{common{URI: workspaceURI, Gen: 1}}
}

// GetOrBuild lazily advances a freshly Created workspace into its first
// build attempt; any other state is returned unchanged.
func (e *Engine) GetOrBuild(state State) State {
	if _, ok := state.(Created); !ok {
		return state
	}
	next, _ := e.Build(state.WorkspaceURI().Join(buildfile.FileName), nil, state)
	return next
}

// Build implements `build(buildURI, code?, state)`. The returned bool
// reports "unchanged": the caller should clear stale build-file diagnostics
// without touching the existing source state, per §4.H.
func (e *Engine) Build(buildURI uri.URI, code *string, state State) (State, bool) {
	workspaceURI := state.WorkspaceURI()

	if code == nil {
		read, err := e.FS.Read(buildURI)
		if err != nil {
			return e.buildFailed(state, buildURI, "", []source.Message{
				source.Errorf(source.ZeroIndex(buildURI), "%s", err.Error()),
			}), false
		}
		code = &read
	}

	if prevBuild, ok := build(state); ok {
		if compiled, ok := prevBuild.(buildfile.Compiled); ok && compiled.Code == *code {
			return state, true
		}
		if errored, ok := prevBuild.(buildfile.Errored); ok && errored.Code == *code {
			return state, true
		}
	}

	parsed := buildfile.Parse(buildURI, *code)
	parsedOK, ok := parsed.(buildfile.Parsed)
	if !ok {
		return e.buildFailed(state, buildURI, *code, parsed.(buildfile.Errored).Errors), false
	}

	validated := buildfile.Validate(parsedOK, workspaceURI, e.FS)
	compiled, ok := validated.(buildfile.Compiled)
	if !ok {
		return e.buildFailed(state, buildURI, *code, validated.(buildfile.Errored).Errors), false
	}

	depSet, depErrs := dependency.Load(e.FS, e.Facade, e.DependencyRoot, buildURI)
	if len(depErrs) > 0 {
		return e.buildFailed(state, buildURI, *code, depErrs), false
	}
	compiled = compiled.WithDependency(depSet, e.DependencyRoot)

	contractDir := uri.FromPath(compiled.Config.ContractPath)
	newSources, err := sourcefile.Synchronise(e.FS, contractDir, sources(state))
	if err != nil {
		return e.buildFailed(state, buildURI, *code, []source.Message{
			source.Errorf(source.ZeroIndex(buildURI), "%s", err.Error()),
		}), false
	}

	return UnCompiled{buildAware{
		common:  common{URI: workspaceURI, Gen: newGen(state)},
		Build:   compiled,
		Sources: newSources,
	}}, false
}

// buildFailed carries code forward onto the resulting buildfile.Errored so
// the adapter can still turn its messages' offsets into LSP ranges; code is
// "" only when the file itself could not be read. The previous Sources are
// retained unchanged, which is what lets a later successful build recover
// them without a fresh Synchronise.
func (e *Engine) buildFailed(prev State, buildURI uri.URI, code string, errs []source.Message) State {
	return Errored{
		buildAware: buildAware{
			common:  common{URI: prev.WorkspaceURI(), Gen: newGen(prev)},
			Build:   buildfile.Errored{URI: buildURI, Code: code, Errors: errs},
			Sources: sources(prev),
		},
		Errors: errs,
	}
}

// CodeChanged implements `codeChanged(fileURI, updatedCode?, state)`.
func (e *Engine) CodeChanged(fileURI uri.URI, updatedCode *string, state State) State {
	b, ok := build(state)
	if !ok {
		return state
	}
	current := sources(state)
	next := make(map[uri.URI]sourcefile.State, len(current))
	for u, s := range current {
		next[u] = s
	}

	var prevGen uint64
	if prev, ok := current[fileURI]; ok {
		prevGen = prev.Generation()
	}

	if updatedCode != nil {
		next[fileURI] = sourcefile.NewUnCompiled(fileURI, prevGen+1, *updatedCode)
	} else {
		next[fileURI] = sourcefile.NewOnDisk(fileURI, prevGen+1)
	}

	return UnCompiled{buildAware{
		common:  common{URI: state.WorkspaceURI(), Gen: newGen(state)},
		Build:   b,
		Sources: next,
	}}
}

// ParseAndCompile implements `parseAndCompile(state)`: drives every source
// through parse, then compiles the resulting Parsed set as one batch.
func (e *Engine) ParseAndCompile(state State) State {
	b, ok := build(state)
	if !ok {
		return state
	}
	compiledBuild, ok := b.(buildfile.Compiled)
	if !ok {
		return state
	}

	current := sources(state)
	parsedStates := make(map[uri.URI]sourcefile.State, len(current))
	for u, s := range current {
		parsedStates[u] = sourcefile.Parse(e.FS, e.Facade, s)
	}

	parsed := map[uri.URI]sourcefile.Parsed{}
	files := map[uri.URI]*ast.File{}
	for u, s := range parsedStates {
		if p, ok := s.(sourcefile.Parsed); ok {
			parsed[u] = p
			files[u] = p.AST
		}
	}

	contractDir := uri.FromPath(compiledBuild.Config.ContractPath)
	siblings := map[string]uri.URI{}
	for u := range current {
		if rel, ok := u.TrimExt().RelativeTo(contractDir); ok {
			siblings[rel] = u
		}
	}

	deps := map[uri.URI]*ast.File{}
	unresolved := map[uri.URI][]importresolve.Unknown{}
	for u, p := range parsed {
		result := importresolve.Resolve(importresolve.Extract(p.AST), compiledBuild.Dependency, compiledBuild.DependencyPath, siblings)
		for du, df := range result.Referenced {
			deps[du] = df
		}
		if len(result.Unresolved) > 0 {
			unresolved[u] = result.Unresolved
		}
	}

	result := e.Facade.Compile(files, deps, compiledBuild.Config.CompilerOptions)
	next := sourcefile.Compile(parsed, result)

	for u, s := range parsedStates {
		if _, wasParsed := parsed[u]; !wasParsed {
			next[u] = s // ErrorAccess or an already-fixed-point state.
		}
	}
	// An import error takes precedence over whatever the batch compiler
	// itself decided about a file, since the compiler was never given the
	// unresolved import as a dependency in the first place.
	for u, unk := range unresolved {
		p := parsed[u]
		var msgs []source.Message
		for _, uk := range unk {
			msgs = append(msgs, importresolve.ToMessage(uk))
		}
		next[u] = sourcefile.NewErrorSource(u, p.Generation()+1, p.Code, msgs, &p)
	}

	prevParsed := Parsed{buildAware{
		common:  common{URI: state.WorkspaceURI(), Gen: state.Generation()},
		Build:   compiledBuild,
		Sources: current,
	}}

	compiledState := Compiled{
		buildAware: buildAware{
			common:  common{URI: state.WorkspaceURI(), Gen: newGen(state)},
			Build:   compiledBuild,
			Sources: next,
		},
		Previous: &prevParsed,
	}
	if len(result.WorkspaceErrors) > 0 {
		return Errored{
			buildAware: compiledState.buildAware,
			Errors:     result.WorkspaceErrors,
		}
	}
	return compiledState
}
