package workspace

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/sourcefile"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Files returns every workspace source's parsed AST, keyed by URI. A
// source that hasn't reached Parsed/Compiled/ErrorSource-with-a-Previous
// yet contributes nothing, the same "answer with what's available" rule
// invariant #4.F leaves per-file.
func Files(s State) map[uri.URI]*ast.File {
	out := map[uri.URI]*ast.File{}
	for u, fs := range sources(s) {
		if f, ok := astOf(fs); ok {
			out[u] = f
		}
	}
	return out
}

func astOf(s sourcefile.State) (*ast.File, bool) {
	switch v := s.(type) {
	case sourcefile.Parsed:
		return v.AST, true
	case sourcefile.Compiled:
		return v.Parsed.AST, true
	case sourcefile.ErrorSource:
		if v.Previous != nil {
			return v.Previous.AST, true
		}
	}
	return nil, false
}

// SourceText returns the last known text of fileURI, used by completion's
// "receiver expression followed by a dot" detection, which needs raw
// source rather than the AST.
func SourceText(s State, fileURI uri.URI) (string, bool) {
	fs, ok := sources(s)[fileURI]
	if !ok {
		return "", false
	}
	return textOf(fs)
}

func textOf(fs sourcefile.State) (string, bool) {
	switch v := fs.(type) {
	case sourcefile.UnCompiled:
		return v.Code, true
	case sourcefile.Parsed:
		return v.Code, true
	case sourcefile.Compiled:
		return v.Code, true
	case sourcefile.ErrorSource:
		return v.Code, true
	default:
		return "", false
	}
}

// DependencyFiles returns the parsed ASTs of the workspace's std/built-in
// bundle, or nil if no build has loaded one yet.
func DependencyFiles(s State) map[uri.URI]*ast.File {
	b, ok := build(s)
	if !ok {
		return nil
	}
	compiled, ok := b.(buildfile.Compiled)
	if !ok || compiled.Dependency == nil {
		return nil
	}
	return compiled.Dependency.Files()
}

// AnySourceText returns fileURI's text whether it belongs to the workspace
// or to the std/built-in dependency bundle, so a go-to-definition target
// landing in a dependency file still gets a real Range rather than
// collapsing to line 0 for want of source text to measure offsets against.
func AnySourceText(s State, fileURI uri.URI) (string, bool) {
	if text, ok := SourceText(s, fileURI); ok {
		return text, true
	}

	b, ok := build(s)
	if !ok {
		return "", false
	}
	compiled, ok := b.(buildfile.Compiled)
	if !ok || compiled.Dependency == nil {
		return "", false
	}
	fs, ok := compiled.Dependency.Sources[fileURI]
	if !ok {
		return "", false
	}
	return textOf(fs)
}

// FileDiagnostics returns every per-file diagnostic currently recorded for
// fileURI: compile errors/warnings, or a prior parse/access failure.
func FileDiagnostics(s State, fileURI uri.URI) []source.Message {
	fs, ok := sources(s)[fileURI]
	if !ok {
		return nil
	}
	switch v := fs.(type) {
	case sourcefile.Compiled:
		return v.Warnings
	case sourcefile.ErrorSource:
		return v.Errors
	case sourcefile.ErrorAccess:
		return []source.Message{source.Errorf(source.ZeroIndex(fileURI), "%s", v.Err.Error())}
	default:
		return nil
	}
}

// BuildDiagnostics reports where workspace-level errors should be published
// and against what text: a bad ralph.json (BuildParseError,
// DirectoryOutsideWorkspace, DirectoryDoesNotExist, ErrorDownloadingDependency)
// is a build-URI diagnostic rendered against that file's own text, per §7;
// a compiler error unattributable to any file has no build-file text to
// measure offsets against and surfaces at the workspace root instead. ok is
// false when the workspace isn't in Errored at all.
func BuildDiagnostics(s State) (target uri.URI, text string, errs []source.Message, ok bool) {
	errored, ok := s.(Errored)
	if !ok {
		return "", "", nil, false
	}
	if be, ok := errored.Build.(buildfile.Errored); ok {
		return be.URI, be.Code, errored.Errors, true
	}
	return errored.WorkspaceURI(), "", errored.Errors, true
}

// FileGeneration returns the generation number currently recorded for
// fileURI, used to implement §5's "diagnostics for a given file never
// regress" rule on a per-file basis rather than gating the whole publish
// batch on one workspace-wide counter.
func FileGeneration(s State, fileURI uri.URI) (uint64, bool) {
	fs, ok := sources(s)[fileURI]
	if !ok {
		return 0, false
	}
	return fs.Generation(), true
}

// AllFileURIs returns every source URI currently tracked by the workspace,
// used by the adapter to know which files to clear diagnostics for when a
// build recovers from Errored back to Compiled.
func AllFileURIs(s State) []uri.URI {
	out := make([]uri.URI, 0, len(sources(s)))
	for u := range sources(s) {
		out = append(out, u)
	}
	return out
}
