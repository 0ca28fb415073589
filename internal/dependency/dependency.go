// Package dependency implements component E: materializing the bundled
// standard-library and built-in sources onto disk as a compiled
// sub-workspace, addressable by DependencyID.
//
// The bundle payloads are shipped with go:embed, the same technique
// elvish's pkg.go uses to ship its own Elvish-language bundled modules
// ("//go:embed eval/*.elv edit/*.elv mods/*/*.elv"); here it is Ralph
// interface sources instead. Extraction reuses component F's own
// parse/compile pipeline, since this repo requires the dependency
// sub-workspace to be "parsed and compiled by the same pipeline" (§4.E) —
// there is deliberately no second, parallel state machine for dependency
// sources.
package dependency

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/ralph-lang/ralph-lsp-go/internal/ast"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/sourcefile"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

//go:embed bundled/std/*.ral bundled/built-in/*.ral
var bundled embed.FS

// ID tags which bundled subtree a dependency source came from. Std sources
// are importable by user code; BuiltIn sources are only ever referenced by
// go-to-definition's isBuiltIn branch (§4.J).
type ID int

const (
	Std ID = iota
	BuiltIn
)

func (id ID) String() string {
	if id == BuiltIn {
		return "built-in"
	}
	return "std"
}

func (id ID) dirName() string {
	if id == BuiltIn {
		return "built-in"
	}
	return "std"
}

// Set is the compiled dependency sub-workspace: both std and built-in
// subtrees, addressable by ID, standing in for the literal recursive
// WorkspaceState.Compiled the prose describes — kept as a flatter type here
// so buildfile (which embeds a *Set) never has to import the workspace
// package, avoiding an import cycle between component C and component H.
type Set struct {
	Sources map[uri.URI]sourcefile.State
	IDOf    map[uri.URI]ID
}

// URIsByRelativePath maps every source in the set carrying the given ID to
// its path (without extension) relative to root, e.g. "std/nft_interface".
// The import resolver uses this directly to turn an `import "folder/file"`
// statement's folder/file into the dependency URI it names.
func (s *Set) URIsByRelativePath(id ID, root uri.URI) map[string]uri.URI {
	out := map[string]uri.URI{}
	for u, tag := range s.IDOf {
		if tag != id {
			continue
		}
		if rel, ok := u.TrimExt().RelativeTo(root); ok {
			out[rel] = u
		}
	}
	return out
}

// RelativePaths returns, in deterministic order, the relative path (without
// extension or the leading "std"/"built-in" directory) of every source in
// the set carrying the given ID.
func (s *Set) RelativePaths(id ID, root uri.URI) []string {
	prefix := id.dirName() + "/"
	byPath := s.URIsByRelativePath(id, root)
	out := make([]string, 0, len(byPath))
	for rel := range byPath {
		out = append(out, strings.TrimPrefix(rel, prefix))
	}
	sort.Strings(out)
	return out
}

// Files returns every dependency source's parsed AST, keyed by URI, for
// consumption as the `deps` argument to compiler.Facade.Compile.
func (s *Set) Files() map[uri.URI]*ast.File {
	out := make(map[uri.URI]*ast.File, len(s.Sources))
	for u, st := range s.Sources {
		switch v := st.(type) {
		case sourcefile.Compiled:
			out[u] = v.Parsed.AST
		case sourcefile.Parsed:
			out[u] = v.AST
		}
	}
	return out
}

// Load extracts both bundled subtrees under root (write-if-absent, §9 "do
// not overwrite"), then parses and compiles them, returning the resulting
// Set or a list of source.Message describing what went wrong.
func Load(fsys fsaccess.FS, facade compiler.Facade, root uri.URI, buildURI uri.URI) (*Set, []source.Message) {
	set := &Set{Sources: map[uri.URI]sourcefile.State{}, IDOf: map[uri.URI]ID{}}
	var errs []source.Message

	for _, id := range []ID{Std, BuiltIn} {
		dirErrs := extract(fsys, root, id)
		if len(dirErrs) > 0 {
			for _, e := range dirErrs {
				errs = append(errs, source.Errorf(source.ZeroIndex(buildURI), "%s", e.Error()))
			}
			continue
		}

		destDir := root.Join(id.dirName())
		states, err := sourcefile.Initialise(fsys, destDir)
		if err != nil {
			errs = append(errs, source.Errorf(source.ZeroIndex(buildURI), "%s", err.Error()))
			continue
		}

		parsed := map[uri.URI]sourcefile.Parsed{}
		for u, st := range states {
			next := sourcefile.Parse(fsys, facade, st)
			set.Sources[u] = next
			set.IDOf[u] = id
			if p, ok := next.(sourcefile.Parsed); ok {
				parsed[u] = p
			}
		}

		files := map[uri.URI]*ast.File{}
		for u, p := range parsed {
			files[u] = p.AST
		}
		result := facade.Compile(files, nil, nil)
		compiled := sourcefile.Compile(parsed, result)
		for u, st := range compiled {
			set.Sources[u] = st
		}
	}

	return set, errs
}

// extract writes every bundled file under the given ID's subtree into
// root/<id>/<relativePath>, skipping any file that already exists.
func extract(fsys fsaccess.FS, root uri.URI, id ID) []error {
	base := "bundled/" + id.dirName()
	var errs []error

	_ = fs.WalkDir(bundled, base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(path, base+"/")
		dest := root.Join(id.dirName()).Join(rel)

		exists, err := fsys.Exists(dest)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if exists {
			return nil
		}

		content, err := bundled.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if _, err := fsys.Write(dest, string(content)); err != nil {
			errs = append(errs, err)
		}
		return nil
	})

	return errs
}
