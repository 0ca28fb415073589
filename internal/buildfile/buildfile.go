// Package buildfile implements components C and D: the typed states for a
// workspace's ralph.json build file, and the validator that turns a parsed
// build file into a compiled one or a set of errors.
//
// Grounded on ruby-lsp-go's store.Document state-holding pattern generalized
// into a closed tagged variant per design note "tagged variants over
// inheritance"; JSON decoding uses the standard library encoding/json, since
// no third-party JSON library appears anywhere in the example pack.
package buildfile

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// FileName is the fixed name a build file must have.
const FileName = "ralph.json"

// Config is the decoded ralph.json body. In BuildParsed its paths are
// exactly as written (relative); in BuildCompiled they have been resolved
// to absolute paths within the workspace.
type Config struct {
	CompilerOptions map[string]any `json:"compilerOptions"`
	ContractPath    string         `json:"contractPath"`
	ArtifactPath    string         `json:"artifactPath"`
}

// State is the sealed BuildState tagged variant (§3). Its three cases are
// BuildParsed, BuildCompiled, and BuildErrored.
type State interface {
	BuildURI() uri.URI
	isBuildState()
}

// Parsed is the build file after successful JSON decoding but before path
// validation.
type Parsed struct {
	URI    uri.URI
	Code   string
	Config Config
}

func (p Parsed) BuildURI() uri.URI { return p.URI }
func (Parsed) isBuildState()       {}

// Compiled is a build file whose paths have been validated and resolved.
type Compiled struct {
	URI            uri.URI
	Code           string
	Config         Config // ContractPath/ArtifactPath are absolute here
	Dependency     *dependency.Set
	DependencyPath uri.URI
}

func (c Compiled) BuildURI() uri.URI { return c.URI }
func (Compiled) isBuildState()       {}

// WithDependency attaches a loaded dependency set and its root path,
// completing the Compiled state per §4.E ("the final BuildCompiled carries
// dependency: WorkspaceState.Compiled"). Called by the workspace engine
// after Validate succeeds, not by Validate itself, since dependency
// materialization is a separate, disk-touching step.
func (c Compiled) WithDependency(dep *dependency.Set, path uri.URI) Compiled {
	c.Dependency = dep
	c.DependencyPath = path
	return c
}

// Errored is a build file that failed to parse or validate.
type Errored struct {
	URI    uri.URI
	Code   string // may be empty if the file could not be read
	Errors []source.Message
}

func (e Errored) BuildURI() uri.URI { return e.URI }
func (Errored) isBuildState()       {}
