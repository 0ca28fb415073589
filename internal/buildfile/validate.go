package buildfile

import (
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

// Validate resolves a Parsed build file's paths against workspaceURI and
// checks them, per §4.C-D:
//
//  1. build-file location: the file must sit directly in the workspace root.
//  2. contractPath/artifactPath containment within the workspace.
//  3. existence of both resolved directories.
//
// All checks accumulate; Validate never stops at the first failure. A path
// that fails containment is not also existence-checked, since a location
// outside the workspace is already terminally invalid (matching the E2
// scenario, which expects exactly one error for a single bad path).
func Validate(parsed Parsed, workspaceURI uri.URI, fs fsaccess.FS) State {
	var errs []source.Message

	if !validateBuildURI(parsed.URI, workspaceURI) {
		errs = append(errs, source.Errorf(source.ZeroIndex(parsed.URI),
			"InvalidBuildFileLocation: %s must sit directly in the workspace root", FileName))
	}

	contractAbs := workspaceURI.Join(parsed.Config.ContractPath)
	artifactAbs := workspaceURI.Join(parsed.Config.ArtifactPath)

	errs = append(errs, checkDir(fs, workspaceURI, parsed.URI, parsed.Code, parsed.Config.ContractPath, contractAbs)...)
	errs = append(errs, checkDir(fs, workspaceURI, parsed.URI, parsed.Code, parsed.Config.ArtifactPath, artifactAbs)...)

	if len(errs) > 0 {
		return Errored{URI: parsed.URI, Code: parsed.Code, Errors: errs}
	}

	cfg := parsed.Config
	cfg.ContractPath = contractAbs.Path()
	cfg.ArtifactPath = artifactAbs.Path()

	return Compiled{
		URI:            parsed.URI,
		Code:           parsed.Code,
		Config:         cfg,
		DependencyPath: uri.URI(""),
	}
}

func checkDir(fs fsaccess.FS, workspaceURI, buildURI uri.URI, code, relPath string, abs uri.URI) []source.Message {
	if !workspaceURI.Contains(abs) {
		return []source.Message{source.Errorf(
			lastIndexOf(code, buildURI, relPath), "DirectoryOutsideWorkspace: %s", relPath)}
	}
	exists, err := fs.Exists(abs)
	if err != nil {
		return []source.Message{source.Errorf(source.ZeroIndex(buildURI), "%s", err.Error())}
	}
	if !exists {
		return []source.Message{source.Errorf(
			lastIndexOf(code, buildURI, relPath), "DirectoryDoesNotExist: %s", relPath)}
	}
	return nil
}

// validateBuildURI requires buildURI to be named ralph.json and to live
// directly inside workspaceURI, not in some nested directory.
func validateBuildURI(buildURI, workspaceURI uri.URI) bool {
	return buildURI.Filename() == FileName && buildURI.Parent() == workspaceURI
}
