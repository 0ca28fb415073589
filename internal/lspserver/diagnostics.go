package lspserver

import (
	"context"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ralph-lang/ralph-lsp-go/internal/source"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

// publishAll pushes one textDocument/publishDiagnostics notification per
// known file, but only for files whose generation is newer than the last
// one actually published for that specific URI. Gating per file (rather
// than on a single workspace-wide counter) is what makes §5's "diagnostics
// for a given file never regress" hold even if a future call publishes a
// subset of files out of the usual whole-workspace batch; the workspace-
// level generation still gates the build-level diagnostics below it, the
// same debounce-by-sequence-number idea DESIGN.md credits to
// vovakirdan-surge's snapshot counter.
func (s *Server) publishAll(ctx context.Context, conn *jsonrpc2.Conn, state workspace.State) {
	for _, fileURI := range workspace.AllFileURIs(state) {
		gen, ok := workspace.FileGeneration(state, fileURI)
		if !ok {
			continue
		}

		s.publishMu.Lock()
		if s.lastPublishedGen == nil {
			s.lastPublishedGen = map[uri.URI]uint64{}
		}
		if gen <= s.lastPublishedGen[fileURI] {
			s.publishMu.Unlock()
			continue
		}
		s.lastPublishedGen[fileURI] = gen
		s.publishMu.Unlock()

		text, _ := workspace.SourceText(state, fileURI)
		msgs := workspace.FileDiagnostics(state, fileURI)
		_ = conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
			URI:         lsp.DocumentURI(fileURI),
			Diagnostics: toDiagnostics(text, msgs),
		})
	}

	buildURI, buildText, buildErrs, hasBuildDiagnostics := workspace.BuildDiagnostics(state)
	wsGen := state.Generation()

	s.publishMu.Lock()
	publishWorkspace := wsGen > s.lastPublishedWorkspaceGen
	if publishWorkspace {
		s.lastPublishedWorkspaceGen = wsGen
	}
	prevBuildURI := s.lastPublishedBuildURI
	var nextBuildURI uri.URI
	if hasBuildDiagnostics && len(buildErrs) > 0 {
		nextBuildURI = buildURI
	}
	s.lastPublishedBuildURI = nextBuildURI
	s.publishMu.Unlock()

	if !publishWorkspace {
		return
	}

	// A prior call may have published a build/workspace diagnostic at a URI
	// (ralph.json, or the workspace root for an unattributable compile error)
	// that no longer has anything to say; clear it there rather than leaving
	// it stuck in the editor (§4.L stale-error suppression, invariant #7).
	if nextBuildURI == "" {
		if prevBuildURI != "" {
			_ = conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
				URI:         lsp.DocumentURI(prevBuildURI),
				Diagnostics: toDiagnostics("", nil),
			})
		}
		return
	}

	_ = conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         lsp.DocumentURI(nextBuildURI),
		Diagnostics: toDiagnostics(buildText, buildErrs),
	})
}

func toDiagnostics(text string, msgs []source.Message) []lsp.Diagnostic {
	out := make([]lsp.Diagnostic, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, lsp.Diagnostic{
			Range:    rangeFromOffsets(text, m.At.Offset, m.At.End()),
			Severity: severityOf(m.Kind),
			Source:   "ralph",
			Message:  m.Text,
		})
	}
	return out
}

func severityOf(k source.Kind) lsp.DiagnosticSeverity {
	switch k {
	case source.KindError:
		return lsp.Error
	case source.KindWarning:
		return lsp.Warning
	default:
		return lsp.Information
	}
}
