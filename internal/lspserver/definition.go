package lspserver

import (
	"context"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ralph-lang/ralph-lsp-go/internal/definition"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

// handleDefinition implements §4.J over the wire, honoring the same three
// cancellation checkpoints as handleCompletion.
func (s *Server) handleDefinition(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	var params lsp.TextDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, errInvalidParams
	}

	ctx, release := s.cancels.track(ctx, req.ID)
	defer release()

	state, _, ok := s.currentState()
	if !ok {
		return []lsp.Location{}, nil
	}

	fileURI := uri.URI(params.TextDocument.URI)
	text, ok := workspace.SourceText(state, fileURI)
	if !ok {
		return []lsp.Location{}, nil
	}
	offset := positionToOffset(text, params.Position)

	if ctx.Err() != nil {
		return nil, errRequestCancelled
	}

	workspaceFiles := workspace.Files(state)
	dependencyFiles := workspace.DependencyFiles(state)

	if ctx.Err() != nil {
		return nil, errRequestCancelled
	}

	locations := definition.GoTo(fileURI, offset, workspaceFiles, dependencyFiles)

	if ctx.Err() != nil {
		return nil, errRequestCancelled
	}

	return toLocations(state, locations), nil
}

// toLocations converts result offsets to LSP ranges. A definition can land
// in a std/built-in dependency file rather than a workspace source, so the
// text lookup has to cover both (§4.J's isBuiltIn/std-member branches).
func toLocations(state workspace.State, locs []definition.SourceLocation) []lsp.Location {
	out := make([]lsp.Location, 0, len(locs))
	for _, loc := range locs {
		text, _ := workspace.AnySourceText(state, loc.URI)
		out = append(out, lsp.Location{
			URI:   lsp.DocumentURI(loc.URI),
			Range: rangeFromOffsets(text, loc.Range.Offset, loc.Range.End()),
		})
	}
	return out
}
