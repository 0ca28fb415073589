package lspserver

import (
	"context"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/ralph-lang/ralph-lsp-go/internal/completion"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

// handleCompletion implements §4.K over the wire. It checks the
// cancellation token at three points: after converting the cursor position
// to an offset, after collecting the workspace and dependency ASTs, and
// after completion.Complete returns (before converting its suggestions to
// LSP items). Locating the node under the cursor and building the
// suggestions both happen inside completion.Complete, which runs to the end
// without checking for cancellation.
func (s *Server) handleCompletion(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	var params lsp.CompletionParams
	if err := unmarshalParams(req, &params); err != nil {
		return nil, errInvalidParams
	}

	ctx, release := s.cancels.track(ctx, req.ID)
	defer release()

	state, _, ok := s.currentState()
	if !ok {
		return lsp.CompletionList{}, nil
	}

	fileURI := uri.URI(params.TextDocument.URI)
	text, ok := workspace.SourceText(state, fileURI)
	if !ok {
		return lsp.CompletionList{}, nil
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

	suggestions := completion.Complete(fileURI, text, offset, workspaceFiles, dependencyFiles)

	if ctx.Err() != nil {
		return nil, errRequestCancelled
	}

	return lsp.CompletionList{IsIncomplete: false, Items: toCompletionItems(suggestions)}, nil
}

func toCompletionItems(suggestions []completion.Suggestion) []lsp.CompletionItem {
	out := make([]lsp.CompletionItem, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, lsp.CompletionItem{
			Label:         sg.Label,
			Kind:          completionKindOf(sg.Kind),
			Detail:        sg.Detail,
			Documentation: sg.Documentation,
			InsertText:    sg.Insert,
		})
	}
	return out
}

func completionKindOf(k completion.Kind) lsp.CompletionItemKind {
	switch k {
	case completion.KindVariable:
		return lsp.CIKVariable
	case completion.KindFunction:
		return lsp.CIKFunction
	case completion.KindType:
		return lsp.CIKClass
	case completion.KindInterface:
		return lsp.CIKInterface
	case completion.KindKeyword:
		return lsp.CIKKeyword
	default:
		return lsp.CIKText
	}
}
