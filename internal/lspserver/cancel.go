package lspserver

import (
	"context"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

// cancelRequestCode is the LSP-reserved JSON-RPC error code for a request
// that was cancelled via "$/cancelRequest".
const cancelRequestCode = -32800

var errRequestCancelled = &jsonrpc2.Error{Code: cancelRequestCode, Message: "request cancelled"}

// cancelRegistry tracks the in-flight cancel funcs for long-running
// requests (completion, definition), keyed by their JSON-RPC id, per §5's
// "a cancellation token checked at coarse checkpoints". sourcegraph/jsonrpc2
// doesn't wire client-sent "$/cancelRequest" notifications into a request's
// own context automatically, so this plays that role explicitly, the same
// role a store of in-flight work plays in ruby-lsp-go's own
// GlobalState.CancelledRequests field.
type cancelRegistry struct {
	mu    sync.Mutex
	funcs map[jsonrpc2.ID]context.CancelFunc
}

func newCancelRegistry() *cancelRegistry {
	return &cancelRegistry{funcs: map[jsonrpc2.ID]context.CancelFunc{}}
}

// track derives a cancelable context for id and returns it along with a
// release func the caller must defer.
func (r *cancelRegistry) track(ctx context.Context, id jsonrpc2.ID) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.funcs[id] = cancel
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		delete(r.funcs, id)
		r.mu.Unlock()
		cancel()
	}
}

// cancel cancels the request named by id, if it's still in flight.
func (r *cancelRegistry) cancel(id jsonrpc2.ID) {
	r.mu.Lock()
	cancel, ok := r.funcs[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
}
