package lspserver

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
)

// RunStdio serves s over the process's own stdin/stdout, blocking until the
// client disconnects or ctx is cancelled. This is the transport every LSP
// client launches by default: one subprocess, framed JSON-RPC over pipes,
// the same shape as elves-elvish's Program.Run(fds).
func RunStdio(ctx context.Context, s *Server) error {
	return run(ctx, stdio{os.Stdin, os.Stdout}, s)
}

func run(ctx context.Context, stream io.ReadWriteCloser, s *Server) error {
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}), s.Handler())
	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		return conn.Close()
	}
}

type stdio struct {
	in  *os.File
	out *os.File
}

func (s stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	if err := s.in.Close(); err != nil {
		s.out.Close()
		return err
	}
	return s.out.Close()
}

// wsUpgrader accepts connections from any origin: the socket transport is
// meant for editor extensions running as local browser panels, not a
// public-facing service, so the usual same-origin check would only get in
// the way.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsStream adapts a *websocket.Conn to io.ReadWriteCloser by buffering
// across message boundaries, so jsonrpc2's stream reader (which reads
// arbitrary byte counts) can sit on top of a message-oriented transport.
type wsStream struct {
	conn *websocket.Conn
	buf  []byte
}

func newWSStream(conn *websocket.Conn) *wsStream { return &wsStream{conn: conn} }

func (w *wsStream) Read(p []byte) (int, error) {
	for len(w.buf) == 0 {
		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.buf = msg
	}
	n := copy(p, w.buf)
	w.buf = w.buf[n:]
	return n, nil
}

func (w *wsStream) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsStream) Close() error { return w.conn.Close() }

// ServeWebSocket upgrades an incoming HTTP request to a websocket and runs
// one LSP session over it, for editor front ends (or browser-hosted
// clients) that can't spawn the server as a stdio subprocess. This is the
// optional transport ruby-lsp-go's go.mod declared gorilla/websocket for
// but never wired up.
func ServeWebSocket(ctx context.Context, s *Server, w http.ResponseWriter, r *http.Request) error {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	return run(ctx, newWSStream(conn), s)
}
