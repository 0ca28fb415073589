package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ralph-lang/ralph-lsp-go/internal/config"
	"github.com/ralph-lang/ralph-lsp-go/internal/lspserver"
)

var socketAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server",
	Long:  `Run the language server, speaking LSP over stdio by default.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		logger, closeLog, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		srv := lspserver.New(engine, logger)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if socketAddr == "" {
			logger.Info("serving over stdio")
			return lspserver.RunStdio(ctx, srv)
		}

		logger.Info("serving over websocket at %s", socketAddr)
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if err := lspserver.ServeWebSocket(ctx, srv, w, r); err != nil {
				logger.Error("websocket session ended: %v", err)
			}
		})
		return http.ListenAndServe(socketAddr, mux)
	},
}

func init() {
	serveCmd.Flags().StringVar(&socketAddr, "socket", "", "serve over websocket at this address instead of stdio (e.g. :7658)")
}
