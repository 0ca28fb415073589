package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/config"
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/logging"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
	"github.com/ralph-lang/ralph-lsp-go/internal/workspace"
)

// dependencyRoot resolves cfg.DependencyRoot to a uri.URI, defaulting to a
// per-user cache directory when the operator hasn't overridden it — the
// std/built-in bundle is extracted there once and reused across sessions.
func dependencyRoot(cfg config.Config) (uri.URI, error) {
	if cfg.DependencyRoot != "" {
		return uri.FromPath(cfg.DependencyRoot), nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving default dependency root: %w", err)
	}
	return uri.FromPath(filepath.Join(cacheDir, "ralph-lsp", "deps")), nil
}

// newEngine builds the workspace.Engine every subcommand that touches a
// workspace shares: real disk access, the compiler facade, and the
// resolved dependency root.
func newEngine(cfg config.Config) (*workspace.Engine, error) {
	depRoot, err := dependencyRoot(cfg)
	if err != nil {
		return nil, err
	}
	return &workspace.Engine{
		FS:             fsaccess.New(),
		Facade:         compiler.NewFake(),
		DependencyRoot: depRoot,
	}, nil
}

// newLogger opens cfg's configured log destination and returns a Logger
// plus a func the caller must defer to release it. Defaults to stderr:
// stdout is reserved for the JSON-RPC wire protocol under stdio transport.
func newLogger(cfg config.Config) (*logging.Logger, func(), error) {
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.LevelInfo
	}
	if cfg.LogFile == "" {
		return logging.NewStderr(level), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logging.New(f, level), func() { f.Close() }, nil
}
