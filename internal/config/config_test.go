package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralph-lang/ralph-lsp-go/internal/config"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	config.BindFlags(cmd)
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	cmd := newTestCmd(t)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := config.Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DependencyRoot)
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	cmd := newTestCmd(t)
	require.NoError(t, cmd.ParseFlags([]string{"--log-level=debug", "--dependency-root=/opt/ralph/std"}))

	cfg, err := config.Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/opt/ralph/std", cfg.DependencyRoot)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("RALPH_LSP_LOG_LEVEL", "warn")
	cmd := newTestCmd(t)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := config.Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
