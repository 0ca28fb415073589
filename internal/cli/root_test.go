package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "ralph-lsp")
}

func TestRootCommandVersionFlag(t *testing.T) {
	SetVersion("9.9.9")
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.Contains(buf.String(), "9.9.9"))
}

func TestVersionSubcommandPrintsRuntimeVersion(t *testing.T) {
	SetVersion("1.0.0")
	rootCmd.SetArgs([]string{"version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "1.0.0")
	assert.Contains(t, out, "go1")
}

func TestDoctorReportsExtractionSuccess(t *testing.T) {
	rootCmd.SetArgs([]string{"doctor"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "ok:")
}
