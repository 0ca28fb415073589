// Package cli is the ralph-lsp command tree: spf13/cobra root command plus
// serve/version/doctor subcommands, grounded on danieljhkim-monodev's
// internal/cli root/subcommand layout (a package-level rootCmd, an
// exported Execute, plain-func subcommand constructors wired in an init
// or an AddCommand block).
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ralph-lang/ralph-lsp-go/internal/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "ralph-lsp",
	Short:         "Language server for Ralph smart contracts",
	Long:          `ralph-lsp speaks the Language Server Protocol for Ralph (.ral) smart contract sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	config.BindFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

// SetVersion overrides the build-time version string reported by `version`
// and `--version`, per danieljhkim-monodev's own SetVersion/rootCmd.Version pair.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
