package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ralph-lang/ralph-lsp-go/internal/buildfile"
	"github.com/ralph-lang/ralph-lsp-go/internal/compiler"
	"github.com/ralph-lang/ralph-lsp-go/internal/config"
	"github.com/ralph-lang/ralph-lsp-go/internal/dependency"
	"github.com/ralph-lang/ralph-lsp-go/internal/fsaccess"
	"github.com/ralph-lang/ralph-lsp-go/internal/uri"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose a broken installation",
	Long:  `Extract the bundled std/built-in dependency sources into a scratch directory and report whether it succeeds, without starting a full session.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		scratch, err := os.MkdirTemp("", "ralph-lsp-doctor-*")
		if err != nil {
			return fmt.Errorf("creating scratch directory: %w", err)
		}
		defer os.RemoveAll(scratch)

		root := uri.FromPath(scratch)
		fs := fsaccess.New()
		buildURI := root.Join(buildfile.FileName)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dependency root (configured): %s\n", cfg.DependencyRoot)
		fmt.Fprintf(out, "extracting bundled std/built-in into: %s\n", scratch)

		set, errs := dependency.Load(fs, compiler.NewFake(), root, buildURI)
		if len(errs) > 0 {
			fmt.Fprintln(out, "extraction reported errors:")
			for _, e := range errs {
				fmt.Fprintf(out, "  - %s\n", e.Text)
			}
			return fmt.Errorf("dependency extraction failed")
		}

		fmt.Fprintf(out, "ok: %d dependency source file(s) extracted and compiled\n", len(set.Sources))
		return nil
	},
}
