// Command ralph-lsp is the language server binary for Ralph smart
// contracts.
package main

import (
	"fmt"
	"os"

	"github.com/ralph-lang/ralph-lsp-go/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
