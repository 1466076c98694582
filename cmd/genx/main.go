package main

import (
	"os"

	"github.com/arthur-debert/genx/cmd/genx/commands"

	// Registers the built-in features in the default catalog
	_ "github.com/arthur-debert/genx/pkg/builtin"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
