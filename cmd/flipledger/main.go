package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/flipledger/flipledger/internal/commands"
)

func main() {
	rootCmd := commands.NewRootCommand()
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
