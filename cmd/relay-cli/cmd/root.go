package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "Room relay CLI tool",
	Long: `relay-cli inspects a running room relay server.

Available commands:
  rooms      List active rooms and their members
  version    Print the CLI version

Use "relay-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
