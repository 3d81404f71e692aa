package main

import (
	"github.com/spf13/cobra"
)

// defaultConfigPath is used when no --config flag is given.
const defaultConfigPath = "./config.toml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hive",
	Short: "Hive - Multi-Agent Chat Team",
	Long: `Hive runs a team of AI agents sharing one conversation. Each agent
decides independently whether to answer, react, call a tool or stay
silent, and scheduled jobs let agents act on their own.`,
	Version: Version,
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(testCmd)
}
