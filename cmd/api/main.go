package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ratebook/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ratebook",
		Short: "RateBook API Server",
		Long:  `RateBook is a small HTTP service managing currency-pair quotes backed by a JSON file store.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
