package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobsitelog/core/cmd/jobsitelog/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobsitelog",
		Short: "JobSite Log server",
		Long:  `JobSite Log records work sites and their itemized entries (notes, materials, tools, time estimates, photos) and exports printable estimates.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
