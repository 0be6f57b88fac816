package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the schedulr application
var rootCmd = &cobra.Command{
	Use:   "schedulr",
	Short: "MCP server that schedules meetings over email",
	Long: `schedulr is an MCP (Model Context Protocol) server for meeting scheduling.

It computes free time from your Google Calendar, finds common availability
with another person, emails them a list of slots and, once they picked one,
sends a confirmation with a calendar invite and saves the meeting.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "schedulr version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newSaveTokenCmd())
}
