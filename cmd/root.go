package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the todoistguard application
var rootCmd = &cobra.Command{
	Use:   "todoistguard",
	Short: "MCP server for Todoist that verifies every target before acting on it",
	Long: `todoistguard exposes a Todoist account to AI assistants over the Model
Context Protocol (MCP).

Every tool that reads or changes a task, project, section, comment or label
takes the entity's ID together with its current name. The name is checked
against Todoist first, and nothing happens when they do not match.`,
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
	rootCmd.SetVersionTemplate(`{{printf "todoistguard version %s\n" .Version}}`)

	// Without a subcommand the MCP server is started on stdio
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
