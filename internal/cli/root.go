// Package cli provides the command-line interface for habitcal.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/habitcal/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string

	// Shared server client, created before every command runs.
	api *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "habitcal",
	Short: "Habit tracking calendar with a chat assistant",
	Long: `Habitcal tracks daily habits on a calendar and ships a conversational
assistant that schedules, moves, cancels and lists them for you.

All commands talk to a running habitcal-server. Point them at it with
--server or the HABITCAL_SERVER_URL environment variable.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		api = client.New(serverURL)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "habitcal server URL (default from HABITCAL_SERVER_URL)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(migrateCmd)
}
