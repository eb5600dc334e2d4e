// Package cli provides the command-line interface for flowmind.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/flowmind/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// API client, created before every command runs
	api   *client.Client
	creds *credentials
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flowmind",
	Short: "Personal task and idea flow manager",
	Long: `FlowMind captures quick notes in Chinese or English, extracts dates,
categories, priorities and entities, and turns dated notes into
scheduled tasks. Undated notes are kept as idea drafts, and related
items are linked automatically as you add more.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Nothing to set up for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		creds, err = loadCredentials()
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}

		url := serverURL
		if url == "" && creds != nil {
			url = creds.ServerURL
		}
		api = client.New(url)
		if creds != nil {
			api.SetToken(creds.AccessToken)
		}

		return nil
	},
}

// requireLogin guards commands that need an authenticated session.
func requireLogin() error {
	if creds == nil || creds.AccessToken == "" {
		return fmt.Errorf("not logged in, run 'flowmind login' first")
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (defaults to the stored login or FLOWMIND_SERVER_URL)")

	// Add subcommands
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(connectionsCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}
