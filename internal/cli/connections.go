package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List discovered connections between entries",
	Long: `List the connections discovered between entries. Strong links
(strength 5 and up) are marked with an asterisk.`,
	RunE: runListConnections,
}

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest which tasks to tackle next",
	Long: `Suggest the next tasks to work on: highest priority first, nearest
due date breaking ties, dated tasks before undated ones.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "max suggestions (server default when 0)")
}

func runListConnections(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	conns, err := api.Connections(context.Background())
	if err != nil {
		return err
	}

	if len(conns) == 0 {
		fmt.Println("No connections found yet.")
		return nil
	}

	fmt.Printf("Connections (%d):\n\n", len(conns))
	for _, c := range conns {
		printConnection(c)
	}
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	tasks, err := api.Suggestions(context.Background(), suggestLimit)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("Nothing to suggest, all caught up.")
		return nil
	}

	fmt.Println("Next up:")
	for i, t := range tasks {
		fmt.Printf("%d. %-8s due %-10s  %s\n", i+1, t.Priority, formatDue(t.DueDate), t.Text)
	}
	return nil
}
