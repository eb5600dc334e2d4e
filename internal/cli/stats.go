package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/flowmind/internal/client"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session statistics",
	Long: `Show the session's counters: entries, tasks, drafts and connections.

Subcommands:
  server  Show server runtime statistics`,
	RunE: runSessionStats,
}

var statsServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Show server runtime statistics",
	RunE:  runServerStats,
}

func init() {
	statsCmd.AddCommand(statsServerCmd)
}

func runSessionStats(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	stats, err := api.GetSessionStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Entries:     %d\n", stats.Entries)
	fmt.Printf("Tasks:       %d (%d completed)\n", stats.Tasks, stats.CompletedTasks)
	fmt.Printf("Drafts:      %d\n", stats.Drafts)
	fmt.Printf("Connections: %d\n", stats.Connections)
	if len(stats.ByCategory) > 0 {
		fmt.Println("\nBy category:")
		for category, count := range stats.ByCategory {
			fmt.Printf("  %-13s %d\n", category, count)
		}
	}
	return nil
}

func runServerStats(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	stats, err := api.GetServerStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Uptime: %.0fs\n", stats.UptimeSeconds)
	printOp("analyze", stats.Analyze)
	printOp("connect", stats.Connect)
	printOp("db_query", stats.DBQuery)
	printOp("http_request", stats.HTTPRequest)
	return nil
}

func printOp(name string, op *client.OperationStats) {
	if op == nil {
		return
	}
	fmt.Printf("%-13s %5d calls  avg %.1fms  min %dms  max %dms\n",
		name, op.Count, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
