package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List and manage idea drafts",
	Long: `List undated notes waiting for a decision, newest first.

Subcommands:
  promote  Turn a draft into a task
  rm       Discard a draft

Examples:
  flowmind drafts
  flowmind drafts promote e3
  flowmind drafts rm e3`,
	RunE: runListDrafts,
}

var draftsPromoteCmd = &cobra.Command{
	Use:   "promote <id>",
	Short: "Turn a draft into a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromoteDraft,
}

var draftsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Discard a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiscardDraft,
}

func init() {
	draftsCmd.AddCommand(draftsPromoteCmd)
	draftsCmd.AddCommand(draftsRmCmd)
}

func runListDrafts(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	drafts, err := api.ListDrafts(context.Background())
	if err != nil {
		return err
	}

	if len(drafts) == 0 {
		fmt.Println("No drafts.")
		return nil
	}

	fmt.Printf("Drafts (%d):\n\n", len(drafts))
	for _, d := range drafts {
		fmt.Printf("- %-13s %s  (%s)\n", d.Category, d.CleanText, d.ID)
	}
	return nil
}

func runPromoteDraft(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	res, err := api.PromoteDraft(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Promoted to task: %s\n", res.Task.Text)
	fmt.Printf("  Category: %s\n", res.Task.Category)
	fmt.Printf("  Priority: %s\n", res.Task.Priority)

	if len(res.Connections) > 0 {
		fmt.Printf("\nFound %d connection(s):\n", len(res.Connections))
		for _, c := range res.Connections {
			printConnection(c)
		}
	}
	return nil
}

func runDiscardDraft(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	if err := api.DiscardDraft(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Draft discarded.")
	return nil
}
