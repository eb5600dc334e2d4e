package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List and manage analyzed entries",
	Long: `List the session's analyzed entries.

Subcommands:
  show    Show one entry with keywords, entities and notes
  toggle  Flip an entry's completion state
  rm      Delete an entry

Examples:
  flowmind entries
  flowmind entries show e1
  flowmind entries toggle e1
  flowmind entries rm e1`,
	RunE: runListEntries,
}

var entriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowEntry,
}

var entriesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip an entry's completion state",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggleEntry,
}

var entriesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteEntry,
}

var noteCmd = &cobra.Command{
	Use:   "note <entry-id> <text>",
	Short: "Attach a note to an entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runNote,
}

func init() {
	entriesCmd.AddCommand(entriesShowCmd)
	entriesCmd.AddCommand(entriesToggleCmd)
	entriesCmd.AddCommand(entriesRmCmd)
}

func runListEntries(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	entries, err := api.ListEntries(context.Background())
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No entries yet.")
		return nil
	}

	fmt.Printf("Entries (%d):\n\n", len(entries))
	for _, e := range entries {
		printEntry(e)
	}
	return nil
}

func runShowEntry(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	e, err := api.GetEntry(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", checkbox(e.Completed), e.CleanText)
	fmt.Printf("  Original: %s\n", e.OriginalText)
	fmt.Printf("  Due:      %s\n", formatDue(e.DueDate))
	fmt.Printf("  Category: %s\n", e.Category)
	fmt.Printf("  Priority: %s\n", e.Priority)
	if len(e.Keywords) > 0 {
		fmt.Printf("  Keywords: %v\n", e.Keywords)
	}
	for kind, names := range e.Entities {
		fmt.Printf("  %s: %v\n", kind, names)
	}
	if len(e.Details) > 0 {
		fmt.Println("  Notes:")
		for _, d := range e.Details {
			fmt.Printf("    %s  %s\n", d.AddedAt.Local().Format("2006-01-02 15:04"), d.Text)
		}
	}
	return nil
}

func runToggleEntry(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	e, err := api.ToggleEntry(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", checkbox(e.Completed), e.CleanText)
	return nil
}

func runDeleteEntry(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	if err := api.DeleteEntry(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Entry deleted.")
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	detail, err := api.AddDetail(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Added note: %s\n", detail.Text)
	return nil
}
