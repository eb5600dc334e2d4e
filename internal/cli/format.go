package cli

import (
	"fmt"
	"time"

	"github.com/raphaelgruber/flowmind/internal/client"
)

// formatDue renders a due date, or a dash when there is none.
func formatDue(due *time.Time) string {
	if due == nil {
		return "-"
	}
	return due.Format("2006-01-02")
}

// checkbox renders a completion marker.
func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printTask(t client.Task) {
	fmt.Printf("%s %-8s %-13s due %-10s  %s  (%s)\n",
		checkbox(t.Completed), t.Priority, t.Category, formatDue(t.DueDate), t.Text, t.ID)
}

func printEntry(e client.Entry) {
	fmt.Printf("%s %-8s %-13s due %-10s  %s  (%s)\n",
		checkbox(e.Completed), e.Priority, e.Category, formatDue(e.DueDate), e.CleanText, e.ID)
	if verbose {
		if len(e.Keywords) > 0 {
			fmt.Printf("    Keywords: %v\n", e.Keywords)
		}
		for kind, names := range e.Entities {
			fmt.Printf("    %s: %v\n", kind, names)
		}
		for _, d := range e.Details {
			fmt.Printf("    Note: %s\n", d.Text)
		}
	}
}

func printConnection(c client.Connection) {
	marker := " "
	if c.Type == "strong" {
		marker = "*"
	}
	fmt.Printf("%s %s -> %s (strength %d)\n", marker, c.From, c.To, c.Strength)
	for _, reason := range c.Reasons {
		fmt.Printf("    %s\n", reason)
	}
}
