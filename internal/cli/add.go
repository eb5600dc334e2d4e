package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Capture a note",
	Long: `Capture a quick note. Notes with a recognizable date become scheduled
tasks right away; undated notes are filed as idea drafts.

Dates can be written numerically, in Chinese, or relatively:

Examples:
  flowmind add "8.30 提交项目报告"
  flowmind add "明天 复习线性代数"
  flowmind add "学习 Python 数据分析的想法"
  flowmind add "9月1日 和小王讨论方案"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	res, err := api.AddEntry(context.Background(), args[0])
	if err != nil {
		return err
	}

	if res.Task != nil {
		fmt.Printf("Created task: %s\n", res.Task.Text)
		fmt.Printf("  Due:      %s\n", formatDue(res.Task.DueDate))
		fmt.Printf("  Category: %s\n", res.Task.Category)
		fmt.Printf("  Priority: %s\n", res.Task.Priority)
	} else {
		fmt.Printf("Filed draft: %s\n", res.Entry.CleanText)
		fmt.Println("  Promote it later with 'flowmind drafts promote'.")
	}

	if len(res.Connections) > 0 {
		fmt.Printf("\nFound %d connection(s):\n", len(res.Connections))
		for _, c := range res.Connections {
			printConnection(c)
		}
	}

	if verbose && res.Entry != nil {
		if len(res.Entry.Keywords) > 0 {
			fmt.Printf("  Keywords: %v\n", res.Entry.Keywords)
		}
		for kind, names := range res.Entry.Entities {
			fmt.Printf("  %s: %v\n", kind, names)
		}
	}

	return nil
}
