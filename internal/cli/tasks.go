package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and manage tasks",
	Long: `List the session's tasks.

Subcommands:
  add     Create plain tasks, one per line or semicolon-separated
  done    Flip a task's completion state
  rm      Delete a task

Examples:
  flowmind tasks
  flowmind tasks add "8.30 提交报告; 明天 锻炼"
  flowmind tasks done t1
  flowmind tasks rm t1`,
	RunE: runListTasks,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create plain tasks from multi-line input",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAddTasks,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Flip a task's completion state",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggleTask,
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteTask,
}

func init() {
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksRmCmd)
}

func runListTasks(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	tasks, err := api.ListTasks(context.Background())
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks yet.")
		return nil
	}

	fmt.Printf("Tasks (%d):\n\n", len(tasks))
	for _, t := range tasks {
		printTask(t)
	}
	return nil
}

func runAddTasks(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	tasks, err := api.AddTasks(context.Background(), strings.Join(args, "\n"))
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks recognized in the input.")
		return nil
	}

	fmt.Printf("Created %d task(s):\n", len(tasks))
	for _, t := range tasks {
		printTask(t)
	}
	return nil
}

func runToggleTask(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	task, err := api.ToggleTask(context.Background(), args[0])
	if err != nil {
		return err
	}
	printTask(*task)
	return nil
}

func runDeleteTask(cmd *cobra.Command, args []string) error {
	if err := requireLogin(); err != nil {
		return err
	}

	if err := api.DeleteTask(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Task deleted.")
	return nil
}
