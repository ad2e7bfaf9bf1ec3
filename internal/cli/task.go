package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Manage tasks of a project",
	Long: `Add, move, edit, and delete tasks.

Tasks live in one of three columns: in-progress, blocked, finish.

Examples:
  ironmeet task add 9c1e "Write API docs"
  ironmeet task add 9c1e "Fix login" --status blocked
  ironmeet task move 4b7d finish
  ironmeet task edit 4b7d --title "Fix login on Safari"`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add [project-id] [title]",
	Short: "Add a task at the end of its column",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskAdd,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another column",
	Long: `Move a task to another column. Moving to the column it is already in
changes nothing.

Status is one of: in-progress, blocked, finish.`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskMove,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Change task title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete [task-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskDelete,
}

var (
	taskDesc   string
	taskStatus string
	taskTitle  string
)

func init() {
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	taskAddCmd.Flags().StringVarP(&taskDesc, "description", "d", "", "Task description")
	taskAddCmd.Flags().StringVarP(&taskStatus, "status", "s", string(model.StatusInProgress), "Initial column")

	taskEditCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVarP(&taskDesc, "description", "d", "", "New description")

	taskDeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Do not ask for confirmation")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(taskStatus)
	if err != nil {
		return err
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	tree, err := b.FetchTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	p, err := findProject(tree, args[0])
	if err != nil {
		return err
	}

	t, err := b.CreateTask(ctx, p.ID, model.TaskInput{
		Title:       strings.Join(args[1:], " "),
		Description: taskDesc,
		Status:      status,
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	logger.Info("Task created", logger.F("project", p.ID), logger.F("task", t.ID))
	fmt.Printf("✓ Added to [%s]: \"%s\" (%s, %s)\n", p.Name, t.Title, shortID(t.ID), t.Status)
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(args[1])
	if err != nil {
		return err
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	tree, err := b.FetchTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	t, err := findTask(tree, args[0])
	if err != nil {
		return err
	}
	if t.Status == status {
		fmt.Printf("\"%s\" is already %s\n", t.Title, status)
		return nil
	}

	moved, err := b.SetTaskStatus(ctx, t.ID, status)
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	logger.Info("Task moved", logger.F("task", t.ID), logger.F("from", t.Status), logger.F("to", moved.Status))
	fmt.Printf("%s Moved \"%s\": %s → %s\n", statusIcons[moved.Status], moved.Title, t.Status, moved.Status)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	var patch model.TaskPatch
	if cmd.Flags().Changed("title") {
		patch.Title = &taskTitle
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &taskDesc
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to change, pass --title or --description")
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	tree, err := b.FetchTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	t, err := findTask(tree, args[0])
	if err != nil {
		return err
	}
	t, err = b.UpdateTask(ctx, t.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Printf("✓ Updated: \"%s\"\n", t.Title)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	tree, err := b.FetchTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	t, err := findTask(tree, args[0])
	if err != nil {
		return err
	}

	ok, err := confirm(fmt.Sprintf("Delete \"%s\"?", t.Title))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := b.DeleteTask(ctx, t.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Printf("🗑️  Deleted: \"%s\"\n", t.Title)
	return nil
}
