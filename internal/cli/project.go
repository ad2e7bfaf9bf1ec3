package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Manage projects of a meeting",
	Long: `Add, edit, and delete the projects discussed in a meeting.

Examples:
  ironmeet project new "Mobile app" --color "#FF6B6B"
  ironmeet project new "Backend" --meeting 3f2a
  ironmeet project delete 9c1e`,
}

var projectNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Add a project to a meeting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProjectNew,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit [project-id]",
	Short: "Change project fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectEdit,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a project and its tasks",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectDelete,
}

var (
	projectMeeting string
	projectDesc    string
	projectColor   string
	projectName    string
)

func init() {
	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	projectNewCmd.Flags().StringVarP(&projectMeeting, "meeting", "m", "", "Meeting id (default current meeting)")
	projectNewCmd.Flags().StringVarP(&projectDesc, "description", "d", "", "Project description")
	projectNewCmd.Flags().StringVarP(&projectColor, "color", "c", "", "Display color, e.g. #4ECDC4")

	projectEditCmd.Flags().StringVar(&projectName, "name", "", "New name")
	projectEditCmd.Flags().StringVarP(&projectDesc, "description", "d", "", "New description")
	projectEditCmd.Flags().StringVarP(&projectColor, "color", "c", "", "New color")

	projectDeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Do not ask for confirmation")
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	var margs []string
	if projectMeeting != "" {
		margs = []string{projectMeeting}
	}
	m, err := resolveMeeting(ctx, b, margs)
	if err != nil {
		return err
	}

	p, err := b.CreateProject(ctx, m.ID, model.ProjectInput{
		Name:        strings.Join(args, " "),
		Description: projectDesc,
		Color:       projectColor,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	logger.Info("Project created", logger.F("meeting", m.ID), logger.F("project", p.ID))
	fmt.Printf("✓ Added project \"%s\" (%s) to \"%s\"\n", p.Name, shortID(p.ID), m.Title)
	return nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	var patch model.ProjectPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		patch.Name = &projectName
	}
	if flags.Changed("description") {
		patch.Description = &projectDesc
	}
	if flags.Changed("color") {
		patch.Color = &projectColor
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to change, pass at least one flag")
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
	p, err = b.UpdateProject(ctx, p.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	fmt.Printf("✓ Updated project \"%s\"\n", p.Name)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
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

	ok, err := confirm(fmt.Sprintf("Delete \"%s\" with its %d tasks?", p.Name, len(p.Tasks)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := b.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	logger.Info("Project deleted", logger.F("project", p.ID))
	fmt.Printf("🗑️  Deleted: \"%s\"\n", p.Name)
	return nil
}
