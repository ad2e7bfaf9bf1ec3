package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/spf13/cobra"
)

var meetingCmd = &cobra.Command{
	Use:     "meeting",
	Aliases: []string{"m"},
	Short:   "Manage meetings",
	Long: `Create, list, show, edit, and delete meetings.

Examples:
  ironmeet meeting new "Sprint review" --date "2025-01-15 14:00"
  ironmeet meeting list
  ironmeet meeting use 3f2a
  ironmeet meeting show`,
}

var meetingListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List meetings, newest first",
	RunE:    runMeetingList,
}

var meetingNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a meeting",
	Long: `Create a meeting. Without a title an interactive form is shown.

Examples:
  ironmeet meeting new "Weekly sync"
  ironmeet meeting new "Planning" --date "2025-02-01 09:30" --duration 45`,
	RunE: runMeetingNew,
}

var meetingShowCmd = &cobra.Command{
	Use:   "show [meeting-id]",
	Short: "Show a meeting with its projects and tasks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMeetingShow,
}

var meetingEditCmd = &cobra.Command{
	Use:   "edit [meeting-id]",
	Short: "Change meeting fields",
	Long: `Change only the fields given as flags.

Examples:
  ironmeet meeting edit --title "Sprint 12 review"
  ironmeet meeting edit 3f2a --status completed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMeetingEdit,
}

var meetingDeleteCmd = &cobra.Command{
	Use:     "delete [meeting-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a meeting and everything under it",
	Args:    cobra.ExactArgs(1),
	RunE:    runMeetingDelete,
}

var meetingUseCmd = &cobra.Command{
	Use:   "use [meeting-id]",
	Short: "Set the current meeting used when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMeetingUse,
}

var (
	meetingDesc     string
	meetingDate     string
	meetingDuration int
	meetingTitle    string
	meetingStatus   string
	meetingClear    bool
)

func init() {
	meetingCmd.AddCommand(meetingListCmd)
	meetingCmd.AddCommand(meetingNewCmd)
	meetingCmd.AddCommand(meetingShowCmd)
	meetingCmd.AddCommand(meetingEditCmd)
	meetingCmd.AddCommand(meetingDeleteCmd)
	meetingCmd.AddCommand(meetingUseCmd)

	meetingNewCmd.Flags().StringVarP(&meetingDesc, "description", "d", "", "Meeting description")
	meetingNewCmd.Flags().StringVar(&meetingDate, "date", "", "Date and time (YYYY-MM-DD HH:MM), default now")
	meetingNewCmd.Flags().IntVar(&meetingDuration, "duration", 0, "Duration in minutes")

	meetingEditCmd.Flags().StringVar(&meetingTitle, "title", "", "New title")
	meetingEditCmd.Flags().StringVarP(&meetingDesc, "description", "d", "", "New description")
	meetingEditCmd.Flags().StringVar(&meetingDate, "date", "", "New date and time (YYYY-MM-DD HH:MM)")
	meetingEditCmd.Flags().IntVar(&meetingDuration, "duration", 0, "New duration in minutes")
	meetingEditCmd.Flags().StringVar(&meetingStatus, "status", "", "New meeting status")

	meetingDeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Do not ask for confirmation")
	meetingUseCmd.Flags().BoolVar(&meetingClear, "clear", false, "Clear the current meeting")
}

func runMeetingList(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	tree, err := b.FetchTree(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list meetings: %w", err)
	}
	if len(tree) == 0 {
		fmt.Println("No meetings found. Create one with: ironmeet meeting new \"Weekly sync\"")
		return nil
	}
	printMeetingList(os.Stdout, tree, GetCurrentMeeting())
	return nil
}

func runMeetingNew(cmd *cobra.Command, args []string) error {
	in := model.MeetingInput{
		Title:       strings.Join(args, " "),
		Description: meetingDesc,
		Duration:    meetingDuration,
	}

	if in.Title == "" {
		if !interactive() {
			return fmt.Errorf("meeting title required")
		}
		if err := meetingForm(&in.Title, &in.Description, &meetingDate); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Cancelled.")
				return nil
			}
			return err
		}
	}

	date, err := parseDate(meetingDate, time.Now())
	if err != nil {
		return err
	}
	in.Date = date

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	m, err := b.CreateMeeting(context.Background(), in)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	if err := SetCurrentMeeting(m.ID); err != nil {
		logger.Warn("Failed to set current meeting", logger.Err(err))
	}

	logger.Info("Meeting created", logger.F("meeting", m.ID))
	fmt.Printf("✓ Created meeting \"%s\" (%s), now current\n", m.Title, shortID(m.ID))
	return nil
}

func meetingForm(title, desc, date *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(title).Validate(required("title")),
			huh.NewText().Title("Description").Value(desc),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD HH:MM, empty for now").
				Value(date).
				Validate(func(s string) error {
					_, err := parseDate(s, time.Now())
					return err
				}),
		),
	).Run()
}

func runMeetingShow(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	m, err := resolveMeeting(context.Background(), b, args)
	if err != nil {
		return err
	}
	printMeeting(os.Stdout, m)
	return nil
}

func runMeetingEdit(cmd *cobra.Command, args []string) error {
	var p model.MeetingPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title = &meetingTitle
	}
	if flags.Changed("description") {
		p.Description = &meetingDesc
	}
	if flags.Changed("duration") {
		p.Duration = &meetingDuration
	}
	if flags.Changed("status") {
		p.Status = &meetingStatus
	}
	if flags.Changed("date") {
		date, err := parseDate(meetingDate, time.Now())
		if err != nil {
			return err
		}
		p.Date = &date
	}
	if p.Empty() {
		return fmt.Errorf("nothing to change, pass at least one flag")
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	m, err := resolveMeeting(ctx, b, args)
	if err != nil {
		return err
	}
	m, err = b.UpdateMeeting(ctx, m.ID, p)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	fmt.Printf("✓ Updated meeting \"%s\"\n", m.Title)
	return nil
}

func runMeetingDelete(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := context.Background()
	m, err := resolveMeeting(ctx, b, args)
	if err != nil {
		return err
	}

	ok, err := confirm(fmt.Sprintf("Delete \"%s\" with its %d projects?", m.Title, len(m.Projects)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := b.DeleteMeeting(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if GetCurrentMeeting() == m.ID {
		_ = ClearCurrentMeeting()
	}

	logger.Info("Meeting deleted", logger.F("meeting", m.ID))
	fmt.Printf("🗑️  Deleted: \"%s\"\n", m.Title)
	return nil
}

func runMeetingUse(cmd *cobra.Command, args []string) error {
	if meetingClear {
		if err := ClearCurrentMeeting(); err != nil {
			return fmt.Errorf("failed to clear current meeting: %w", err)
		}
		fmt.Println("Current meeting cleared")
		return nil
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	m, err := resolveMeeting(context.Background(), b, args)
	if err != nil {
		return err
	}
	if err := SetCurrentMeeting(m.ID); err != nil {
		return fmt.Errorf("failed to set current meeting: %w", err)
	}
	fmt.Printf("📅 Switched to: %s\n", m.Title)
	return nil
}

// resolveMeeting loads the meeting named by args[0] or the current meeting
func resolveMeeting(ctx context.Context, b *session, args []string) (model.Meeting, error) {
	id, err := meetingArg(args)
	if err != nil {
		return model.Meeting{}, err
	}
	tree, err := b.FetchTree(ctx)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("failed to load meetings: %w", err)
	}
	return findMeeting(tree, id)
}
