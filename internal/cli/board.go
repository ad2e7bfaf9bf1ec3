package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/ironmeet/internal/board"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/tui"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board [meeting-id]",
	Short: "Open the kanban board of a meeting",
	Long: `Open the interactive kanban board of a meeting.

Keys: tab switches project, arrows move the cursor, [ and ] move the
selected task between columns, a adds, e edits, d deletes, c shows the
completion chart, r previews the report, R reloads, ? shows all keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		return runBoard(ctx, b, m.ID)
	},
}

func runBoard(ctx context.Context, b *session, meetingID string) error {
	m, err := b.GetMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to load meeting: %w", err)
	}

	opts := tui.Options{
		Board:         board.Options{RollbackOnFailure: cfg.Board.RollbackOnFailure},
		ConfirmDelete: cfg.ConfirmDelete,
	}
	logger.Info("Launching TUI", logger.F("meeting", m.ID))

	p := tea.NewProgram(tui.NewModel(b, m, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.Err(err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	logger.Info("TUI exited normally")
	return nil
}
