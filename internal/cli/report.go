package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/report"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Report settings of a meeting",
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [meeting-id]",
	Short: "Set the report style and additional considerations",
	Long: `Set the report style and additional considerations of a meeting.

Styles: executive, detailed, client-friendly, technical.

Examples:
  ironmeet settings set --style technical
  ironmeet settings set 3f2a --style client-friendly --prompt "Mention the budget"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSet,
}

var reportCmd = &cobra.Command{
	Use:   "report [meeting-id]",
	Short: "Render the meeting report",
	Long: `Render the report of a meeting in its configured style.

By default the report is only printed. --save stores it as the meeting's
current report, replacing the previous one; --file stores it as a file
instead of inline. --stored prints the last saved report.

Examples:
  ironmeet report
  ironmeet report 3f2a --save --file
  ironmeet report --output review.md
  ironmeet report --email`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

var reportFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored report files with download links",
	Args:  cobra.NoArgs,
	RunE:  runReportFiles,
}

var (
	settingsStyle  string
	settingsPrompt string

	reportSave   bool
	reportFile   bool
	reportOutput string
	reportStored bool
	reportEmail  bool
)

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsSetCmd.Flags().StringVarP(&settingsStyle, "style", "s", "", "Report style")
	settingsSetCmd.Flags().StringVarP(&settingsPrompt, "prompt", "p", "", "Additional considerations appended to the report")

	reportCmd.AddCommand(reportFilesCmd)
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Store as the meeting's current report")
	reportCmd.Flags().BoolVar(&reportFile, "file", false, "With --save, store the report as a file")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to this path")
	reportCmd.Flags().BoolVar(&reportStored, "stored", false, "Show the last saved report")
	reportCmd.Flags().BoolVar(&reportEmail, "email", false, "Print a mailto: draft link instead of the report")
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
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

	rs := m.ReportSettings
	if cmd.Flags().Changed("style") {
		rs.Style = model.Style(settingsStyle)
	}
	if cmd.Flags().Changed("prompt") {
		rs.AdditionalPrompt = settingsPrompt
	}
	if err := b.SaveReportSettings(ctx, m.ID, rs); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Printf("✓ \"%s\" reports use the %s style\n", m.Title, report.Resolve(rs.Style))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
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

	var r api.ReportResponse
	switch {
	case reportStored:
		r, err = b.Report(ctx, m.ID)
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("no saved report for \"%s\", run 'ironmeet report --save'", m.Title)
		}
	case reportSave:
		r, err = b.GenerateReport(ctx, m.ID, reportFile)
		if err == nil {
			logger.Info("Report saved", logger.F("meeting", m.ID), logger.F("file", r.FilePath))
		}
	default:
		r = preview(m)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, []byte(r.Content), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", reportOutput)
	} else if reportEmail {
		fmt.Println(r.EmailDraft)
	} else {
		fmt.Print(r.Content)
	}

	if r.FilePath != "" {
		fmt.Fprintf(os.Stderr, "Stored as %s\n", r.FilePath)
	}
	if r.URL != "" {
		fmt.Fprintf(os.Stderr, "Download: %s\n", r.URL)
	}
	return nil
}

func runReportFiles(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	list, err := b.StoredReports(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list report files: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No stored report files. Save one with 'ironmeet report --save --file'.")
		return nil
	}
	for _, f := range list {
		fmt.Printf("📁 %s\n", f.Path)
		if f.URL != "" {
			fmt.Printf("   %s\n", f.URL)
		}
	}
	return nil
}

// preview composes from the fetched tree without storing anything
func preview(m model.Meeting) api.ReportResponse {
	content := report.ComposeMeeting(m)
	return api.ReportResponse{
		Content:    content,
		FileName:   report.FileName(m.Title),
		EmailDraft: report.EmailDraft(m, content),
	}
}
