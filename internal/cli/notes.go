package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/existflow/ironmeet/internal/logger"
	"github.com/spf13/cobra"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Meeting notes",
}

var notesSetCmd = &cobra.Command{
	Use:   "set [meeting-id]",
	Short: "Replace the notes of a meeting",
	Long: `Replace the notes of a meeting. Without --text or --file the current
notes open in the configured editor.

Examples:
  ironmeet notes set --text "Agreed to ship on Friday"
  ironmeet notes set 3f2a --file notes.md
  ironmeet notes set`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotesSet,
}

var notesShowCmd = &cobra.Command{
	Use:   "show [meeting-id]",
	Short: "Print the notes of a meeting",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotesShow,
}

var (
	notesText string
	notesFile string
)

func init() {
	notesCmd.AddCommand(notesSetCmd)
	notesCmd.AddCommand(notesShowCmd)

	notesSetCmd.Flags().StringVarP(&notesText, "text", "t", "", "Notes content")
	notesSetCmd.Flags().StringVarP(&notesFile, "file", "F", "", "Read notes from a file")
}

func runNotesSet(cmd *cobra.Command, args []string) error {
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

	var content string
	switch {
	case cmd.Flags().Changed("text"):
		content = notesText
	case notesFile != "":
		data, err := os.ReadFile(notesFile)
		if err != nil {
			return fmt.Errorf("failed to read notes file: %w", err)
		}
		content = string(data)
	default:
		if content, err = editText(m.Notes); err != nil {
			return err
		}
	}

	if err := b.SaveNotes(ctx, m.ID, content); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	logger.Info("Notes saved", logger.F("meeting", m.ID), logger.F("bytes", len(content)))
	fmt.Printf("✓ Saved notes for \"%s\"\n", m.Title)
	return nil
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	m, err := resolveMeeting(context.Background(), b, args)
	if err != nil {
		return err
	}
	if m.Notes == "" {
		fmt.Println("No notes yet.")
		return nil
	}
	fmt.Println(m.Notes)
	return nil
}

// editText opens initial in the configured editor and returns the result
func editText(initial string) (string, error) {
	f, err := os.CreateTemp("", "ironmeet-notes-*.md")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(initial); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	editor := cfg.Editor
	if env := os.Getenv("EDITOR"); env != "" {
		editor = env
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return "", fmt.Errorf("no editor configured")
	}

	c := exec.Command(parts[0], append(parts[1:], f.Name())...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
