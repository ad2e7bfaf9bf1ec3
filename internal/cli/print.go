package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/stats"
)

const barWidth = 20

// progressBar renders rate (0-100) as a fixed-width bar
func progressBar(rate int) string {
	filled := rate * barWidth / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

var statusIcons = map[model.Status]string{
	model.StatusInProgress: "[~]",
	model.StatusBlocked:    "[!]",
	model.StatusFinish:     "[x]",
}

func printMeetingList(w io.Writer, tree []model.Meeting, current string) {
	o := stats.Dashboard(tree)
	fmt.Fprintf(w, "\n%d meetings, %d projects, %d/%d tasks done (%d%%)\n",
		o.Meetings, o.Projects, o.Completed, o.Tasks, o.Rate)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, m := range tree {
		b := stats.MeetingBreakdown(m)
		marker := "  "
		if m.ID == current {
			marker = "❯ "
		}
		title := m.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(w, "%s%-8s  %-30s  %s %s  %s %3d%%\n",
			marker, shortID(m.ID), title, m.Date.UTC().Format("2006-01-02"), m.Time,
			progressBar(b.Rate), b.Rate)
	}
	fmt.Fprintln(w)
}

func printMeeting(w io.Writer, m model.Meeting) {
	b := stats.MeetingBreakdown(m)
	fmt.Fprintf(w, "\n%s  (%s)\n", m.Title, shortID(m.ID))
	fmt.Fprintf(w, "%s %s, %d min, %s\n", m.Date.UTC().Format("Monday, January 2, 2006"), m.Time, m.Duration, m.Status)
	if m.Description != "" {
		fmt.Fprintf(w, "%s\n", m.Description)
	}
	fmt.Fprintf(w, "Progress %s %d%%  (%d done, %d in progress, %d blocked)\n",
		progressBar(b.Rate), b.Rate, b.Finished, b.InProgress, b.Blocked)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(m.Projects) == 0 {
		fmt.Fprintln(w, "No projects. Add one with: ironmeet project new \"Name\"")
	}
	for _, p := range m.Projects {
		pb := stats.ProjectBreakdown(p)
		fmt.Fprintf(w, "\n📁 %s  (%s)  %d/%d %d%%\n", p.Name, shortID(p.ID), pb.Finished, pb.Total, pb.Rate)
		for _, t := range p.Tasks {
			fmt.Fprintf(w, "  %s  %-8s  %s\n", statusIcons[t.Status], shortID(t.ID), t.Title)
		}
	}

	if m.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n%s\n", m.Notes)
	}
	fmt.Fprintf(w, "\nReport style: %s\n\n", m.ReportSettings.Style)
}
