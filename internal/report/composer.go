// Package report renders a meeting snapshot into a Markdown status report.
//
// Composition is deterministic: the same meeting and settings always produce the
// same bytes. Dates are rendered in UTC and no generation timestamp is embedded.
package report

import (
	"fmt"
	"strings"

	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/stats"
)

// Footer closes every report
const Footer = "*This report was generated automatically based on meeting data and notes.*"

// sectionOrder is the order task groups appear under each project
var sectionOrder = []struct {
	status model.Status
	label  string
}{
	{model.StatusFinish, "Completed"},
	{model.StatusInProgress, "In Progress"},
	{model.StatusBlocked, "Blocked"},
}

// view is the precomputed input shared by header and summary builders
type view struct {
	meeting model.Meeting
	totals  stats.Breakdown
}

func (v view) date() string {
	return v.meeting.Date.UTC().Format("1/2/2006")
}

func (v view) clock() string {
	return model.ClockOf(v.meeting.Date)
}

// Compose renders m with the given settings
func Compose(m model.Meeting, s model.ReportSettings) string {
	v := view{meeting: m, totals: stats.MeetingBreakdown(m)}
	tmpl := lookup(s.Style)

	var b strings.Builder
	tmpl.header(&b, v)
	writeProjects(&b, m)
	writeNotes(&b, m.Notes)
	b.WriteString("## Summary & Next Steps\n\n")
	tmpl.summary(&b, v)

	if s.AdditionalPrompt != "" {
		b.WriteString("\n**Additional Considerations:**\n")
		b.WriteString(s.AdditionalPrompt)
		b.WriteString("\n")
	}

	b.WriteString("\n---\n")
	b.WriteString(Footer)
	return b.String()
}

// ComposeMeeting renders m with its own stored settings
func ComposeMeeting(m model.Meeting) string {
	return Compose(m, m.ReportSettings)
}

func writeProjects(b *strings.Builder, m model.Meeting) {
	b.WriteString("## Project Status\n\n")

	for _, p := range m.Projects {
		fmt.Fprintf(b, "### %s\n", p.Name)
		fmt.Fprintf(b, "%s\n\n", p.Description)
		fmt.Fprintf(b, "**Progress:** %d/%d tasks completed (%d%%)\n\n",
			stats.CompletedCount(p), stats.TaskCount(p), stats.CompletionRate(p))

		for _, sec := range sectionOrder {
			tasks := p.TasksWithStatus(sec.status)
			if len(tasks) == 0 {
				continue
			}
			fmt.Fprintf(b, "**%s Tasks:**\n", sec.label)
			for _, t := range tasks {
				fmt.Fprintf(b, "- %s: %s\n", t.Title, t.Description)
			}
			b.WriteString("\n")
		}
	}
}

func writeNotes(b *strings.Builder, notes string) {
	if notes == "" {
		return
	}
	b.WriteString("## Meeting Notes\n\n")
	b.WriteString(notes)
	b.WriteString("\n\n")
}
