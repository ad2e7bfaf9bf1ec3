package report

import (
	"fmt"
	"strings"

	"github.com/existflow/ironmeet/internal/model"
)

type builder func(b *strings.Builder, v view)

// template pairs the two style-dependent sections of a report
type template struct {
	header  builder
	summary builder
}

// templates maps each style to its builders. Adding a style only touches this table.
var templates = map[model.Style]template{
	model.StyleExecutive:      {header: executiveHeader, summary: executiveSummary},
	model.StyleClientFriendly: {header: clientHeader, summary: clientSummary},
	model.StyleTechnical:      {header: technicalHeader, summary: statisticsSummary},
	model.StyleDetailed:       {header: detailedHeader, summary: statisticsSummary},
}

// lookup returns the template for s, falling back to detailed
func lookup(s model.Style) template {
	if t, ok := templates[s]; ok {
		return t
	}
	return templates[model.StyleDetailed]
}

// Resolve returns the style that Compose will actually use for s
func Resolve(s model.Style) model.Style {
	if _, ok := templates[s]; ok {
		return s
	}
	return model.StyleDetailed
}

func executiveHeader(b *strings.Builder, v view) {
	fmt.Fprintf(b, "# Executive Summary: %s\n\n", v.meeting.Title)
	fmt.Fprintf(b, "**Date:** %s at %s\n", v.date(), v.clock())
	fmt.Fprintf(b, "**Overall Progress:** %d%% Complete\n\n", v.totals.Rate)
}

func clientHeader(b *strings.Builder, v view) {
	fmt.Fprintf(b, "# Meeting Report: %s\n\n", v.meeting.Title)
	fmt.Fprintf(b, "Thank you for taking the time to meet with us on %s.\n\n", v.date())
	fmt.Fprintf(b, "## Summary\n%s\n\n", v.meeting.Description)
}

func technicalHeader(b *strings.Builder, v view) {
	fmt.Fprintf(b, "# Technical Report: %s\n\n", v.meeting.Title)
	b.WriteString("**Meeting Metadata:**\n")
	fmt.Fprintf(b, "- Date/Time: %s %s\n", v.date(), v.clock())
	fmt.Fprintf(b, "- Projects: %d\n", len(v.meeting.Projects))
	fmt.Fprintf(b, "- Total Tasks: %d\n\n", v.totals.Total)
}

func detailedHeader(b *strings.Builder, v view) {
	fmt.Fprintf(b, "# Detailed Meeting Report: %s\n\n", v.meeting.Title)
	b.WriteString("**Meeting Overview:**\n")
	fmt.Fprintf(b, "- Date: %s\n", v.date())
	fmt.Fprintf(b, "- Time: %s\n", v.clock())
	fmt.Fprintf(b, "- Description: %s\n\n", v.meeting.Description)
}

func executiveSummary(b *strings.Builder, v view) {
	b.WriteString("**Key Outcomes:**\n")
	fmt.Fprintf(b, "- %d tasks completed across %d projects\n", v.totals.Finished, len(v.meeting.Projects))
	if v.totals.Blocked > 0 {
		fmt.Fprintf(b, "- %d tasks currently blocked - requiring immediate attention\n", v.totals.Blocked)
	}
	if v.totals.InProgress > 0 {
		fmt.Fprintf(b, "- %d tasks in active development\n", v.totals.InProgress)
	}
}

func clientSummary(b *strings.Builder, v view) {
	b.WriteString("We made excellent progress during this meeting:\n\n")
	fmt.Fprintf(b, "- Successfully completed %d tasks\n", v.totals.Finished)
	fmt.Fprintf(b, "- Currently working on %d ongoing initiatives\n", v.totals.InProgress)
	if v.totals.Blocked > 0 {
		fmt.Fprintf(b, "- Identified %d items that need your input to proceed\n", v.totals.Blocked)
	}
}

func statisticsSummary(b *strings.Builder, v view) {
	b.WriteString("**Meeting Statistics:**\n")
	fmt.Fprintf(b, "- Total Tasks: %d\n", v.totals.Total)
	fmt.Fprintf(b, "- Completed: %d\n", v.totals.Finished)
	fmt.Fprintf(b, "- In Progress: %d\n", v.totals.InProgress)
	fmt.Fprintf(b, "- Blocked: %d\n", v.totals.Blocked)
	fmt.Fprintf(b, "- Completion Rate: %d%%\n\n", v.totals.Rate)
}
