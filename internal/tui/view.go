package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/stats"
)

// resize fits the sized components to the window
func (m *Model) resize() {
	m.report.Width = clamp(m.width-6, 20, m.width)
	m.report.Height = clamp(m.height-6, 5, m.height)
	m.progress.Width = clamp(m.width/3, 10, 40)
	m.help.Width = m.width
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ModeForm:
		if m.form != nil {
			return m.renderModal(m.form.View())
		}
	case ModeChart:
		return m.renderChart()
	case ModeReport:
		return m.renderReport()
	case ModeHelp:
		h := m.help
		h.ShowAll = true
		return m.renderModal(HeaderStyle.Render("Keys") + "\n\n" + h.View(keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		m.renderColumns(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render(truncate(m.meeting.Title, 40))
	date := HelpStyle.Render(m.meeting.Date.UTC().Format("Jan 02, 2006") + " " + model.ClockOf(m.meeting.Date))

	rate := stats.MeetingCompletionRate(m.meeting)
	bar := m.progress.ViewAs(float64(rate) / 100)
	done := HelpStyle.Render(fmt.Sprintf(" %d/%d done",
		stats.MeetingCompletedCount(m.meeting), stats.MeetingTaskCount(m.meeting)))

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", date, "   ", bar, done)
}

func (m Model) renderTabs() string {
	if len(m.meeting.Projects) == 0 {
		return TabStyle.Render("No projects yet")
	}

	var tabs []string
	for i := range m.meeting.Projects {
		p := &m.meeting.Projects[i]
		label := fmt.Sprintf("%s %d%%", truncate(p.Name, 20), stats.CompletionRate(*p))
		if i == m.projCursor {
			tabs = append(tabs, ActiveTabStyle.Foreground(projectColor(p)).Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m Model) renderColumns() string {
	colWidth := (m.width - 2) / len(columns)
	if colWidth < 18 {
		colWidth = 18
	}
	// header, tabs, status bar and borders
	colHeight := m.height - 8
	if colHeight < 5 {
		colHeight = 5
	}

	rendered := make([]string, len(columns))
	for i, s := range columns {
		rendered[i] = m.renderColumn(i, s, colWidth-4, colHeight)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderColumn(i int, s model.Status, width, height int) string {
	tasks := m.column(i)
	active := i == m.colCursor

	var b strings.Builder
	head := lipgloss.NewStyle().Bold(true).Foreground(StatusColor(s)).
		Render(fmt.Sprintf("%s (%d)", s.Label(), len(tasks)))
	b.WriteString(head)
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(HelpStyle.Render("  empty"))
	}

	for j, t := range tasks {
		line := truncate(t.Title, width-2)
		if active && j == m.rowCursor {
			b.WriteString(TaskItemSelectedStyle.Width(width).Render("▸ " + line))
		} else {
			b.WriteString(TaskItemStyle.Width(width).Render("  " + line))
		}
		b.WriteString("\n")
		if t.Description != "" && active && j == m.rowCursor {
			b.WriteString(TaskDescStyle.Render(truncate(t.Description, width-4)))
			b.WriteString("\n")
		}
	}

	style := ColumnStyle
	if active {
		style = ActiveColumnStyle
	}
	return style.Width(width).Height(height).Render(b.String())
}

func (m Model) renderStatusBar() string {
	msg := m.message
	if m.isError {
		msg = ErrorStyle.Render(msg)
	}
	return StatusBarStyle.Width(m.width).Render(msg + "\n" + m.help.View(keys))
}

func (m Model) renderModal(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, ModalStyle.Render(content))
}

func (m Model) renderChart() string {
	header := HeaderStyle.Render("Tasks per project")
	if len(m.meeting.Projects) == 0 {
		return m.renderModal(header + "\n\n" + HelpStyle.Render("No projects yet") + "\n\n" + HelpStyle.Render("esc to go back"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.chart.View(),
		"",
		chartLegend(),
		HelpStyle.Render("esc to go back"),
	)
}

func (m Model) renderReport() string {
	header := HeaderStyle.Render("Report preview")
	footer := HelpStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  esc back", m.report.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, m.report.View(), footer)
}
