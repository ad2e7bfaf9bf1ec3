package tui

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/existflow/ironmeet/internal/stats"
)

// buildChart draws one stacked bar per project with its task count per status
func (m *Model) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, p := range m.meeting.Projects {
		var values []barchart.BarValue
		for _, s := range columns {
			values = append(values, barchart.BarValue{
				Name:  s.Label(),
				Value: float64(stats.CountByStatus(p, s)),
				Style: lipgloss.NewStyle().Foreground(StatusColor(s)),
			})
		}
		bars = append(bars, barchart.BarData{
			Label:  truncate(p.Name, 10),
			Values: values,
		})
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(TextMuted)}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

// chartLegend names the status colors used in the chart
func chartLegend() string {
	var parts []string
	for _, s := range model.Statuses {
		parts = append(parts, lipgloss.NewStyle().Foreground(StatusColor(s)).Render("█ "+s.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(parts)...)
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, p)
	}
	return out
}
