package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openpermits/permitdash/internal/model"
	"github.com/openpermits/permitdash/internal/selection"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle       = lipgloss.NewStyle().Faint(true)
	paneStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("212"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	captionStyle     = lipgloss.NewStyle().Faint(true)
	pickerCursor     = lipgloss.NewStyle().Reverse(true)
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Durham Permits"))
	b.WriteString("\n\n")
	b.WriteString(m.filterBar())
	b.WriteString("\n")

	mapPane := m.pane(focusMap, "Map", m.mapView())
	tablePane := m.pane(focusTable, "Permits", m.tableView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, mapPane, tablePane))
	b.WriteString("\n")
	b.WriteString(m.pane(regionCount, "Detail", m.detailView()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("tab: next pane · space: toggle · enter: apply/select · esc: clear · ctrl+c: quit"))
	return b.String()
}

func (m *Model) pane(region focusRegion, title, content string) string {
	style := paneStyle
	if m.focus == region {
		style = focusedPaneStyle
	}
	return style.Render(labelStyle.Render(title) + "\n" + content)
}

func (m *Model) filterBar() string {
	parts := []string{
		m.pane(focusDateStart, "From", m.dateStart.View()),
		m.pane(focusDateEnd, "To", m.dateEnd.View()),
		m.pane(focusTypes, "Type", m.pickerView(m.types, m.focus == focusTypes)),
		m.pane(focusActivities, "Activity", m.pickerView(m.acts, m.focus == focusActivities)),
		m.pane(focusText, "Text", m.text.View()),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// pickerView shows up to a handful of options around the cursor; the
// full option list can be long for activities.
func (m *Model) pickerView(p *picker, focused bool) string {
	if len(p.options) == 0 {
		return labelStyle.Render("(no data)")
	}
	const window = 4
	start := 0
	if p.cursor >= window {
		start = p.cursor - window + 1
	}
	end := start + window
	if end > len(p.options) {
		end = len(p.options)
	}

	var lines []string
	for i := start; i < end; i++ {
		opt := p.options[i]
		mark := "[ ]"
		if p.selected[opt] {
			mark = "[x]"
		}
		line := mark + " " + opt
		if focused && i == p.cursor {
			line = pickerCursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) mapView() string {
	scatter := renderScatter(m.points, m.focusedIndexSet(), m.activeMapCursor(), m.mapW, m.mapH)
	view := m.ses.View()
	return scatter + "\n" + captionStyle.Render(
		fmt.Sprintf("center %.4f, %.4f · zoom %.1f", view.Lat, view.Lon, view.Zoom))
}

// activeMapCursor hides the cursor highlight while another pane has
// focus.
func (m *Model) activeMapCursor() int {
	if m.focus != focusMap {
		return -1
	}
	return m.mapCursor
}

func (m *Model) tableView() string {
	return m.table.View() + "\n" + captionStyle.Render(caption(m.ses.MatchCount()))
}

func (m *Model) detailView() string {
	state := m.ses.Selection()
	if state.Source == selection.SourceNone {
		return labelStyle.Render("no selection · detail follows the table and map")
	}

	focusSet := m.ses.Focus()
	const maxShown = 3
	var lines []string
	for i, rec := range focusSet {
		if i == maxShown {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("… and %d more", len(focusSet)-maxShown)))
			break
		}
		lines = append(lines, formatRecord(rec))
	}
	if len(lines) == 0 {
		return labelStyle.Render("selection is empty")
	}
	return strings.Join(lines, "\n")
}

func formatRecord(rec model.PermitRecord) string {
	loc := "no location"
	if rec.HasCoordinates() {
		loc = fmt.Sprintf("%.5f, %.5f", *rec.Lat, *rec.Lon)
	}
	line := fmt.Sprintf("%s · %s · %s · %s · %s",
		rec.IssueDate.Format("2006-01-02"), rec.Type, rec.Activity, rec.PermitStatus, loc)
	if rec.Description != "" {
		line += "\n  " + rec.Description
	}
	if rec.Comments != "" {
		line += "\n  " + rec.Comments
	}
	return line
}
