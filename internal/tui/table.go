package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openpermits/permitdash/internal/model"
)

// permitTable wraps the bubbles table with a marked-row set so the
// dashboard can report multi-row selections. It implements the
// session's TableWidget contract: ClearSelection drops the marks, so
// a stale table selection can never resurface after the map takes
// focus or a filter changes.
type permitTable struct {
	inner  table.Model
	marked map[int]bool
}

func newPermitTable() *permitTable {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "Issued", Width: 10},
		{Title: "Type", Width: 14},
		{Title: "Activity", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Description", Width: 40},
	}
	inner := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Reverse(true)
	inner.SetStyles(styles)

	return &permitTable{inner: inner, marked: make(map[int]bool)}
}

// ClearSelection implements session.TableWidget
func (t *permitTable) ClearSelection() {
	t.marked = make(map[int]bool)
}

// SetRecords replaces the displayed rows. The cursor resets because
// the old position indexes a sequence that no longer exists.
func (t *permitTable) SetRecords(records []model.PermitRecord) {
	rows := make([]table.Row, len(records))
	for i, rec := range records {
		rows[i] = table.Row{
			t.markGlyph(i),
			rec.IssueDate.Format("2006-01-02"),
			rec.Type,
			rec.Activity,
			rec.PermitStatus,
			rec.Description,
		}
	}
	t.inner.SetRows(rows)
	t.inner.SetCursor(0)
}

func (t *permitTable) markGlyph(row int) string {
	if t.marked[row] {
		return "*"
	}
	return " "
}

// ToggleCursorMark flips the mark on the row under the cursor and
// returns the full marked set, sorted, for the select event.
func (t *permitTable) ToggleCursorMark() []int {
	row := t.inner.Cursor()
	if row < 0 || row >= len(t.inner.Rows()) {
		return t.MarkedRows()
	}
	if t.marked[row] {
		delete(t.marked, row)
	} else {
		t.marked[row] = true
	}
	t.refreshMarkColumn()
	return t.MarkedRows()
}

// MarkedRows returns the marked row indices in ascending order
func (t *permitTable) MarkedRows() []int {
	rows := make([]int, 0, len(t.marked))
	for row := range t.marked {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

func (t *permitTable) refreshMarkColumn() {
	rows := t.inner.Rows()
	for i := range rows {
		rows[i][0] = t.markGlyph(i)
	}
	t.inner.SetRows(rows)
}

func (t *permitTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.inner, cmd = t.inner.Update(msg)
	return cmd
}

func (t *permitTable) View() string {
	return t.inner.View()
}

func (t *permitTable) Focus()          { t.inner.Focus() }
func (t *permitTable) Blur()           { t.inner.Blur() }
func (t *permitTable) Cursor() int     { return t.inner.Cursor() }
func (t *permitTable) SetHeight(h int) { t.inner.SetHeight(h) }

// caption renders the match summary under the table
func caption(count int) string {
	return fmt.Sprintf("%d matching permits", count)
}
