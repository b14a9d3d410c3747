package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openpermits/permitdash/internal/filter"
	"github.com/openpermits/permitdash/internal/model"
	"github.com/openpermits/permitdash/internal/selection"
	"github.com/openpermits/permitdash/internal/session"
)

// focusRegion identifies which control has keyboard focus
type focusRegion int

const (
	focusDateStart focusRegion = iota
	focusDateEnd
	focusTypes
	focusActivities
	focusText
	focusTable
	focusMap
	regionCount
)

// keyMap declares the dashboard key bindings
type keyMap struct {
	NextPane key.Binding
	PrevPane key.Binding
	Toggle   key.Binding
	Apply    key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Apply:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply/select")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// refreshDoneMsg reports the outcome of a (blocking) fetch evaluation
type refreshDoneMsg struct {
	err error
}

// picker is a multi-select list over the distinct values of a field
type picker struct {
	title    string
	options  []string
	selected map[string]bool
	cursor   int
}

func (p *picker) SetOptions(options []string) {
	p.options = options
	if p.cursor >= len(options) {
		p.cursor = 0
	}
	// Drop selections for values that disappeared from the data.
	for v := range p.selected {
		found := false
		for _, o := range options {
			if o == v {
				found = true
				break
			}
		}
		if !found {
			delete(p.selected, v)
		}
	}
}

func (p *picker) Toggle() {
	if p.cursor < 0 || p.cursor >= len(p.options) {
		return
	}
	v := p.options[p.cursor]
	if p.selected[v] {
		delete(p.selected, v)
	} else {
		p.selected[v] = true
	}
}

func (p *picker) Values() []string {
	var out []string
	for _, o := range p.options {
		if p.selected[o] {
			out = append(out, o)
		}
	}
	return out
}

// Model is the bubbletea model for the permit dashboard
type Model struct {
	ses  *session.Session
	cfg  *model.Config
	keys keyMap
	now  func() time.Time

	focus focusRegion

	dateStart textinput.Model
	dateEnd   textinput.Model
	text      textinput.Model
	types     *picker
	acts      *picker
	table     *permitTable

	points    []scatterPoint
	mapCursor int
	mapW      int
	mapH      int

	width   int
	height  int
	status  string
	loading bool
}

// NewModel builds the dashboard around an existing session. The
// session's table contract binds to the dashboard's table widget
// here, so filter changes and map focus force-clear it.
func NewModel(cfg *model.Config, ses *session.Session, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}

	start := textinput.New()
	start.Placeholder = "YYYY-MM-DD"
	start.CharLimit = 10
	start.Width = 12
	end := textinput.New()
	end.Placeholder = "YYYY-MM-DD"
	end.CharLimit = 10
	end.Width = 12
	text := textinput.New()
	text.Placeholder = "search text"
	text.Width = 24

	today := now().UTC()
	start.SetValue(today.AddDate(0, 0, -cfg.UI.DefaultLookback).Format("2006-01-02"))
	end.SetValue(today.Format("2006-01-02"))

	m := &Model{
		ses:       ses,
		cfg:       cfg,
		keys:      defaultKeyMap(),
		now:       now,
		dateStart: start,
		dateEnd:   end,
		text:      text,
		types:     &picker{title: "Type", selected: make(map[string]bool)},
		acts:      &picker{title: "Activity", selected: make(map[string]bool)},
		table:     newPermitTable(),
		mapW:      48,
		mapH:      16,
	}
	ses.AttachTable(m.table)
	m.setFocus(focusDateStart)
	return m
}

// Init applies the default date range and kicks off the first fetch
func (m *Model) Init() tea.Cmd {
	return m.applyDates()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("fetch failed: %v", msg.err)
			return m, nil
		}
		m.status = ""
		m.syncFromSession()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextPane):
		m.setFocus((m.focus + 1) % regionCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.setFocus((m.focus + regionCount - 1) % regionCount)
		return m, nil
	}

	switch m.focus {
	case focusDateStart, focusDateEnd:
		if key.Matches(msg, m.keys.Apply) {
			return m, m.applyDates()
		}
		var cmd tea.Cmd
		if m.focus == focusDateStart {
			m.dateStart, cmd = m.dateStart.Update(msg)
		} else {
			m.dateEnd, cmd = m.dateEnd.Update(msg)
		}
		return m, cmd

	case focusText:
		if key.Matches(msg, m.keys.Apply) {
			m.applyPredicates()
			return m, nil
		}
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd

	case focusTypes, focusActivities:
		p := m.types
		if m.focus == focusActivities {
			p = m.acts
		}
		switch msg.String() {
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.options)-1 {
				p.cursor++
			}
		}
		if key.Matches(msg, m.keys.Toggle) {
			p.Toggle()
			m.applyPredicates()
		}
		return m, nil

	case focusTable:
		if key.Matches(msg, m.keys.Toggle) {
			rows := m.table.ToggleCursorMark()
			m.ses.HandleTableSelect(rows)
			return m, nil
		}
		if key.Matches(msg, m.keys.Clear) {
			m.table.ClearSelection()
			m.table.refreshMarkColumn()
			m.ses.HandleTableSelect(nil)
			return m, nil
		}
		cmd := m.table.Update(msg)
		return m, cmd

	case focusMap:
		switch {
		case msg.String() == "left" || msg.String() == "h":
			if m.mapCursor > 0 {
				m.mapCursor--
			}
		case msg.String() == "right" || msg.String() == "l":
			if m.mapCursor < len(m.points)-1 {
				m.mapCursor++
			}
		case key.Matches(msg, m.keys.Apply):
			// Single-object pick, like the scatter plot's click.
			if m.mapCursor >= 0 && m.mapCursor < len(m.points) {
				m.ses.HandleMapSelect([]int{m.points[m.mapCursor].index})
				m.table.refreshMarkColumn()
			}
		case key.Matches(msg, m.keys.Clear):
			m.ses.HandleMapSelect(nil)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setFocus(region focusRegion) {
	m.focus = region
	m.dateStart.Blur()
	m.dateEnd.Blur()
	m.text.Blur()
	m.table.Blur()
	switch region {
	case focusDateStart:
		m.dateStart.Focus()
	case focusDateEnd:
		m.dateEnd.Focus()
	case focusText:
		m.text.Focus()
	case focusTable:
		m.table.Focus()
	}
}

// applyDates parses the date inputs, installs the range, and starts a
// fetch. An unparseable end is treated as unset so today substitutes.
// A fetch in progress cannot be aborted; further date changes wait
// until it settles.
func (m *Model) applyDates() tea.Cmd {
	if m.loading {
		return nil
	}
	start, err := time.Parse("2006-01-02", m.dateStart.Value())
	if err != nil {
		m.status = fmt.Sprintf("bad start date %q", m.dateStart.Value())
		return nil
	}
	var end time.Time
	if v := m.dateEnd.Value(); v != "" {
		end, err = time.Parse("2006-01-02", v)
		if err != nil {
			m.status = fmt.Sprintf("bad end date %q", v)
			return nil
		}
	}

	m.ses.SetDateRange(model.DateRange{Start: start, End: end})
	m.loading = true
	m.status = "fetching…"
	ses := m.ses
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HTTP.Timeout)
		defer cancel()
		err := ses.Refresh(ctx)
		return refreshDoneMsg{err: err}
	}
}

// applyPredicates installs the local predicates; no network traffic
func (m *Model) applyPredicates() {
	m.ses.SetPredicates(filter.Predicates{
		Types:      m.types.Values(),
		Activities: m.acts.Values(),
		Text:       m.text.Value(),
	})
	m.syncFromSession()
}

// syncFromSession rebuilds the widgets from the session's filtered
// sequence after any re-evaluation.
func (m *Model) syncFromSession() {
	filtered := m.ses.Filtered()
	m.table.SetRecords(filtered)
	m.types.SetOptions(m.ses.TypeOptions())
	m.acts.SetOptions(m.ses.ActivityOptions())
	m.points = projectScatter(filtered, m.mapW, m.mapH)
	m.mapCursor = 0
}

// focusedIndexSet returns the selected indices as a set for the map
// renderer.
func (m *Model) focusedIndexSet() map[int]bool {
	state := m.ses.Selection()
	if state.Source == selection.SourceNone {
		return nil
	}
	set := make(map[int]bool, len(state.Indices))
	for _, idx := range state.Indices {
		set[idx] = true
	}
	return set
}
