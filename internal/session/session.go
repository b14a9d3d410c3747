package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openpermits/permitdash/internal/filter"
	"github.com/openpermits/permitdash/internal/model"
	"github.com/openpermits/permitdash/internal/querycache"
	"github.com/openpermits/permitdash/internal/selection"
)

// Fetcher retrieves all records for a date range
type Fetcher interface {
	Fetch(ctx context.Context, dateRange model.DateRange) ([]model.PermitRecord, error)
}

// TableWidget is the imperative surface the session needs from the
// host table: a way to force-clear its displayed selection so it does
// not resurface as stale state after the map takes focus or the
// filters change.
type TableWidget interface {
	ClearSelection()
}

// Session wires the fetch client, cache, filter engine, and selection
// state into the dashboard's per-event evaluation. The evaluation
// model is one triggering input event at a time, a full re-evaluation
// per event; a host that dispatches events from another goroutine
// while a fetch is in flight still sees serialized evaluations, since
// every method holds the session mutex for the whole evaluation.
type Session struct {
	cfg     *model.Config
	fetcher Fetcher
	cache   *querycache.ResultCache
	now     func() time.Time
	table   TableWidget

	// mu serializes evaluations. Refresh holds it across the blocking
	// fetch: a predicate or selection event arriving mid-fetch waits
	// for the fetch to settle instead of mutating state it races.
	mu sync.Mutex

	dateRange  model.DateRange
	predicates filter.Predicates
	state      selection.State

	all      []model.PermitRecord
	filtered []model.PermitRecord
}

// New creates a Session. A nil clock defaults to time.Now; the cache
// is created only when enabled in the configuration.
func New(cfg *model.Config, fetcher Fetcher, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		cfg:     cfg,
		fetcher: fetcher,
		now:     now,
		state:   selection.None(),
	}
	if cfg.Cache.Enabled {
		s.cache = querycache.New(cfg.Cache.TTL, now)
	}
	return s
}

// AttachTable registers the table widget to force-clear on focus loss
func (s *Session) AttachTable(w TableWidget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = w
}

// SetDateRange installs a new date range. The selection resets before
// the new value applies: its indices point into a sequence about to
// be rebuilt. Refresh must run before the new records are visible.
func (s *Session) SetDateRange(dateRange model.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
	s.dateRange = dateRange
}

// SetPredicates installs new local predicates and re-filters the
// already-fetched records. No network traffic: predicate changes only
// touch the cached result set.
func (s *Session) SetPredicates(p filter.Predicates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
	s.predicates = p
	s.filtered = filter.Apply(s.all, p)
}

// invalidate resets the selection and clears the table widget's own
// displayed selection; the caller holds mu.
func (s *Session) invalidate() {
	s.state = selection.Reduce(s.state, selection.FilterOrDateChanged{})
	if s.table != nil {
		s.table.ClearSelection()
	}
}

// Refresh fetches (through the cache) the records for the current
// date range and applies the local predicates. Fetch errors abort the
// evaluation; the previous records stay in place so the caller can
// present the error and let the user re-trigger.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dateRange := s.dateRange.Normalize(s.now)

	var (
		records []model.PermitRecord
		err     error
	)
	if s.cache != nil {
		records, err = s.cache.Get(ctx, dateRange, s.fetcher.Fetch)
	} else {
		records, err = s.fetcher.Fetch(ctx, dateRange)
	}
	if err != nil {
		return fmt.Errorf("query permits: %w", err)
	}

	s.all = records
	s.filtered = filter.Apply(records, s.predicates)
	return nil
}

// HandleTableSelect processes a selection event from the table widget
func (s *Session) HandleTableSelect(rows []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = selection.Reduce(s.state, selection.TableSelectEvent{Rows: rows})
}

// HandleMapSelect processes a selection event from the map widget.
// The table widget is force-cleared first so its internal selection
// cannot resurface after the map takes focus.
func (s *Session) HandleMapSelect(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil {
		s.table.ClearSelection()
	}
	s.state = selection.Reduce(s.state, selection.MapSelectEvent{Indices: indices})
}

// Filtered returns the currently filtered sequence
func (s *Session) Filtered() []model.PermitRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered
}

// Selection returns the current selection state
func (s *Session) Selection() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Focus returns the focus set: the selected records, or the whole
// filtered sequence when nothing is selected.
func (s *Session) Focus() []model.PermitRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusLocked()
}

// View returns the map viewport for the current focus set
func (s *Session) View() model.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selection.Viewport(s.focusLocked(), s.cfg.Map)
}

// focusLocked derives the focus set; the caller holds mu
func (s *Session) focusLocked() []model.PermitRecord {
	return selection.FocusSet(s.filtered, s.state)
}

// MatchCount returns the number of records after filtering, for the
// "N matching permits" caption.
func (s *Session) MatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filtered)
}

// DateRange returns the current (possibly un-normalized) date range
func (s *Session) DateRange() model.DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dateRange
}

// Predicates returns the current local predicates
func (s *Session) Predicates() filter.Predicates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predicates
}

// TypeOptions returns the picker options derived from the full
// (unfiltered) result set.
func (s *Session) TypeOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.TypeOptions(s.all)
}

// ActivityOptions returns the picker options derived from the full
// (unfiltered) result set.
func (s *Session) ActivityOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.ActivityOptions(s.all)
}
