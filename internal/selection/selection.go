package selection

import (
	"github.com/openpermits/permitdash/internal/model"
)

// Source identifies which widget owns the current selection
type Source int

const (
	// SourceNone means no selection; the focus set is the full
	// filtered sequence.
	SourceNone Source = iota
	// SourceTable means the table widget owns the selection.
	SourceTable
	// SourceMap means the map widget owns the selection.
	SourceMap
)

func (s Source) String() string {
	switch s {
	case SourceTable:
		return "table"
	case SourceMap:
		return "map"
	default:
		return "none"
	}
}

// State is the cross-view selection state. Indices are positions into
// the currently filtered sequence, not stable record IDs: they are
// meaningless once that sequence is rebuilt, which is why every
// upstream change resets the state.
type State struct {
	Source  Source
	Indices []int
}

// None is the empty selection state
func None() State {
	return State{Source: SourceNone}
}

// Event is a selection-affecting input event
type Event interface{ isEvent() }

// FilterOrDateChanged signals that the date range or any local
// predicate changed, invalidating positional indices.
type FilterOrDateChanged struct{}

// TableSelectEvent carries the row indices the table widget reports
type TableSelectEvent struct {
	Rows []int
}

// MapSelectEvent carries the point indices the map widget reports
type MapSelectEvent struct {
	Indices []int
}

func (FilterOrDateChanged) isEvent() {}
func (TableSelectEvent) isEvent()    {}
func (MapSelectEvent) isEvent()      {}

// Reduce returns the next state for an event. It is a pure function:
// widget side effects (clearing the table when the map takes focus)
// belong to the caller.
func Reduce(prev State, event Event) State {
	switch ev := event.(type) {
	case FilterOrDateChanged:
		return None()
	case TableSelectEvent:
		if len(ev.Rows) == 0 {
			return None()
		}
		return State{Source: SourceTable, Indices: append([]int(nil), ev.Rows...)}
	case MapSelectEvent:
		if len(ev.Indices) == 0 {
			return None()
		}
		return State{Source: SourceMap, Indices: append([]int(nil), ev.Indices...)}
	default:
		return prev
	}
}

// FocusSet returns the records the dashboard currently emphasizes:
// the selected records, or the whole filtered sequence when nothing
// is selected. Indices that fall outside the sequence are skipped
// rather than panicking; a stale event can outrun a rebuild.
func FocusSet(filtered []model.PermitRecord, state State) []model.PermitRecord {
	if state.Source == SourceNone {
		return filtered
	}
	out := make([]model.PermitRecord, 0, len(state.Indices))
	for _, idx := range state.Indices {
		if idx < 0 || idx >= len(filtered) {
			continue
		}
		out = append(out, filtered[idx])
	}
	return out
}
