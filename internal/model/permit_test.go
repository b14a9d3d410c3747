package model

import (
	"testing"
	"time"
)

func TestDateRange_NormalizeSubstitutesToday(t *testing.T) {
	today := time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return today }

	open := DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	got := open.Normalize(clock)
	if !got.End.Equal(today) {
		t.Errorf("Expected today substituted for the open end, got %v", got.End)
	}
	if !got.Start.Equal(open.Start) {
		t.Errorf("Expected start untouched, got %v", got.Start)
	}

	closed := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := closed.Normalize(clock); !got.End.Equal(closed.End) {
		t.Errorf("Expected a set end untouched, got %v", got.End)
	}
}

func TestDateRange_KeyIsDayGranular(t *testing.T) {
	a := DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 1, 8, 15, 0, 0, time.UTC),
	}
	b := DateRange{
		Start: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if a.Key() != b.Key() {
		t.Errorf("Expected identical keys for same calendar days: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "2024-01-01..2024-02-01" {
		t.Errorf("Unexpected key: %q", a.Key())
	}
}

func TestSortByIssueDateDesc_Stable(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	records := []PermitRecord{
		{IssueDate: day(1), Description: "first"},
		{IssueDate: day(5), Description: "tie-a"},
		{IssueDate: day(5), Description: "tie-b"},
		{IssueDate: day(9), Description: "newest"},
	}
	SortByIssueDateDesc(records)

	if records[0].Description != "newest" || records[3].Description != "first" {
		t.Errorf("Unexpected order: %+v", records)
	}
	// Ties keep their original relative order.
	if records[1].Description != "tie-a" || records[2].Description != "tie-b" {
		t.Errorf("Expected stable tie order, got %q then %q", records[1].Description, records[2].Description)
	}
}
