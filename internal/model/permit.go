package model

import (
	"sort"
	"time"
)

// PermitRecord represents one issued building permit
type PermitRecord struct {
	IssueDate    time.Time `json:"issue_date"`
	Description  string    `json:"description,omitempty"`
	Comments     string    `json:"comments,omitempty"`
	Type         string    `json:"type,omitempty"`
	Activity     string    `json:"activity,omitempty"`
	BuildingType string    `json:"building_type,omitempty"`
	Occupancy    string    `json:"occupancy,omitempty"`
	PermitStatus string    `json:"permit_status,omitempty"`

	// Lon and Lat are nil when the source feature has no geometry
	Lon *float64 `json:"lon,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
}

// HasCoordinates reports whether both coordinates are present
func (r *PermitRecord) HasCoordinates() bool {
	return r.Lon != nil && r.Lat != nil
}

// SortByIssueDateDesc sorts records newest-first, the default display
// order every downstream consumer relies on. The sort is stable so
// records sharing a timestamp keep their server order.
func SortByIssueDateDesc(records []PermitRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].IssueDate.After(records[j].IssueDate)
	})
}

// DateRange is an inclusive pair of calendar dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Normalize substitutes a zero End with the current date, matching the
// UI behavior where only the lower bound has been picked so far.
func (d DateRange) Normalize(now func() time.Time) DateRange {
	if d.End.IsZero() {
		d.End = now()
	}
	return d
}

// Key returns a canonical day-granularity form of the range, suitable
// as a cache key component.
func (d DateRange) Key() string {
	return d.Start.Format("2006-01-02") + ".." + d.End.Format("2006-01-02")
}

// ViewState describes a map viewport center and zoom level
type ViewState struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom float64 `json:"zoom"`
}
