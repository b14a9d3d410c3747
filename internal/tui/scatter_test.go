package tui

import (
	"testing"

	"github.com/openpermits/permitdash/internal/model"
)

func located(lon, lat float64) model.PermitRecord {
	return model.PermitRecord{Lon: &lon, Lat: &lat}
}

func TestProjectScatter_MapsBoundsToGrid(t *testing.T) {
	records := []model.PermitRecord{
		located(-79.0, 35.0), // southwest corner
		located(-78.0, 36.0), // northeast corner
	}
	points := projectScatter(records, 10, 5)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	// Southwest lands bottom-left, northeast top-right.
	if points[0].x != 0 || points[0].y != 4 {
		t.Errorf("Expected southwest at (0,4), got (%d,%d)", points[0].x, points[0].y)
	}
	if points[1].x != 9 || points[1].y != 0 {
		t.Errorf("Expected northeast at (9,0), got (%d,%d)", points[1].x, points[1].y)
	}
}

func TestProjectScatter_SkipsRecordsWithoutGeometry(t *testing.T) {
	records := []model.PermitRecord{
		{Description: "no geometry"},
		located(-78.9, 36.0),
		located(-78.8, 36.1),
	}
	points := projectScatter(records, 10, 5)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	// Indices still reference positions in the filtered sequence.
	if points[0].index != 1 || points[1].index != 2 {
		t.Errorf("Expected indices 1 and 2, got %d and %d", points[0].index, points[1].index)
	}
}

func TestProjectScatter_NoCoordinates(t *testing.T) {
	records := []model.PermitRecord{{Description: "nothing to plot"}}
	if points := projectScatter(records, 10, 5); points != nil {
		t.Errorf("Expected nil, got %v", points)
	}
}

func TestProjectScatter_SinglePointCenters(t *testing.T) {
	points := projectScatter([]model.PermitRecord{located(-78.9, 36.0)}, 10, 5)
	if len(points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(points))
	}
	// Zero span: the point renders without dividing by zero.
	if points[0].x != 0 || points[0].y != 0 {
		t.Errorf("Expected (0,0) for degenerate bounds, got (%d,%d)", points[0].x, points[0].y)
	}
}

func TestPermitTable_MarkLifecycle(t *testing.T) {
	tbl := newPermitTable()
	tbl.SetRecords([]model.PermitRecord{
		{Description: "a"}, {Description: "b"}, {Description: "c"},
	})

	rows := tbl.ToggleCursorMark()
	if len(rows) != 1 || rows[0] != 0 {
		t.Fatalf("Expected row 0 marked, got %v", rows)
	}

	tbl.ClearSelection()
	if got := tbl.MarkedRows(); len(got) != 0 {
		t.Errorf("Expected no marks after ClearSelection, got %v", got)
	}
}
