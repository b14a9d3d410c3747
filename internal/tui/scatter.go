package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openpermits/permitdash/internal/model"
)

// scatterPoint is one plotted permit: a grid cell plus the index of
// the record in the filtered sequence.
type scatterPoint struct {
	x, y  int
	index int
}

// projectScatter maps every record with coordinates onto a w×h cell
// grid spanning the records' bounding box. Latitude grows upward, so
// rows invert. Points keep filtered-sequence order, which makes
// cursor cycling deterministic.
func projectScatter(records []model.PermitRecord, w, h int) []scatterPoint {
	if w < 2 || h < 2 {
		return nil
	}

	first := true
	var minLon, maxLon, minLat, maxLat float64
	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		if first {
			minLon, maxLon = *rec.Lon, *rec.Lon
			minLat, maxLat = *rec.Lat, *rec.Lat
			first = false
			continue
		}
		minLon = min(minLon, *rec.Lon)
		maxLon = max(maxLon, *rec.Lon)
		minLat = min(minLat, *rec.Lat)
		maxLat = max(maxLat, *rec.Lat)
	}
	if first {
		return nil
	}

	lonSpan := maxLon - minLon
	latSpan := maxLat - minLat

	var points []scatterPoint
	for i, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		x, y := 0, 0
		if lonSpan > 0 {
			x = int((*rec.Lon - minLon) / lonSpan * float64(w-1))
		}
		if latSpan > 0 {
			y = (h - 1) - int((*rec.Lat-minLat)/latSpan*float64(h-1))
		}
		points = append(points, scatterPoint{x: x, y: y, index: i})
	}
	return points
}

var (
	pointStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true).Bold(true)
	emptyMapStyle = lipgloss.NewStyle().Faint(true)
)

// renderScatter draws the plotted points on a w×h rune grid. The
// point under the cursor renders reversed; points in the focused
// index set render bright.
func renderScatter(points []scatterPoint, focused map[int]bool, cursor int, w, h int) string {
	if len(points) == 0 {
		return emptyMapStyle.Render("no mappable permits")
	}

	type cell struct {
		focused bool
		cursor  bool
		filled  bool
	}
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
	}
	for i, p := range points {
		if p.y < 0 || p.y >= h || p.x < 0 || p.x >= w {
			continue
		}
		c := &grid[p.y][p.x]
		c.filled = true
		c.focused = c.focused || focused[p.index]
		c.cursor = c.cursor || i == cursor
	}

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := grid[y][x]
			switch {
			case c.cursor:
				b.WriteString(cursorStyle.Render("•"))
			case c.focused:
				b.WriteString(focusedStyle.Render("●"))
			case c.filled:
				b.WriteString(pointStyle.Render("•"))
			default:
				b.WriteByte(' ')
			}
		}
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
