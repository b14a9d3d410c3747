package selection

import (
	"math"

	"github.com/openpermits/permitdash/internal/model"
)

// Viewport computes the map center and zoom for a focus set. Records
// missing either coordinate are ignored. With no usable coordinates,
// or when every point coincides, the fallback zoom applies so a
// single-permit focus still renders instead of dividing by zero.
func Viewport(records []model.PermitRecord, cfg model.MapConfig) model.ViewState {
	var (
		count          int
		sumLon, sumLat float64
		minLon, maxLon float64
		minLat, maxLat float64
	)

	for _, rec := range records {
		if !rec.HasCoordinates() {
			continue
		}
		lon, lat := *rec.Lon, *rec.Lat
		if count == 0 {
			minLon, maxLon = lon, lon
			minLat, maxLat = lat, lat
		} else {
			minLon = math.Min(minLon, lon)
			maxLon = math.Max(maxLon, lon)
			minLat = math.Min(minLat, lat)
			maxLat = math.Max(maxLat, lat)
		}
		sumLon += lon
		sumLat += lat
		count++
	}

	if count == 0 {
		return model.ViewState{Zoom: cfg.FallbackZoom}
	}

	view := model.ViewState{
		Lon: sumLon / float64(count),
		Lat: sumLat / float64(count),
	}

	angle := math.Max(maxLon-minLon, maxLat-minLat)
	if angle <= 0 {
		view.Zoom = cfg.FallbackZoom
		return view
	}

	zoom := math.Log2(360 / angle)
	view.Zoom = math.Min(math.Max(zoom, cfg.MinZoom), cfg.MaxZoom)
	return view
}
