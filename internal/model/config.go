package model

import "time"

// Config holds the complete permitdash configuration
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint" json:"endpoint"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Cache    CacheConfig    `yaml:"cache" json:"cache"`
	Map      MapConfig      `yaml:"map" json:"map"`
	UI       UIConfig       `yaml:"ui" json:"ui"`
}

// EndpointConfig describes the remote feature-query layer
type EndpointConfig struct {
	URL       string   `yaml:"url" json:"url"`
	OutFields []string `yaml:"out_fields" json:"out_fields"`
	// OutSR is the requested output spatial reference (4326 = WGS84 lon/lat)
	OutSR    int `yaml:"out_sr" json:"out_sr"`
	PageSize int `yaml:"page_size" json:"page_size"`
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// HTTPConfig controls the fetch transport
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// CacheConfig controls query result memoization
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// MapConfig controls viewport computation
type MapConfig struct {
	MinZoom      float64 `yaml:"min_zoom" json:"min_zoom"`
	MaxZoom      float64 `yaml:"max_zoom" json:"max_zoom"`
	FallbackZoom float64 `yaml:"fallback_zoom" json:"fallback_zoom"`
}

// UIConfig holds date-picker bounds and the initial range width
type UIConfig struct {
	MinDate         string `yaml:"min_date" json:"min_date"`
	DefaultLookback int    `yaml:"default_lookback_days" json:"default_lookback_days"`
}

// DefaultConfig returns the built-in defaults, pointed at Durham NC's
// public building-permits layer.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL: "https://webgis2.durhamnc.gov/server/rest/services/PublicServices/Inspections/MapServer/12/query",
			OutFields: []string{
				"ISSUE_DATE", "DESCRIPTION", "COMMENTS", "TYPE",
				"BLDB_ACTIVITY_1", "BLD_Type", "Occupancy", "PmtStatus",
			},
			OutSR:    4326,
			PageSize: 2000,
			MaxPages: 100,
		},
		HTTP: HTTPConfig{
			Timeout:           2 * time.Minute,
			UserAgent:         "permitdash/0.1 (+https://github.com/openpermits/permitdash)",
			RequestsPerSecond: 4,
			// A full 2000-record page runs to a couple of megabytes.
			MaxBodyBytes: 16 << 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Map: MapConfig{
			MinZoom:      8,
			MaxZoom:      15,
			FallbackZoom: 15,
		},
		UI: UIConfig{
			MinDate:         "2007-01-01",
			DefaultLookback: 90,
		},
	}
}
