package model

import "time"

// Record sources.
const (
	SourceGoogle = "GOOGLE"
	SourceINEGI  = "INEGI"
)

// Zone is one circular search area. Curated zones carry a semantic name
// ("Centro Histórico"), generated grid zones are named Grid-<n>.
type Zone struct {
	Lat          float64
	Lng          float64
	Name         string
	RadiusMeters int
}

// BusinessRecord is the unified row schema shared by both providers.
// Rating and UserRatingsTotal are only meaningful when the matching Has*
// flag is set; INEGI never provides them and they render as "N/A".
type BusinessRecord struct {
	Source             string
	PrimaryType        string
	Name               string
	Types              string // raw provider categories, pipe-joined
	Rating             float64
	HasRating          bool
	UserRatingsTotal   int
	HasRatingsTotal    bool
	PriceLevel         string
	PriceRangeMin      string
	PriceRangeMax      string
	Lat                float64
	Lng                float64
	PhotoURI           string
	OpeningHours       string
	Website            string
	PhoneNational      string
	PhoneInternational string
	GoogleMapsURI      string
	FormattedAddress   string
	BusinessCategory   string
	ExternalID         string
}

// ScanParams holds the per-run knobs resolved from config and flags.
type ScanParams struct {
	Source      string // google | inegi | merged
	DatasetName string
	OutputDir   string
	ZoneDelay   time.Duration
	BatchSize   int
	TUI         bool
}
