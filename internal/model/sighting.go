package model

// TimestampPrecision records how the strict date key was derived, so
// consumers can render approximate timestamps as imprecise rather than
// exact observation dates.
type TimestampPrecision string

const (
	TimestampHigh        TimestampPrecision = "high"         // day-precision date
	TimestampApproxMonth TimestampPrecision = "approx_month" // synthetic mid-month day (15th)
	TimestampApproxYear  TimestampPrecision = "approx_year"  // synthetic mid-year day (July 1)
)

// StrictRow is one deduplicated sighting aggregate: the canonical
// representative of a (species, date key, resolution-6 hex cell) group.
type StrictRow struct {
	Sci     string             `json:"sci"`
	DateKey string             `json:"dateKey"` // YYYY-MM-DD
	H3R6    string             `json:"h3_r6"`
	H3R5    string             `json:"h3_r5"`
	TsMeta  TimestampPrecision `json:"tsMeta"`
}

// SightingPoint is one renderable sighting for a species, decoded from
// the hex cell center. Count is omitted when it equals 1.
type SightingPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	TS    int64   `json:"ts"` // epoch milliseconds, UTC midnight of the date key
	Count int     `json:"count,omitempty"`
}

// SpeciesCount is one sightings-index entry.
type SpeciesCount struct {
	Sci   string `json:"sci"`
	Count int    `json:"count"`
}
