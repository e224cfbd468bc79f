package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// DateConfidence is an ordered trust tier for how a record's event date
// was obtained. Explicit dates rank above text-inferred ones.
type DateConfidence string

const (
	DateConfidenceHigh      DateConfidence = "high"                // explicit ISO date or year/month/day triple
	DateConfidenceTextFull  DateConfidence = "text_inferred_full"  // full date recovered from a text field
	DateConfidenceTextMonth DateConfidence = "text_inferred_month" // month+year only
	DateConfidenceTextYear  DateConfidence = "text_inferred_year"  // bare year only
	DateConfidenceNone      DateConfidence = "none"                // no usable date found
)

// Occurrence is the canonical record produced by the normalizer and
// extended by the enrichment stage. JSON field names are the NDJSON wire
// format shared by all stages.
type Occurrence struct {
	ID             string         `json:"id"`
	Source         string         `json:"source"`
	ScientificName string         `json:"scientificName"`
	CommonName     string         `json:"commonName,omitempty"`
	EventDate      string         `json:"eventDate,omitempty"` // YYYY-MM-DD
	EventYear      int            `json:"eventYear,omitempty"`
	EventMonth     int            `json:"eventMonth,omitempty"`
	EventDay       int            `json:"eventDay,omitempty"`
	DateConfidence DateConfidence `json:"dateConfidence"`
	BasisOfRecord  string         `json:"basisOfRecord,omitempty"`
	IsCaptive      bool           `json:"isCaptive"`

	DecimalLatitude               float64  `json:"decimalLatitude"`
	DecimalLongitude              float64  `json:"decimalLongitude"`
	CoordinateUncertaintyInMeters *float64 `json:"coordinateUncertaintyInMeters,omitempty"`

	Issues    []string `json:"issues"`
	StateCode string   `json:"stateCode,omitempty"`
	InUS      bool     `json:"inUS"`

	// Enrichment extensions, absent on freshly normalized records.
	InsideExpertRange *bool  `json:"insideExpertRange,omitempty"`
	H3R6              string `json:"h3_r6,omitempty"`
	H3R5              string `json:"h3_r5,omitempty"`
}

// Validate checks the canonical-record invariants. Records failing
// validation are dropped by the normalizer, not emitted.
func (o *Occurrence) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("occurrence: missing id")
	}
	if o.Source == "" {
		return fmt.Errorf("occurrence: missing source")
	}
	if math.IsNaN(o.DecimalLatitude) || o.DecimalLatitude < -90 || o.DecimalLatitude > 90 {
		return fmt.Errorf("occurrence %s: latitude %v out of range", o.ID, o.DecimalLatitude)
	}
	if math.IsNaN(o.DecimalLongitude) || o.DecimalLongitude < -180 || o.DecimalLongitude > 180 {
		return fmt.Errorf("occurrence %s: longitude %v out of range", o.ID, o.DecimalLongitude)
	}
	switch o.DateConfidence {
	case DateConfidenceHigh, DateConfidenceTextFull, DateConfidenceTextMonth, DateConfidenceTextYear:
	case DateConfidenceNone:
		if o.EventDate != "" || o.EventYear != 0 || o.EventMonth != 0 || o.EventDay != 0 {
			return fmt.Errorf("occurrence %s: date fields set with confidence none", o.ID)
		}
	default:
		return fmt.Errorf("occurrence %s: unknown date confidence %q", o.ID, o.DateConfidence)
	}
	return nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifySci converts a scientific name to the slug used for range file
// names and dedup keys, e.g. "Crotalus atrox" -> "crotalus_atrox".
func SlugifySci(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(s, "_")
}
