// Package normalize maps heterogeneous occurrence rows into the
// canonical record shape with confidence-scored date inference.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecoatlas/occpipe/internal/ingest"
	"github.com/ecoatlas/occpipe/internal/model"
)

// Metrics accumulates run-level counts across one normalization pass.
// It is returned by the pass, never ambient state.
type Metrics struct {
	Total       int            `json:"total"`
	ValidCoord  int            `json:"validCoord"`
	InUS        int            `json:"inUS"`
	DateBuckets map[string]int `json:"dateBuckets"`
	Basis       map[string]int `json:"basis"`
	ColumnsSeen map[string]int `json:"columnsSeen"`
}

// NewMetrics returns an empty accumulator.
func NewMetrics() *Metrics {
	return &Metrics{
		DateBuckets: make(map[string]int),
		Basis:       make(map[string]int),
		ColumnsSeen: make(map[string]int),
	}
}

// Normalizer converts source rows into canonical occurrence records.
type Normalizer struct {
	states *StateJoiner
}

// New creates a normalizer joining against the given boundary set.
func New(states *StateJoiner) *Normalizer {
	return &Normalizer{states: states}
}

// NormalizeFile processes every row of one source file, appending valid
// canonical records to out and counting everything into metrics. The
// returned slice is the extended out.
func (n *Normalizer) NormalizeFile(path string, rows []map[string]any, metrics *Metrics, out []model.Occurrence) []model.Occurrence {
	source := ingest.DetectSource(path)
	for i, row := range rows {
		if row == nil {
			continue
		}
		for _, k := range sortedKeys(row) {
			metrics.ColumnsSeen[k]++
		}
		metrics.Total++

		lat, latOK := toFloat(aliasValue(row, "decimalLatitude"))
		lon, lonOK := toFloat(aliasValue(row, "decimalLongitude"))
		if !latOK || !lonOK {
			continue
		}
		metrics.ValidCoord++

		basis := aliasString(row, "basisOfRecord")
		if basis != "" {
			metrics.Basis[basis]++
		}

		y := toIntOrZero(aliasValue(row, "year"))
		m := toIntOrZero(aliasValue(row, "month"))
		d := toIntOrZero(aliasValue(row, "day"))
		iso, _ := aliasValue(row, "eventDate").(string)

		guess, ok := FromISOOrParts(iso, y, m, d)
		if !ok {
			guess = InferFromRecord(row)
		}

		stateCode, inUS := n.states.Join(lat, lon)
		if inUS {
			metrics.InUS++
		}

		rec := model.Occurrence{
			ID:               ingest.StableID(source, aliasString(row, "occurrenceID"), i, path),
			Source:           source,
			ScientificName:   aliasString(row, "scientificName"),
			CommonName:       aliasString(row, "commonName"),
			EventDate:        guess.Date,
			EventYear:        guess.Year,
			EventMonth:       guess.Month,
			EventDay:         guess.Day,
			DateConfidence:   guess.Confidence,
			BasisOfRecord:    basis,
			IsCaptive:        IsLikelyCaptive(row),
			DecimalLatitude:  lat,
			DecimalLongitude: lon,
			Issues:           ParseIssues(aliasValue(row, "issues")),
			StateCode:        stateCode,
			InUS:             inUS,
		}
		if unc, ok := toFloat(aliasValue(row, "coordinateUncertaintyInMeters")); ok {
			rec.CoordinateUncertaintyInMeters = &unc
		}

		metrics.DateBuckets[string(guess.Confidence)]++

		// Schema gate: rows that fail validation after all derivations
		// are discarded, not treated as errors.
		if err := rec.Validate(); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case nil:
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toIntOrZero(v any) int {
	n, ok := toFloat(v)
	if !ok {
		return 0
	}
	return int(n)
}
