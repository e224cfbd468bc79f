// Package strict applies the layered acceptance policy and deduplicates
// survivors into the strict sighting set.
package strict

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ecoatlas/occpipe/internal/hexgrid"
	"github.com/ecoatlas/occpipe/internal/model"
)

// majorIssues are the quality-flag tokens that disqualify a record
// outright.
var majorIssues = map[string]bool{
	"COORDINATE_INVALID":                      true,
	"ZERO_COORDINATE":                         true,
	"COUNTRY_MISMATCH":                        true,
	"COUNTRY_COORDINATE_MISMATCH":             true,
	"COORDINATE_OUT_OF_RANGE":                 true,
	"TAXON_MATCH_NONE":                        true,
	"BASIS_OF_RECORD_INVALID":                 true,
	"COORDINATE_UNCERTAINTY_METERS_TOO_LARGE": true,
}

// Drop reasons, in acceptance-pipeline order. The first failing
// predicate determines the tally; missing_basis_kept is informational.
const (
	DropNotInUS      = "drop_not_inUS"
	DropNotTarget    = "drop_not_target"
	DropOutsideRange = "drop_outside_range"
	DropIssues       = "drop_issues"
	DropUncertainty  = "drop_uncertainty"
	DropCaptive      = "drop_captive"
	DropBadBasis     = "drop_bad_basis"
	DropNoDate       = "drop_no_date"
	MissingBasisKept = "missing_basis_kept"
)

// Result is everything one curation pass produces.
type Result struct {
	Rows      []model.StrictRow                // deduplicated canonical rows, first-seen order
	Sightings map[string][]model.SightingPoint // per-species renderable points
	Species   []string                         // species slugs in first-seen order
	Index     []model.SpeciesCount             // per-species totals, count-descending
	Audit     map[string]int                   // per-drop-reason tallies
}

// Curator converts enriched records into the strict sighting set.
type Curator struct {
	cfg          model.StrictConfig
	fineRes      int
	coarseRes    int
	target       map[string]bool
	allowedBasis map[string]bool
}

// New creates a curator. target is the optional species allow-list.
func New(cfg *model.Config, target []string) *Curator {
	targetSet := make(map[string]bool, len(target))
	for _, slug := range target {
		targetSet[slug] = true
	}
	allowed := make(map[string]bool, len(cfg.Strict.AllowedBasis))
	for _, b := range cfg.Strict.AllowedBasis {
		allowed[normalizeBasis(b)] = true
	}
	return &Curator{
		cfg:          cfg.Strict,
		fineRes:      cfg.Hex.FineResolution,
		coarseRes:    cfg.Hex.CoarseResolution,
		target:       targetSet,
		allowedBasis: allowed,
	}
}

var basisFoldRe = regexp.MustCompile(`[^a-z]`)

func normalizeBasis(s string) string {
	return basisFoldRe.ReplaceAllString(strings.ToLower(s), "")
}

func hasMajorIssues(issues []string) bool {
	for _, it := range issues {
		if majorIssues[strings.TrimSpace(it)] {
			return true
		}
	}
	return false
}

// passDate applies the date-confidence floor and builds the dedup date
// key: day precision for high/full tiers, a synthetic mid-month day for
// the month tier, a synthetic mid-year day for the year tier. The year
// floor applies in every qualifying case.
func (c *Curator) passDate(rec *model.Occurrence) (string, model.TimestampPrecision, bool) {
	y := rec.EventYear
	switch rec.DateConfidence {
	case model.DateConfidenceHigh, model.DateConfidenceTextFull:
		if y >= c.cfg.MinYear {
			mm, dd := rec.EventMonth, rec.EventDay
			if mm == 0 {
				mm = 1
			}
			if dd == 0 {
				dd = 1
			}
			return fmt.Sprintf("%04d-%02d-%02d", y, mm, dd), model.TimestampHigh, true
		}
	case model.DateConfidenceTextMonth:
		if c.cfg.KeepMonthApprox && y >= c.cfg.MinYear && rec.EventMonth != 0 {
			return fmt.Sprintf("%04d-%02d-15", y, rec.EventMonth), model.TimestampApproxMonth, true
		}
	case model.DateConfidenceTextYear:
		if y >= c.cfg.MinYear {
			return fmt.Sprintf("%04d-07-01", y), model.TimestampApproxYear, true
		}
	}
	return "", "", false
}

type aggregate struct {
	count int
	row   model.StrictRow
}

// Curate runs one sequential pass over the enriched records.
func (c *Curator) Curate(records []model.Occurrence) *Result {
	dedup := make(map[string]*aggregate)
	var keyOrder []string
	audit := make(map[string]int)

	for i := range records {
		rec := &records[i]

		if !rec.InUS {
			audit[DropNotInUS]++
			continue
		}
		sci := model.SlugifySci(rec.ScientificName)
		if len(c.target) > 0 && !c.target[sci] {
			audit[DropNotTarget]++
			continue
		}
		if rec.InsideExpertRange == nil || !*rec.InsideExpertRange {
			audit[DropOutsideRange]++
			continue
		}
		if hasMajorIssues(rec.Issues) {
			audit[DropIssues]++
			continue
		}
		if rec.CoordinateUncertaintyInMeters != nil && *rec.CoordinateUncertaintyInMeters > c.cfg.MaxUncertaintyMeters {
			audit[DropUncertainty]++
			continue
		}
		if rec.IsCaptive {
			audit[DropCaptive]++
			continue
		}
		basis := rec.BasisOfRecord
		if basis == "" {
			basis = "Observation"
			audit[MissingBasisKept]++
		}
		if !c.allowedBasis[normalizeBasis(basis)] {
			audit[DropBadBasis]++
			continue
		}
		dateKey, tsMeta, ok := c.passDate(rec)
		if !ok {
			audit[DropNoDate]++
			continue
		}

		lat, lon := rec.DecimalLatitude, rec.DecimalLongitude
		if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
			continue
		}
		h3r6 := hexgrid.CellID(lat, lon, c.fineRes)
		h3r5 := hexgrid.CellID(lat, lon, c.coarseRes)

		key := sci + "|" + dateKey + "|" + h3r6
		agg := dedup[key]
		if agg == nil {
			// First record for the key becomes the canonical row;
			// later arrivals only increment the count.
			agg = &aggregate{row: model.StrictRow{
				Sci:     sci,
				DateKey: dateKey,
				H3R6:    h3r6,
				H3R5:    h3r5,
				TsMeta:  tsMeta,
			}}
			dedup[key] = agg
			keyOrder = append(keyOrder, key)
		}
		agg.count++
	}

	res := &Result{
		Sightings: make(map[string][]model.SightingPoint),
		Audit:     audit,
	}
	totals := make(map[string]int)
	for _, key := range keyOrder {
		agg := dedup[key]
		res.Rows = append(res.Rows, agg.row)

		lat, lon := hexgrid.CellCenter(agg.row.H3R6)
		pt := model.SightingPoint{Lat: lat, Lon: lon, TS: dateKeyToMillis(agg.row.DateKey)}
		if agg.count > 1 {
			pt.Count = agg.count
		}
		sci := agg.row.Sci
		if _, seen := res.Sightings[sci]; !seen {
			res.Species = append(res.Species, sci)
		}
		res.Sightings[sci] = append(res.Sightings[sci], pt)
		totals[sci] += agg.count
	}

	res.Index = make([]model.SpeciesCount, 0, len(res.Species))
	for _, sci := range res.Species {
		res.Index = append(res.Index, model.SpeciesCount{Sci: sci, Count: totals[sci]})
	}
	sort.SliceStable(res.Index, func(i, j int) bool {
		return res.Index[i].Count > res.Index[j].Count
	})
	return res
}

func dateKeyToMillis(dateKey string) int64 {
	dt, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return 0
	}
	return dt.UTC().UnixMilli()
}
