// Package enrich joins canonical occurrence records against per-species
// expert ranges and annotates hex grid cells.
package enrich

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/ecoatlas/occpipe/internal/hexgrid"
	"github.com/ecoatlas/occpipe/internal/model"
)

// SpeciesTally counts records seen and records found inside range for
// one species, for operator-facing sanity reporting only.
type SpeciesTally struct {
	Total  int
	Inside int
}

// SpeciesStat is one line of the sanity report.
type SpeciesStat struct {
	Sci     string
	Total   int
	Percent int
}

// Engine enriches records with range membership and hex cells. The
// species index cache lives for exactly one engine, i.e. one run.
type Engine struct {
	distDir      string
	bufferMeters float64
	fineRes      int
	coarseRes    int
	target       map[string]bool
	cache        *IndexCache
	logf         func(format string, args ...any)
}

// New creates an engine. target is the optional allow-list of species
// slugs; empty means all species pass. logf receives per-feature
// buffering diagnostics and may be nil.
func New(cfg *model.Config, target []string, logf func(format string, args ...any)) *Engine {
	targetSet := make(map[string]bool, len(target))
	for _, slug := range target {
		targetSet[slug] = true
	}
	return &Engine{
		distDir:      cfg.Paths.DistributionsDir,
		bufferMeters: cfg.Enrich.BufferMeters,
		fineRes:      cfg.Hex.FineResolution,
		coarseRes:    cfg.Hex.CoarseResolution,
		target:       targetSet,
		cache:        NewIndexCache(),
		logf:         logf,
	}
}

// speciesIndex is the read-through lookup: first access loads and
// indexes the species' range file, later accesses hit the cache. A
// species without a readable range file resolves to nil.
func (e *Engine) speciesIndex(slug string) *SpeciesIndex {
	if idx, seen := e.cache.Get(slug); seen {
		return idx
	}
	var idx *SpeciesIndex
	data, err := os.ReadFile(filepath.Join(e.distDir, slug+".geojson"))
	if err == nil {
		if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
			var logf func(format string, args ...any)
			if e.logf != nil {
				logf = func(format string, args ...any) {
					e.logf("%s: %s", slug, fmt.Sprintf(format, args...))
				}
			}
			idx = BuildSpeciesIndex(fc, e.bufferMeters, logf)
		}
	}
	e.cache.Set(slug, idx)
	return idx
}

// Enrich runs one sequential pass: records lacking US membership or
// finite coordinates, or excluded by the allow-list, are dropped; the
// rest gain insideExpertRange and both hex cells.
func (e *Engine) Enrich(records []model.Occurrence) ([]model.Occurrence, map[string]*SpeciesTally) {
	out := make([]model.Occurrence, 0, len(records))
	tallies := make(map[string]*SpeciesTally)

	for _, rec := range records {
		if !rec.InUS {
			continue
		}
		lat, lon := rec.DecimalLatitude, rec.DecimalLongitude
		if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
			continue
		}
		slug := model.SlugifySci(rec.ScientificName)
		if len(e.target) > 0 && !e.target[slug] {
			continue
		}

		inside := false
		if slug != "" {
			if idx := e.speciesIndex(slug); idx != nil {
				inside = idx.Contains(lat, lon)
			}
		}

		t := tallies[slug]
		if t == nil {
			t = &SpeciesTally{}
			tallies[slug] = t
		}
		t.Total++
		if inside {
			t.Inside++
		}

		rec.InsideExpertRange = &inside
		rec.H3R6 = hexgrid.CellID(lat, lon, e.fineRes)
		rec.H3R5 = hexgrid.CellID(lat, lon, e.coarseRes)
		out = append(out, rec)
	}
	return out, tallies
}

// TopSpecies returns the n highest-volume species with their inside-range
// hit percentage, for the post-pass sanity log.
func TopSpecies(tallies map[string]*SpeciesTally, n int) []SpeciesStat {
	stats := make([]SpeciesStat, 0, len(tallies))
	for slug, t := range tallies {
		if slug == "" || t.Total == 0 {
			continue
		}
		stats = append(stats, SpeciesStat{
			Sci:     slug,
			Total:   t.Total,
			Percent: int(math.Round(float64(t.Inside) / float64(t.Total) * 100)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Sci < stats[j].Sci
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}
