// Package heat bins enriched occurrence records into a hex density
// surface for the always-on map backdrop.
package heat

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ecoatlas/occpipe/internal/hexgrid"
	"github.com/ecoatlas/occpipe/internal/model"
)

// Stats summarizes one aggregation pass.
type Stats struct {
	Total       int // records considered
	Kept        int // records with inUS and a resolution-6 cell
	UniqueHexes int
}

// Aggregate counts inUS records per resolution-6 hex cell and
// materializes each surviving cell as a boundary polygon feature with a
// count property. No deduplication beyond summation by cell.
func Aggregate(records []model.Occurrence) (*geojson.FeatureCollection, Stats) {
	counts := make(map[string]int)
	var order []string
	stats := Stats{Total: len(records)}

	for i := range records {
		rec := &records[i]
		if !rec.InUS || rec.H3R6 == "" {
			continue
		}
		stats.Kept++
		if _, seen := counts[rec.H3R6]; !seen {
			order = append(order, rec.H3R6)
		}
		counts[rec.H3R6]++
	}
	stats.UniqueHexes = len(counts)

	fc := geojson.NewFeatureCollection()
	for _, h := range order {
		f := geojson.NewFeature(orb.Polygon{hexgrid.CellRing(h)})
		f.Properties = geojson.Properties{
			"h3":    h,
			"count": counts[h],
		}
		fc.Append(f)
	}
	return fc, stats
}
