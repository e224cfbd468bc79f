package enrich

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/rtree"

	"github.com/ecoatlas/occpipe/internal/geo"
)

// SpeciesIndex holds the two box-indexed tiers of one species' expert
// range: the original geometries and a buffered view of the same
// geometries. Never mutated after construction.
type SpeciesIndex struct {
	original     rtree.RTreeG[orb.Geometry]
	buffered     rtree.RTreeG[orb.Geometry]
	bufferMeters float64
}

// BuildSpeciesIndex constructs both tiers from a range feature
// collection. Features that cannot be buffered (degenerate rings) are
// skipped from the buffered tier only, reported via logf.
func BuildSpeciesIndex(fc *geojson.FeatureCollection, bufferMeters float64, logf func(format string, args ...any)) *SpeciesIndex {
	si := &SpeciesIndex{bufferMeters: bufferMeters}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		si.original.Insert(
			[2]float64{b.Min[0], b.Min[1]},
			[2]float64{b.Max[0], b.Max[1]},
			f.Geometry,
		)
		if !bufferable(f.Geometry) {
			if logf != nil {
				logf("skipping unbufferable range feature %d", i)
			}
			continue
		}
		pb := geo.PadBound(b, bufferMeters)
		si.buffered.Insert(
			[2]float64{pb.Min[0], pb.Min[1]},
			[2]float64{pb.Max[0], pb.Max[1]},
			f.Geometry,
		)
	}
	return si
}

// bufferable rejects geometries whose rings are too degenerate to carry
// a boundary-distance test.
func bufferable(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return false
		}
		for _, ring := range g {
			if len(ring) < 4 {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		if len(g) == 0 {
			return false
		}
		for _, poly := range g {
			if !bufferable(poly) {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether the coordinate is inside the original range
// or within the buffer distance of it.
func (si *SpeciesIndex) Contains(lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	q := [2]float64{lon, lat}

	inside := false
	si.original.Search(q, q, func(_, _ [2]float64, g orb.Geometry) bool {
		if geo.FeatureContains(g, pt) {
			inside = true
			return false
		}
		return true
	})
	if inside {
		return true
	}

	si.buffered.Search(q, q, func(_, _ [2]float64, g orb.Geometry) bool {
		if geo.FeatureContains(g, pt) || geo.DistanceToBoundaryMeters(g, pt) <= si.bufferMeters {
			inside = true
			return false
		}
		return true
	})
	return inside
}
