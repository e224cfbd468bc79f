package enrich

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func rangeFC(geoms ...orb.Geometry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range geoms {
		fc.Append(geojson.NewFeature(g))
	}
	return fc
}

func squarePoly(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func TestSpeciesIndex_Contains(t *testing.T) {
	si := BuildSpeciesIndex(rangeFC(squarePoly(-107, 30, -105, 32.5)), 10_000, nil)

	if !si.Contains(31.5, -106.3) {
		t.Error("Expected interior point to be inside")
	}
	// About 5 km south of the bottom edge: outside the polygon, inside
	// the buffer.
	if !si.Contains(29.955, -106) {
		t.Error("Expected point within 10 km of the boundary to be inside")
	}
	// About 22 km south: beyond the buffer.
	if si.Contains(29.8, -106) {
		t.Error("Expected point beyond the buffer to be outside")
	}
	if si.Contains(45, -93) {
		t.Error("Expected distant point to be outside")
	}
}

func TestSpeciesIndex_UnbufferableFeature(t *testing.T) {
	// A degenerate triangle-less ring cannot carry a boundary distance
	// test but must still answer exact containment.
	degenerate := orb.Polygon{{{-106, 31}, {-105, 31}, {-106, 31}}}
	var logged []string
	si := BuildSpeciesIndex(rangeFC(degenerate, squarePoly(-90, 25, -88, 27)), 10_000, func(format string, args ...any) {
		logged = append(logged, format)
	})

	if len(logged) != 1 {
		t.Errorf("Expected one buffering diagnostic, got %d", len(logged))
	}
	if !si.Contains(26, -89) {
		t.Error("Expected the well-formed feature to still match")
	}
	if si.Contains(30.955, -105.5) {
		t.Error("Degenerate feature must not gain a buffer")
	}
}

func TestSpeciesIndex_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{squarePoly(-107, 30, -105, 32.5), squarePoly(-90, 25, -88, 27)}
	si := BuildSpeciesIndex(rangeFC(mp), 10_000, nil)

	if !si.Contains(31.5, -106.3) || !si.Contains(26, -89) {
		t.Error("Expected both multipolygon members to match")
	}
	if si.Contains(28, -97) {
		t.Error("Expected the gap between members to be outside")
	}
}
