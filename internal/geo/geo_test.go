package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func squarePoly(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func TestFeatureContains(t *testing.T) {
	poly := squarePoly(-107, 30, -105, 32.5)

	if !FeatureContains(poly, orb.Point{-106.3, 31.5}) {
		t.Error("Expected interior point to be contained")
	}
	if FeatureContains(poly, orb.Point{-100, 31.5}) {
		t.Error("Expected exterior point to be outside")
	}

	multi := orb.MultiPolygon{poly, squarePoly(-90, 25, -88, 27)}
	if !FeatureContains(multi, orb.Point{-89, 26}) {
		t.Error("Expected second multipolygon member to contain the point")
	}

	coll := orb.Collection{orb.LineString{{0, 0}, {1, 1}}, poly}
	if !FeatureContains(coll, orb.Point{-106.3, 31.5}) {
		t.Error("Expected collection to recurse into its polygon")
	}
	if FeatureContains(orb.LineString{{0, 0}, {1, 1}}, orb.Point{0.5, 0.5}) {
		t.Error("A line cannot contain a point")
	}
}

func TestPadBound(t *testing.T) {
	b := squarePoly(-107, 30, -105, 32.5).Bound()
	padded := PadBound(b, 10_000)
	if padded.Min[0] >= b.Min[0] || padded.Max[0] <= b.Max[0] {
		t.Error("Expected longitude span to grow")
	}
	if padded.Min[1] >= b.Min[1] || padded.Max[1] <= b.Max[1] {
		t.Error("Expected latitude span to grow")
	}
	// 10 km is roughly 0.09 degrees of latitude.
	growth := b.Min[1] - padded.Min[1]
	if growth < 0.05 || growth > 0.15 {
		t.Errorf("Latitude pad of %f degrees is implausible for 10 km", growth)
	}
}

func TestDistanceToBoundaryMeters(t *testing.T) {
	poly := squarePoly(-107, 30, -105, 32.5)

	// 0.045 degrees of latitude south of the bottom edge is about 5 km.
	d := DistanceToBoundaryMeters(poly, orb.Point{-106, 29.955})
	if d < 4_500 || d > 5_500 {
		t.Errorf("Expected roughly 5 km, got %f m", d)
	}

	// 0.2 degrees is about 22 km.
	d = DistanceToBoundaryMeters(poly, orb.Point{-106, 29.8})
	if d < 20_000 || d > 24_000 {
		t.Errorf("Expected roughly 22 km, got %f m", d)
	}

	if !math.IsInf(DistanceToBoundaryMeters(orb.LineString{{0, 0}, {1, 1}}, orb.Point{0, 0}), 1) {
		t.Error("Expected +Inf for non-polygonal geometry")
	}
}

func TestPointToSegmentMeters_Endpoints(t *testing.T) {
	a := orb.Point{-106, 30}
	b := orb.Point{-106, 31}

	// Point past the south endpoint clamps to the endpoint.
	d := pointToSegmentMeters(orb.Point{-106, 29.955}, a, b)
	if d < 4_500 || d > 5_500 {
		t.Errorf("Expected roughly 5 km to the endpoint, got %f m", d)
	}

	// Degenerate segment behaves as a point.
	d = pointToSegmentMeters(orb.Point{-106, 29.955}, a, a)
	if d < 4_500 || d > 5_500 {
		t.Errorf("Expected roughly 5 km to the degenerate segment, got %f m", d)
	}
}
