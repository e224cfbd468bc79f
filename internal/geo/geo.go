// Package geo provides the point-in-range tests used by the boundary
// join and the range enrichment engine.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// FeatureContains reports whether the point lies inside the geometry.
// Only polygonal geometries can contain a point.
func FeatureContains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, child := range g {
			if FeatureContains(child, p) {
				return true
			}
		}
	}
	return false
}

// PadBound expands a bounding box outward by the given distance in meters.
func PadBound(b orb.Bound, meters float64) orb.Bound {
	return orbgeo.BoundPad(b, meters)
}

// DistanceToBoundaryMeters returns the minimum distance in meters from
// the point to the geometry's ring segments, or +Inf for non-polygonal
// geometries.
func DistanceToBoundaryMeters(g orb.Geometry, p orb.Point) float64 {
	min := math.Inf(1)
	switch g := g.(type) {
	case orb.Polygon:
		for _, ring := range g {
			if d := distanceToRingMeters(ring, p); d < min {
				min = d
			}
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			if d := DistanceToBoundaryMeters(poly, p); d < min {
				min = d
			}
		}
	case orb.Collection:
		for _, child := range g {
			if d := DistanceToBoundaryMeters(child, p); d < min {
				min = d
			}
		}
	}
	return min
}

func distanceToRingMeters(ring orb.Ring, p orb.Point) float64 {
	min := math.Inf(1)
	for i := 0; i+1 < len(ring); i++ {
		if d := pointToSegmentMeters(p, ring[i], ring[i+1]); d < min {
			min = d
		}
	}
	return min
}

const metersPerDegree = 111_319.9

// pointToSegmentMeters projects the segment onto a local equirectangular
// plane centered on p and measures the planar point-segment distance.
// Accurate to well under a percent at the 10 km scales used here.
func pointToSegmentMeters(p, a, b orb.Point) float64 {
	cosLat := math.Cos(p[1] * math.Pi / 180)
	ax := (a[0] - p[0]) * cosLat * metersPerDegree
	ay := (a[1] - p[1]) * metersPerDegree
	bx := (b[0] - p[0]) * cosLat * metersPerDegree
	by := (b[1] - p[1]) * metersPerDegree

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}
	t := -(ax*dx + ay*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(ax+t*dx, ay+t*dy)
}
