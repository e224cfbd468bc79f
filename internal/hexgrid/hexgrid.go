// Package hexgrid wraps the H3 hexagonal grid operations used across
// the pipeline: cell assignment, cell centers, and cell boundaries.
package hexgrid

import (
	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"
)

// CellID returns the H3 cell identifier for a coordinate at the given
// resolution.
func CellID(lat, lon float64, res int) string {
	return h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, res).String()
}

// CellCenter decodes a cell identifier back to its representative
// center coordinate.
func CellCenter(id string) (lat, lon float64) {
	ll := h3.CellToLatLng(h3.Cell(h3.IndexFromString(id)))
	return ll.Lat, ll.Lng
}

// CellRing returns the cell boundary as a closed GeoJSON-order
// (lon, lat) ring.
func CellRing(id string) orb.Ring {
	boundary := h3.CellToBoundary(h3.Cell(h3.IndexFromString(id)))
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, ll := range boundary {
		ring = append(ring, orb.Point{ll.Lng, ll.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}
