package normalize

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/ecoatlas/occpipe/internal/geo"
)

// US bounding box used when the polygon join misses: a coarse safety
// net covering the lower 48 plus Alaska and Hawaii.
const (
	usBBoxMinLat = 18
	usBBoxMaxLat = 72
	usBBoxMinLon = -179.5
	usBBoxMaxLon = -66
)

type stateFeature struct {
	geom orb.Geometry
	code string
}

// StateJoiner answers point-in-state queries against the reference
// political boundary collection.
type StateJoiner struct {
	features []stateFeature
}

// LoadStates reads the boundary feature collection. A missing or
// unreadable file yields an empty joiner: the bbox fallback still works.
func LoadStates(path string) *StateJoiner {
	data, err := os.ReadFile(path)
	if err != nil {
		return &StateJoiner{}
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return &StateJoiner{}
	}
	j := &StateJoiner{}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		j.features = append(j.features, stateFeature{
			geom: f.Geometry,
			code: stateCode(f.Properties),
		})
	}
	return j
}

func stateCode(props geojson.Properties) string {
	for _, key := range []string{"state_code", "STATE", "STUSPS"} {
		if v, ok := props[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Join resolves a coordinate to US membership and a state code. A
// polygon hit wins; otherwise the coarse US bbox decides membership with
// no state code.
func (j *StateJoiner) Join(lat, lon float64) (string, bool) {
	pt := orb.Point{lon, lat}
	for _, f := range j.features {
		if geo.FeatureContains(f.geom, pt) {
			return f.code, true
		}
	}
	if lat >= usBBoxMinLat && lat <= usBBoxMaxLat && lon >= usBBoxMinLon && lon <= usBBoxMaxLon {
		return "", true
	}
	return "", false
}
