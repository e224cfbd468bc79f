package enrich

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecoatlas/occpipe/internal/model"
)

const atroxRange = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-107, 30], [-105, 30], [-105, 32.5], [-107, 32.5], [-107, 30]]]
      }
    }
  ]
}`

func testEngine(t *testing.T, target []string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "crotalus_atrox.geojson"), []byte(atroxRange), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := model.DefaultConfig()
	cfg.Paths.DistributionsDir = dir
	return New(cfg, target, nil)
}

func rec(sci string, lat, lon float64, inUS bool) model.Occurrence {
	return model.Occurrence{
		ID:               "t:1",
		Source:           "other",
		ScientificName:   sci,
		DateConfidence:   model.DateConfidenceNone,
		DecimalLatitude:  lat,
		DecimalLongitude: lon,
		InUS:             inUS,
		Issues:           []string{},
	}
}

func TestEnrich_InsideRange(t *testing.T) {
	e := testEngine(t, nil)
	out, tallies := e.Enrich([]model.Occurrence{rec("Crotalus atrox", 31.5, -106.3, true)})

	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if out[0].InsideExpertRange == nil || !*out[0].InsideExpertRange {
		t.Error("Expected insideExpertRange true")
	}
	if out[0].H3R6 == "" || out[0].H3R5 == "" || out[0].H3R6 == out[0].H3R5 {
		t.Errorf("Expected distinct hex cells, got %q / %q", out[0].H3R6, out[0].H3R5)
	}
	tally := tallies["crotalus_atrox"]
	if tally == nil || tally.Total != 1 || tally.Inside != 1 {
		t.Errorf("Tally = %+v", tally)
	}
}

func TestEnrich_OutsideRange(t *testing.T) {
	e := testEngine(t, nil)
	out, _ := e.Enrich([]model.Occurrence{rec("Crotalus atrox", 45.0, -93.0, true)})

	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if out[0].InsideExpertRange == nil || *out[0].InsideExpertRange {
		t.Error("Expected insideExpertRange false")
	}
}

func TestEnrich_MissingRangeFile(t *testing.T) {
	e := testEngine(t, nil)
	out, _ := e.Enrich([]model.Occurrence{rec("Agkistrodon piscivorus", 31.5, -106.3, true)})

	if len(out) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(out))
	}
	if out[0].InsideExpertRange == nil || *out[0].InsideExpertRange {
		t.Error("Species without a range resolves to outside, not dropped")
	}
	if out[0].H3R6 == "" {
		t.Error("Hex cells are assigned regardless of range availability")
	}
}

func TestEnrich_GatesDropRecords(t *testing.T) {
	e := testEngine(t, []string{"crotalus_atrox"})
	out, _ := e.Enrich([]model.Occurrence{
		rec("Crotalus atrox", 31.5, -106.3, false),
		rec("Agkistrodon piscivorus", 31.5, -106.3, true),
	})
	if len(out) != 0 {
		t.Fatalf("Expected non-US and off-target records dropped, got %d", len(out))
	}
}

func TestEnrich_CacheProbesRangeFileOnce(t *testing.T) {
	e := testEngine(t, nil)
	e.Enrich([]model.Occurrence{
		rec("Agkistrodon piscivorus", 31.5, -106.3, true),
		rec("Agkistrodon piscivorus", 32.0, -106.0, true),
	})
	idx, seen := e.cache.Get("agkistrodon_piscivorus")
	if !seen || idx != nil {
		t.Errorf("Expected a cached nil index, got (%v, %v)", idx, seen)
	}
}

func TestTopSpecies(t *testing.T) {
	tallies := map[string]*SpeciesTally{
		"crotalus_atrox":    {Total: 10, Inside: 7},
		"crotalus_viridis":  {Total: 10, Inside: 2},
		"micrurus_fulvius":  {Total: 3, Inside: 3},
		"":                  {Total: 99, Inside: 0},
		"sistrurus_miliari": {Total: 0},
	}
	stats := TopSpecies(tallies, 2)

	if len(stats) != 2 {
		t.Fatalf("Expected 2 stats, got %d", len(stats))
	}
	// Ties break alphabetically.
	if stats[0].Sci != "crotalus_atrox" || stats[1].Sci != "crotalus_viridis" {
		t.Errorf("Unexpected order: %v", stats)
	}
	if stats[0].Percent != 70 || stats[1].Percent != 20 {
		t.Errorf("Unexpected percentages: %v", stats)
	}
}
