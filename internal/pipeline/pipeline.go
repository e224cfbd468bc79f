// Package pipeline orchestrates the four batch stages: normalize,
// enrich, strict curation, and hex density aggregation. Each stage
// reads one persisted dataset and writes another; nothing survives a
// run except the output files.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ecoatlas/occpipe/internal/enrich"
	"github.com/ecoatlas/occpipe/internal/heat"
	"github.com/ecoatlas/occpipe/internal/ingest"
	"github.com/ecoatlas/occpipe/internal/model"
	"github.com/ecoatlas/occpipe/internal/normalize"
	"github.com/ecoatlas/occpipe/internal/strict"
)

// Stage output file names under OutRoot and WebData.
const (
	NormalizedFile     = "occurrences_normalized.ndjson"
	EnrichedFile       = "occurrences_enriched.ndjson"
	StrictFile         = "recent_strict.ndjson"
	ColumnsSeenFile    = "occurrence_columns_seen.json"
	OverallMetricsFile = "occurrence_metrics_overall.json"
	SightingsDir       = "sightings"
	SightingsIndexFile = "sightings_index.json"
	HeatFile           = "heat_all_r6.geojson"
)

// Pipeline wires the stages from one configuration.
type Pipeline struct {
	cfg *model.Config
}

// New creates a pipeline for the given configuration.
func New(cfg *model.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// Normalize runs the schema normalization stage: every supported file
// in the occurrence directory becomes one stream of canonical records,
// plus the column and metrics diagnostics.
func (p *Pipeline) Normalize() error {
	if p.cfg.Paths.OccurrenceDir == "" {
		fmt.Println("No occurrence directory configured; skipping.")
		return nil
	}

	states := normalize.LoadStates(p.cfg.Paths.StatesFile)
	files, err := ingest.EnumerateOccurrenceFiles(p.cfg.Paths.OccurrenceDir)
	if err != nil {
		return err
	}

	n := normalize.New(states)
	metrics := normalize.NewMetrics()
	var out []model.Occurrence
	for _, file := range files {
		rows, err := ingest.ReadRows(file)
		if err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
		p.logf("⚙️  %s: %d rows", filepath.Base(file), len(rows))
		out = n.NormalizeFile(file, rows, metrics, out)
	}

	if err := WriteNDJSON(filepath.Join(p.cfg.Paths.OutRoot, NormalizedFile), out); err != nil {
		return err
	}
	if err := WriteJSON(filepath.Join(p.cfg.Paths.WebData, ColumnsSeenFile), metrics.ColumnsSeen, true); err != nil {
		return err
	}
	overall := struct {
		Total       int            `json:"total"`
		ValidCoord  int            `json:"validCoord"`
		InUS        int            `json:"inUS"`
		DateBuckets map[string]int `json:"dateBuckets"`
		Basis       map[string]int `json:"basis"`
	}{metrics.Total, metrics.ValidCoord, metrics.InUS, metrics.DateBuckets, metrics.Basis}
	if err := WriteJSON(filepath.Join(p.cfg.Paths.WebData, OverallMetricsFile), overall, true); err != nil {
		return err
	}

	fmt.Printf("Normalized occurrences: %d rows\n", len(out))
	return nil
}

// Enrich runs the range enrichment stage over the normalized records.
func (p *Pipeline) Enrich() error {
	inPath := filepath.Join(p.cfg.Paths.OutRoot, NormalizedFile)
	records, err := ReadOccurrenceNDJSON(inPath)
	if err != nil {
		fmt.Printf("No normalized occurrences found at %s\n", inPath)
		return nil
	}

	target := ReadTargetSpecies(p.cfg.Paths.TargetSpeciesFile)
	engine := enrich.New(p.cfg, target, p.logf)
	out, tallies := engine.Enrich(records)

	if err := WriteNDJSON(filepath.Join(p.cfg.Paths.OutRoot, EnrichedFile), out); err != nil {
		return err
	}

	for _, s := range enrich.TopSpecies(tallies, 10) {
		fmt.Printf("%s: insideExpertRange %d%% of %d\n", s.Sci, s.Percent, s.Total)
	}
	fmt.Printf("Enriched occurrences: %d rows\n", len(out))
	return nil
}

// Strict runs the curation stage: acceptance policy, dedup, sightings
// and index emission, and the audit tally.
func (p *Pipeline) Strict() error {
	inPath := filepath.Join(p.cfg.Paths.OutRoot, EnrichedFile)
	records, err := ReadOccurrenceNDJSON(inPath)
	if err != nil {
		fmt.Printf("No enriched occurrences found at %s\n", inPath)
		return nil
	}

	target := ReadTargetSpecies(p.cfg.Paths.TargetSpeciesFile)
	curator := strict.New(p.cfg, target)
	res := curator.Curate(records)

	if err := WriteNDJSON(filepath.Join(p.cfg.Paths.OutRoot, StrictFile), res.Rows); err != nil {
		return err
	}

	sightingsDir := filepath.Join(p.cfg.Paths.WebData, SightingsDir)
	if err := EnsureDir(sightingsDir); err != nil {
		return err
	}
	for _, sci := range res.Species {
		path := filepath.Join(sightingsDir, sci+".json")
		if err := WriteJSON(path, res.Sightings[sci], false); err != nil {
			return err
		}
	}
	if err := WriteJSON(filepath.Join(p.cfg.Paths.WebData, SightingsIndexFile), res.Index, false); err != nil {
		return err
	}

	fmt.Printf("Strict sightings written for %d species\n", len(res.Species))
	printAudit(res.Audit)
	return nil
}

func printAudit(audit map[string]int) {
	reasons := make([]string, 0, len(audit))
	for r := range audit {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	fmt.Print("Strict audit:")
	for _, r := range reasons {
		fmt.Printf(" %s=%d", r, audit[r])
	}
	fmt.Println()
}

// Heat runs the hex density aggregation stage over the enriched records.
func (p *Pipeline) Heat() error {
	inPath := filepath.Join(p.cfg.Paths.OutRoot, EnrichedFile)
	records, err := ReadOccurrenceNDJSON(inPath)
	if err != nil {
		fmt.Printf("No enriched occurrences found at %s\n", inPath)
		return nil
	}

	fc, stats := heat.Aggregate(records)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("heat: marshal feature collection: %w", err)
	}
	outPath := filepath.Join(p.cfg.Paths.WebData, HeatFile)
	if err := EnsureDir(filepath.Dir(outPath)); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Heat-all: total %d kept %d unique hexes %d\n", stats.Total, stats.Kept, stats.UniqueHexes)
	return nil
}

// RunAll executes the four stages in dependency order.
func (p *Pipeline) RunAll() error {
	type stage struct {
		name string
		run  func() error
	}
	stages := []stage{
		{"normalize", p.Normalize},
		{"enrich", p.Enrich},
		{"strict", p.Strict},
		{"heat", p.Heat},
	}
	for _, s := range stages {
		fmt.Fprintf(os.Stderr, "⚙️  Stage: %s\n", s.name)
		if err := s.run(); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s failed\n", s.name)
			return fmt.Errorf("%s: %w", s.name, err)
		}
		fmt.Fprintf(os.Stderr, "✓ %s complete\n", s.name)
	}
	return nil
}
