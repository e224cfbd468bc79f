package cli

import (
	"github.com/spf13/cobra"

	"github.com/ecoatlas/occpipe/internal/model"
	"github.com/ecoatlas/occpipe/internal/pipeline"
)

var (
	occurrenceDir    string
	distributionsDir string
	statesFile       string
	targetSpecies    string
	outRoot          string
	webData          string
	bufferKm         float64
	minYear          int
	maxUncertainty   float64
	keepMonthApprox  bool
)

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize raw occurrence files into canonical records",
	Long: `Normalize maps arbitrary input schemas to the canonical occurrence
record: field aliasing, confidence-scored date inference, captive
detection, and the US state boundary join.

Reads every supported file in the occurrence directory (CSV/TSV,
NDJSON, GeoJSON, each optionally gzipped, or an xlsx workbook) and
writes occurrences_normalized.ndjson plus diagnostics.

Example:
  occpipe normalize
  occpipe normalize --occurrence-dir vendor/occurrences -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stageConfig(cmd)
		if err != nil {
			return err
		}
		return pipeline.New(cfg).Normalize()
	},
}

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Flag range membership and assign hex cells",
	Long: `Enrich joins each normalized record against the species' expert range
(original geometry plus a buffered margin, box-indexed per species and
cached for the run) and annotates resolution-6 and resolution-5 hex
cells.

Example:
  occpipe enrich
  occpipe enrich --buffer-km 10 -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stageConfig(cmd)
		if err != nil {
			return err
		}
		return pipeline.New(cfg).Enrich()
	},
}

// strictCmd represents the strict command
var strictCmd = &cobra.Command{
	Use:   "strict",
	Short: "Curate and deduplicate enriched records",
	Long: `Strict applies the layered acceptance policy (range membership,
quality issues, uncertainty cap, captive exclusion, basis whitelist,
date-confidence floor) and deduplicates survivors by species, date key,
and resolution-6 hex cell. Emits the strict NDJSON set, per-species
sightings files, and the sightings index.

Example:
  occpipe strict
  occpipe strict --min-year 2015 --max-uncertainty 2000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stageConfig(cmd)
		if err != nil {
			return err
		}
		return pipeline.New(cfg).Strict()
	},
}

// heatCmd represents the heat command
var heatCmd = &cobra.Command{
	Use:   "heat",
	Short: "Aggregate enriched records into a hex density surface",
	Long: `Heat counts enriched in-US records per resolution-6 hex cell and
writes a GeoJSON feature collection of hex polygons with counts: the
always-on density backdrop, intentionally looser than the strict set.

Example:
  occpipe heat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stageConfig(cmd)
		if err != nil {
			return err
		}
		return pipeline.New(cfg).Heat()
	},
}

// stageConfig builds the effective configuration for one stage run:
// file/env config overridden by whichever flags were set.
func stageConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := model.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	flags := cmd.Flags()
	if flags.Changed("occurrence-dir") {
		cfg.Paths.OccurrenceDir = occurrenceDir
	}
	if flags.Changed("distributions-dir") {
		cfg.Paths.DistributionsDir = distributionsDir
	}
	if flags.Changed("states") {
		cfg.Paths.StatesFile = statesFile
	}
	if flags.Changed("target-species") {
		cfg.Paths.TargetSpeciesFile = targetSpecies
	}
	if flags.Changed("out-root") {
		cfg.Paths.OutRoot = outRoot
	}
	if flags.Changed("web-data") {
		cfg.Paths.WebData = webData
	}
	if flags.Changed("buffer-km") {
		cfg.Enrich.BufferMeters = bufferKm * 1000
	}
	if flags.Changed("min-year") {
		cfg.Strict.MinYear = minYear
	}
	if flags.Changed("max-uncertainty") {
		cfg.Strict.MaxUncertaintyMeters = maxUncertainty
	}
	if flags.Changed("keep-month-approx") {
		cfg.Strict.KeepMonthApprox = keepMonthApprox
	}
	return cfg, nil
}

func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outRoot, "out-root", "data/out", "intermediate output directory")
	cmd.Flags().StringVar(&webData, "web-data", "web/data", "web-facing output directory")
}

func init() {
	normalizeCmd.Flags().StringVar(&occurrenceDir, "occurrence-dir", "", "directory of source occurrence files")
	normalizeCmd.Flags().StringVar(&statesFile, "states", "", "US state boundary feature collection")
	addPathFlags(normalizeCmd)

	enrichCmd.Flags().StringVar(&distributionsDir, "distributions-dir", "", "directory of per-species range geojson files")
	enrichCmd.Flags().StringVar(&targetSpecies, "target-species", "", "JSON array of species slugs to keep")
	enrichCmd.Flags().Float64Var(&bufferKm, "buffer-km", 10, "range buffer distance in kilometers")
	addPathFlags(enrichCmd)

	strictCmd.Flags().StringVar(&targetSpecies, "target-species", "", "JSON array of species slugs to keep")
	strictCmd.Flags().IntVar(&minYear, "min-year", 2015, "minimum accepted event year")
	strictCmd.Flags().Float64Var(&maxUncertainty, "max-uncertainty", 2000, "maximum coordinate uncertainty in meters")
	strictCmd.Flags().BoolVar(&keepMonthApprox, "keep-month-approx", true, "accept month-approximate dates")
	addPathFlags(strictCmd)

	addPathFlags(heatCmd)

	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(strictCmd)
	rootCmd.AddCommand(heatCmd)
}
