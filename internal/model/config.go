package model

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all pipeline configuration
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Enrich EnrichConfig `yaml:"enrich" mapstructure:"enrich"`
	Strict StrictConfig `yaml:"strict" mapstructure:"strict"`
	Hex    HexConfig    `yaml:"hex" mapstructure:"hex"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// PathsConfig names the fixed input and output locations
type PathsConfig struct {
	OccurrenceDir     string `yaml:"occurrence_dir" mapstructure:"occurrence_dir"`           // directory of source occurrence files
	DistributionsDir  string `yaml:"distributions_dir" mapstructure:"distributions_dir"`     // per-species range geojson files
	StatesFile        string `yaml:"states_file" mapstructure:"states_file"`                 // US state boundary feature collection
	TargetSpeciesFile string `yaml:"target_species_file" mapstructure:"target_species_file"` // optional allow-list of species slugs
	OutRoot           string `yaml:"out_root" mapstructure:"out_root"`                       // intermediate NDJSON outputs
	WebData           string `yaml:"web_data" mapstructure:"web_data"`                       // web-facing JSON outputs
}

// EnrichConfig controls the range enrichment stage
type EnrichConfig struct {
	BufferMeters float64 `yaml:"buffer_meters" mapstructure:"buffer_meters"` // range buffer distance
}

// StrictConfig controls the strict curation stage
type StrictConfig struct {
	MinYear              int      `yaml:"min_year" mapstructure:"min_year"`
	MaxUncertaintyMeters float64  `yaml:"max_uncertainty_meters" mapstructure:"max_uncertainty_meters"`
	AllowedBasis         []string `yaml:"allowed_basis" mapstructure:"allowed_basis"`
	KeepMonthApprox      bool     `yaml:"keep_month_approx" mapstructure:"keep_month_approx"`
}

// HexConfig names the hex grid resolutions
type HexConfig struct {
	FineResolution   int `yaml:"fine_resolution" mapstructure:"fine_resolution"`     // dedup / density resolution
	CoarseResolution int `yaml:"coarse_resolution" mapstructure:"coarse_resolution"` // secondary coarser resolution
}

// OutputConfig controls operator-facing output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			OccurrenceDir:     "",
			DistributionsDir:  "web/data/distributions",
			StatesFile:        "vendor/us/us_states_simple.geojson",
			TargetSpeciesFile: "",
			OutRoot:           "data/out",
			WebData:           "web/data",
		},
		Enrich: EnrichConfig{
			BufferMeters: 10_000,
		},
		Strict: StrictConfig{
			MinYear:              2015,
			MaxUncertaintyMeters: 2000,
			AllowedBasis:         []string{"HumanObservation", "Observation", "MachineObservation"},
			KeepMonthApprox:      true,
		},
		Hex: HexConfig{
			FineResolution:   6,
			CoarseResolution: 5,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}

// LoadConfig builds the effective configuration: defaults overridden by
// whatever viper resolved from the config file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
