package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoatlas/occpipe/internal/ingest"
	"github.com/ecoatlas/occpipe/internal/model"
	"github.com/ecoatlas/occpipe/internal/pipeline"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Inventory the configured inputs without running anything",
	Long: `Status reports what the pipeline would see: occurrence files by kind,
per-species range files, the boundary collection, and the target
species allow-list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig()
		if err != nil {
			return err
		}

		if cfg.Paths.OccurrenceDir == "" {
			fmt.Println("✗ occurrence directory: not configured")
		} else if files, err := ingest.EnumerateOccurrenceFiles(cfg.Paths.OccurrenceDir); err != nil {
			fmt.Printf("✗ occurrence directory: %v\n", err)
		} else {
			fmt.Printf("✓ occurrence directory: %s (%d files)\n", cfg.Paths.OccurrenceDir, len(files))
		}

		if entries, err := os.ReadDir(cfg.Paths.DistributionsDir); err != nil {
			fmt.Printf("✗ distributions: %s (unreadable)\n", cfg.Paths.DistributionsDir)
		} else {
			count := 0
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".geojson") {
					count++
				}
			}
			fmt.Printf("✓ distributions: %s (%d species)\n", cfg.Paths.DistributionsDir, count)
		}

		if _, err := os.Stat(cfg.Paths.StatesFile); err != nil {
			fmt.Printf("✗ states file: %s (missing; bbox fallback only)\n", cfg.Paths.StatesFile)
		} else {
			fmt.Printf("✓ states file: %s\n", cfg.Paths.StatesFile)
		}

		if cfg.Paths.TargetSpeciesFile == "" {
			fmt.Println("- target species: not configured (all species pass)")
		} else if slugs := pipeline.ReadTargetSpecies(cfg.Paths.TargetSpeciesFile); len(slugs) == 0 {
			fmt.Printf("✗ target species: %s (empty or unreadable)\n", cfg.Paths.TargetSpeciesFile)
		} else {
			fmt.Printf("✓ target species: %s (%d slugs)\n", cfg.Paths.TargetSpeciesFile, len(slugs))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
