package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecoatlas/occpipe/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: normalize, enrich, strict, heat",
	Long: `Run executes all four batch stages in dependency order against the
configured inputs. Each stage reads the previous stage's output file;
running against unchanged inputs produces byte-identical outputs.

Example:
  occpipe run
  occpipe run --occurrence-dir vendor/occurrences -v`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&occurrenceDir, "occurrence-dir", "", "directory of source occurrence files")
	runCmd.Flags().StringVar(&distributionsDir, "distributions-dir", "", "directory of per-species range geojson files")
	runCmd.Flags().StringVar(&statesFile, "states", "", "US state boundary feature collection")
	runCmd.Flags().StringVar(&targetSpecies, "target-species", "", "JSON array of species slugs to keep")
	addPathFlags(runCmd)

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  occpipe Full Pipeline\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Occurrences:    %s\n", orUnset(cfg.Paths.OccurrenceDir))
	fmt.Fprintf(os.Stderr, "  Distributions:  %s\n", orUnset(cfg.Paths.DistributionsDir))
	fmt.Fprintf(os.Stderr, "  States:         %s\n", orUnset(cfg.Paths.StatesFile))
	fmt.Fprintf(os.Stderr, "  Out root:       %s\n", cfg.Paths.OutRoot)
	fmt.Fprintf(os.Stderr, "  Web data:       %s\n", cfg.Paths.WebData)
	fmt.Fprintf(os.Stderr, "\n")

	if err := pipeline.New(cfg).RunAll(); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Pipeline Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not configured)"
	}
	return s
}
