package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "occpipe",
	Short: "occpipe - Species occurrence enrichment and curation pipeline",
	Long: `occpipe turns heterogeneous species-occurrence files (CSV/TSV, NDJSON,
GeoJSON, spreadsheets) into a clean, deduplicated, geographically
validated dataset for mapping and analysis.

The pipeline runs as four sequential batch stages:

  normalize  map arbitrary input schemas to canonical records
  enrich     join records against per-species expert ranges
  strict     apply the acceptance policy and deduplicate sightings
  heat       bin enriched records into a hex density surface

Each stage reads one persisted dataset and writes another; a full run
against unchanged inputs is byte-identical.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for occpipe.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("occpipe v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./occpipe.yaml or $HOME/.occpipe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search the working directory first, then the home directory
		viper.AddConfigPath(".")
		viper.AddConfigPath(home + "/.occpipe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("occpipe")
	}

	// Read in environment variables that match OCCPIPE_*
	viper.SetEnvPrefix("OCCPIPE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
