// Package cmd defines the command-line interface for chartaxis.
package cmd

import (
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("axis", string(schema.TimeAxis), "Horizontal axis: time or index")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Bar store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of replayCmd to Viper
	replayCmd.Flags().String("metrics-file", "", "Write session metrics in the Prometheus text format to this file")
	if err := viper.BindPFlags(replayCmd.Flags()); err != nil {
		contract.LogFatal("Error binding replay flags", err)
	}

	// Bind all flags of storeImportCmd to Viper
	storeImportCmd.Flags().String("series", "", "Import only the series with this name")
	storeImportCmd.Flags().Int("workers", contract.DefaultWorkers, "Number of series checked concurrently")
	if err := viper.BindPFlags(storeImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store import flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of mcpCmd to Viper
	mcpCmd.Flags().String("kind", string(schema.LineSeries), "Default kind for series registered without one: bar, candlestick, area, baseline, line, histogram, custom")
	mcpCmd.Flags().Int("pane", contract.DefaultPane, "Default pane for series registered without one")
	if err := viper.BindPFlags(mcpCmd.Flags()); err != nil {
		contract.LogFatal("Error binding mcp flags", err)
	}
}
