package cmd

import (
	"fmt"

	"github.com/huangsam/chartaxis/core"
	"github.com/huangsam/chartaxis/internal/barstore"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeSetupWrapper runs the shared setup without positional arguments, which
// store subcommands use for file paths and series names instead.
func storeSetupWrapper(cmd *cobra.Command, _ []string) error {
	return sharedSetup(rootCtx, cmd, nil)
}

// storeConfigSetup loads and validates configuration without opening the store.
// This allows clear and migrate to work on a missing or outdated database.
func storeConfigSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return contract.ProcessAndValidate(cfg, input)
}

// storeCmd focused on bar store management.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage stored series bars",
	Long: `Manage the durable bar store that replay scripts and MCP sessions load series from.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  list    - List stored series
  delete  - Remove one stored series
  clear   - Remove all stored series
  migrate - Run database schema migrations
  import  - Import bars from a Parquet file
  export  - Export bars to a Parquet file

Examples:
  # Check store status
  chartaxis store status

  # Import bars and list what was stored
  chartaxis store import bars.parquet
  chartaxis store list`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the bar store.

Displays:
- Backend type and connection status
- Schema version
- Number of stored series and bars
- Last update timestamp
- Database size

Examples:
  # Check store status as JSON
  chartaxis store status --output json`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetBarStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write store status", err)
		}
	},
}

// storeListCmd lists stored series.
var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored series with their kind and bar count",
	Long: `List every stored series with its kind, number of bars and last update time.

Examples:
  # List as a table
  chartaxis store list

  # List as CSV into a file
  chartaxis store list --output csv --output-file series.csv`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		infos, err := storeManager.GetBarStore().ListSeries()
		if err != nil {
			contract.LogFatal("Failed to list series", err)
		}
		if err := outwriter.WriteSeriesList(infos, cfg); err != nil {
			contract.LogFatal("Failed to write series list", err)
		}
	},
}

// storeDeleteCmd removes stored series.
var storeDeleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Remove stored series and their bars",
	Long: `Delete the named series and all of their bars from the store.

Examples:
  chartaxis store delete btc eth`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		store := storeManager.GetBarStore()
		for _, name := range args {
			if err := store.DeleteSeries(name); err != nil {
				contract.LogFatal("Failed to delete series", err)
			}
		}
		fmt.Printf("Deleted %d series.\n", len(args))
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored series",
	Long: `Delete every stored series from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store tables and migration history

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  chartaxis store export backup.parquet
  chartaxis store clear

  # Clear MySQL store (set connection string via env variable)
  CHARTAXIS_STORE_BACKEND=mysql CHARTAXIS_STORE_DB_CONNECT="..." chartaxis store clear`,
	PreRunE: storeConfigSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.StoreDBConnect
		if dbFilePath == "" {
			dbFilePath = barstore.GetDBFilePath()
		}
		if err := barstore.ClearStore(cfg.StoreBackend, dbFilePath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the bar store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the bar store.

Opening the store always migrates to the latest version. Use this command to
inspect that step or to move to a specific version.

Examples:
  # Migrate to latest version (default)
  chartaxis store migrate

  # Migrate to specific version
  chartaxis store migrate --target-version 1

  # Rollback everything
  chartaxis store migrate --target-version 0`,
	PreRunE: storeConfigSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := barstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeImportCmd imports bars from a Parquet file.
var storeImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import bars from a Parquet file",
	Long: `Read bars from a Parquet file written by 'store export' and save them to the store.

Every series is first loaded into a scratch data layer of the configured axis,
so series with unknown kinds or times the axis cannot read are rejected.
Stored series with the same name are replaced.

Examples:
  # Import everything
  chartaxis store import bars.parquet

  # Import one series onto the numeric axis
  chartaxis store import bars.parquet --series volume --axis index`,
	Args:    cobra.ExactArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteStoreImport(rootCtx, cfg, storeManager, args[0]); err != nil {
			contract.LogFatal("Failed to import bars", err)
		}
	},
}

// storeExportCmd exports bars to a Parquet file.
var storeExportCmd = &cobra.Command{
	Use:   "export FILE [NAME...]",
	Short: "Export stored bars to Parquet for BI tools and analytics",
	Long: `Export stored series to a single Parquet file, one row per bar.

Without names every stored series is exported.

Examples:
  # Export all series
  chartaxis store export bars.parquet

  # Export two series and inspect them with DuckDB
  chartaxis store export bars.parquet btc eth
  duckdb -c "SELECT series_name, COUNT(*) FROM read_parquet('bars.parquet') GROUP BY 1"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteStoreExport(rootCtx, storeManager, args[0], args[1:]); err != nil {
			contract.LogFatal("Failed to export bars", err)
		}
	},
}
