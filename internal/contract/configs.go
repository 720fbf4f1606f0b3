package contract

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/chartaxis/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 8
	DefaultPane      = 0
	MaxPane          = 16
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration of a command.
// This struct is the "final, validated" config.
type Config struct {
	ScriptPath string
	Axis       schema.AxisKind
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Workers    int

	MetricsFile string // Prometheus text file written after a replay

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	SeriesName string
	SeriesKind schema.SeriesKind
	Pane       int

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ScriptPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Axis           string `mapstructure:"axis"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Workers        int    `mapstructure:"workers"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Fields from replayCmd.Flags() ---
	MetricsFile string `mapstructure:"metrics-file"`

	// --- Fields from storeCmd.PersistentFlags() and mcpCmd.Flags() ---
	Series string `mapstructure:"series"`
	Kind   string `mapstructure:"kind"`
	Pane   int    `mapstructure:"pane"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreConfig(cfg, input); err != nil {
		return err
	}
	return validateSeriesInputs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and axis settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ScriptPath = strings.TrimSpace(input.ScriptPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Axis = schema.AxisKind(strings.ToLower(input.Axis))
	if _, ok := schema.ValidAxisKinds[cfg.Axis]; !ok {
		return fmt.Errorf("invalid axis '%s'. must be time, index", input.Axis)
	}

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers
	return nil
}

// validateStoreConfig validates the bar store backend configuration.
func validateStoreConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSeriesInputs validates the series selection used by store and mcp commands.
func validateSeriesInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.SeriesName = strings.TrimSpace(input.Series)

	cfg.SeriesKind = schema.LineSeries
	if input.Kind != "" {
		cfg.SeriesKind = schema.SeriesKind(strings.ToLower(input.Kind))
		if _, ok := schema.ValidSeriesKinds[cfg.SeriesKind]; !ok {
			return fmt.Errorf("invalid series kind '%s'. must be bar, candlestick, area, baseline, line, histogram, custom", input.Kind)
		}
	}

	if input.Pane < 0 || input.Pane > MaxPane {
		return fmt.Errorf("pane must be between 0 and %d (received %d)", MaxPane, input.Pane)
	}
	cfg.Pane = input.Pane
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
