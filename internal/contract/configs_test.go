package contract

import (
	"testing"

	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation; cases mutate one field.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Axis:         string(schema.TimeAxis),
		Output:       string(schema.TextOut),
		Precision:    DefaultPrecision,
		Workers:      DefaultWorkers,
		Color:        "yes",
		StoreBackend: string(schema.SQLiteBackend),
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "index axis", mutate: func(in *ConfigRawInput) { in.Axis = "INDEX" }},
		{name: "invalid axis", mutate: func(in *ConfigRawInput) { in.Axis = "log" }, expectError: true},
		{name: "negative precision", mutate: func(in *ConfigRawInput) { in.Precision = -1 }, expectError: true},
		{name: "precision too large", mutate: func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, expectError: true},
		{name: "invalid output format", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "negative width", mutate: func(in *ConfigRawInput) { in.Width = -5 }, expectError: true},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "sometimes" }, expectError: true},
		{name: "invalid store backend", mutate: func(in *ConfigRawInput) { in.StoreBackend = "redis" }, expectError: true},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = string(schema.MySQLBackend) },
			expectError: true,
		},
		{
			name:        "postgresql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.StoreBackend = string(schema.PostgreSQLBackend) },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.StoreBackend = string(schema.MySQLBackend)
				in.StoreDBConnect = "user:pass@tcp(localhost:3306)/chartaxis"
			},
		},
		{name: "none backend", mutate: func(in *ConfigRawInput) { in.StoreBackend = string(schema.NoneBackend) }},
		{name: "candlestick kind", mutate: func(in *ConfigRawInput) { in.Kind = "Candlestick" }},
		{name: "invalid kind", mutate: func(in *ConfigRawInput) { in.Kind = "pie" }, expectError: true},
		{name: "pane out of range", mutate: func(in *ConfigRawInput) { in.Pane = MaxPane + 1 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
				return
			}
			require.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
			assert.Equal(t, input.Precision, cfg.Precision)
			assert.NotEmpty(t, cfg.Axis)
			assert.NotEmpty(t, cfg.SeriesKind)
		})
	}
}

func TestProcessAndValidatePopulatesConfig(t *testing.T) {
	input := validInput()
	input.ScriptPathStr = " replay.yaml "
	input.Axis = "Index"
	input.Output = "JSON"
	input.OutputFile = "out.json"
	input.Series = " btc "
	input.Kind = "bar"
	input.Pane = 2
	input.Color = "no"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "replay.yaml", cfg.ScriptPath)
	assert.Equal(t, schema.IndexAxis, cfg.Axis)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, "out.json", cfg.OutputFile)
	assert.Equal(t, "btc", cfg.SeriesName)
	assert.Equal(t, schema.BarSeries, cfg.SeriesKind)
	assert.Equal(t, 2, cfg.Pane)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, schema.SQLiteBackend, cfg.StoreBackend)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		conn        string
		expectError bool
	}{
		{"sqlite ignores connection", schema.SQLiteBackend, "", false},
		{"none ignores connection", schema.NoneBackend, "whatever", false},
		{"mysql valid", schema.MySQLBackend, "u:p@tcp(db:3306)/bars", false},
		{"mysql missing tcp", schema.MySQLBackend, "u:p@db/bars", true},
		{"mysql missing database", schema.MySQLBackend, "u:p@tcp(db:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=db dbname=bars", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=bars", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=db", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "chartaxis"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "chartaxis", profile.Prefix)
}
