package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: debug
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, uint64(32*1024*1024), cfg.Simulation.HeapSize)
	assert.Equal(t, 20, cfg.Simulation.NumObjects)
	assert.Equal(t, uint64(64), cfg.Simulation.ObjectSize)
	assert.Equal(t, "basic", cfg.Simulation.Scenario)
	assert.Equal(t, uint64(1024*1024), cfg.Limits.MinHeapSize)
	assert.Equal(t, 10000, cfg.Limits.MaxObjects)
	assert.Equal(t, []int{100, 1000, 10000}, cfg.Bench.Sizes)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
simulation:
  heap_size: 1048576
  num_objects: 5
  object_size: 64
  scenario: cycle
bench:
  sizes: [10, 50]
  workers: 2
database:
  type: postgres
  host: db.example.com
  port: 5432
  database: gc_runs
  user: admin
  password: secret
storage:
  type: s3
  bucket: reports
  region: us-east-1
  endpoint: http://localhost:9000
  path_style: true
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, uint64(1048576), cfg.Simulation.HeapSize)
	assert.Equal(t, 5, cfg.Simulation.NumObjects)
	assert.Equal(t, "cycle", cfg.Simulation.Scenario)
	assert.Equal(t, []int{10, 50}, cfg.Bench.Sizes)
	assert.Equal(t, 2, cfg.Bench.Workers)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "gc_runs", cfg.Database.Database)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.True(t, cfg.Storage.PathStyle)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GCSIM_SERVER_PORT", "9191")
	t.Setenv("GCSIM_SIMULATION_NUM_OBJECTS", "40")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 40, cfg.Simulation.NumObjects)
}

func TestLoad_InvalidDatabaseType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: oracle
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigError, apperrors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Simulation.NumObjects)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"heap too small", func(c *Config) { c.Simulation.HeapSize = 1024 }, "heap_size"},
		{"too many objects", func(c *Config) { c.Simulation.NumObjects = 20000 }, "num_objects"},
		{"object too large", func(c *Config) { c.Simulation.ObjectSize = 20000 }, "object_size"},
		{"inverted limits", func(c *Config) { c.Limits.MinObjects = 50; c.Limits.MaxObjects = 10 }, "minimum exceeds maximum"},
		{"postgres without host", func(c *Config) { c.Database.Type = "postgres" }, "database host is required"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "sqlite database path"},
		{"no workers", func(c *Config) { c.Bench.Workers = 0 }, "bench workers"},
		{"tiny bench size", func(c *Config) { c.Bench.Sizes = []int{1} }, "bench size"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLimitsConfig_Check(t *testing.T) {
	limits := Default().Limits

	assert.NoError(t, limits.Check(1048576, 5, 64))

	err := limits.Check(1048576, 0, 64)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestEnsureReportDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	cfg := Default()
	cfg.Simulation.ReportDir = dir

	require.NoError(t, cfg.EnsureReportDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
simulation:
  num_objects: 7
log:
  format: json
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Simulation.NumObjects)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}
