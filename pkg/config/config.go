// Package config provides configuration management for the GC simulator.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
)

const envPrefix = "GCSIM"

// Config holds all configuration for the application.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Bench      BenchConfig      `mapstructure:"bench"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// SimulationConfig holds the defaults for generated scenarios.
type SimulationConfig struct {
	HeapSize   uint64 `mapstructure:"heap_size"`
	NumObjects int    `mapstructure:"num_objects"`
	ObjectSize uint64 `mapstructure:"object_size"`
	Scenario   string `mapstructure:"scenario"`  // linear, cycle, tree, basic or cycle_leak
	LogSteps   bool   `mapstructure:"log_steps"` // log every replayed operation
	ReportDir  string `mapstructure:"report_dir"`

	// Snapshot attaches the final heap of each collector to results.
	Snapshot bool `mapstructure:"snapshot"`
	// ExportEvents uploads the collector event log of every run to storage.
	ExportEvents bool   `mapstructure:"export_events"`
	ExportPrefix string `mapstructure:"export_prefix"`
	// HistorySize is the default number of runs returned by history queries.
	HistorySize int `mapstructure:"history_size"`
}

// LimitsConfig bounds user supplied simulation parameters.
type LimitsConfig struct {
	MinHeapSize   uint64 `mapstructure:"min_heap_size"`
	MaxHeapSize   uint64 `mapstructure:"max_heap_size"`
	MinObjects    int    `mapstructure:"min_objects"`
	MaxObjects    int    `mapstructure:"max_objects"`
	MinObjectSize uint64 `mapstructure:"min_object_size"`
	MaxObjectSize uint64 `mapstructure:"max_object_size"`
}

// BenchConfig holds performance sweep configuration.
type BenchConfig struct {
	Sizes      []int    `mapstructure:"sizes"`
	Graphs     []string `mapstructure:"graphs"`
	ObjectSize uint64   `mapstructure:"object_size"`
	Workers    int      `mapstructure:"workers"`
}

// DatabaseConfig holds run history database configuration.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Path     string `mapstructure:"path"` // sqlite file
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
	RawSQL   bool   `mapstructure:"raw_sql"` // postgres and mysql only: bypass gorm for run history
}

// StorageConfig holds report storage configuration.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // local, cos or s3
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // cos, e.g. "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // cos, "https" or "http"
	Endpoint  string `mapstructure:"endpoint"`   // s3 compatible endpoint
	PathStyle bool   `mapstructure:"path_style"` // s3 path-style addressing
	LocalPath string `mapstructure:"local_path"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"` // stdout, stderr or a file
	Format     string `mapstructure:"format"`      // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/gc-simulator")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults.
		_, searched := err.(viper.ConfigFileNotFoundError)
		if !searched && !os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "config validation failed", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := newViper()

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	_ = newViper().Unmarshal(&cfg)
	return &cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.heap_size", 32*1024*1024)
	v.SetDefault("simulation.num_objects", 20)
	v.SetDefault("simulation.object_size", 64)
	v.SetDefault("simulation.scenario", "basic")
	v.SetDefault("simulation.log_steps", false)
	v.SetDefault("simulation.report_dir", "./reports")
	v.SetDefault("simulation.snapshot", false)
	v.SetDefault("simulation.export_events", false)
	v.SetDefault("simulation.export_prefix", "runs")
	v.SetDefault("simulation.history_size", 20)

	v.SetDefault("limits.min_heap_size", 1024*1024)
	v.SetDefault("limits.max_heap_size", 1024*1024*1024)
	v.SetDefault("limits.min_objects", 1)
	v.SetDefault("limits.max_objects", 10000)
	v.SetDefault("limits.min_object_size", 1)
	v.SetDefault("limits.max_object_size", 10000)

	v.SetDefault("bench.sizes", []int{100, 1000, 10000})
	v.SetDefault("bench.graphs", []string{"linear", "cycle", "tree"})
	v.SetDefault("bench.object_size", 64)
	v.SetDefault("bench.workers", 4)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./gc-simulator.db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.raw_sql", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./storage")

	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "stdout")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	l := c.Limits
	if l.MinHeapSize > l.MaxHeapSize || l.MinObjects > l.MaxObjects || l.MinObjectSize > l.MaxObjectSize {
		return fmt.Errorf("limits: minimum exceeds maximum")
	}
	if err := l.Check(c.Simulation.HeapSize, c.Simulation.NumObjects, c.Simulation.ObjectSize); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres", "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	// Storage config validation is delegated to storage package

	if c.Bench.Workers < 1 {
		return fmt.Errorf("bench workers must be at least 1")
	}
	for _, n := range c.Bench.Sizes {
		if n < 2 {
			return fmt.Errorf("bench size %d is below 2 objects", n)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// Check reports whether the simulation parameters fall inside the limits.
func (l LimitsConfig) Check(heapSize uint64, numObjects int, objectSize uint64) error {
	if heapSize < l.MinHeapSize || heapSize > l.MaxHeapSize {
		return apperrors.Newf(apperrors.CodeInvalidInput,
			"heap_size %d outside [%d, %d]", heapSize, l.MinHeapSize, l.MaxHeapSize)
	}
	if numObjects < l.MinObjects || numObjects > l.MaxObjects {
		return apperrors.Newf(apperrors.CodeInvalidInput,
			"num_objects %d outside [%d, %d]", numObjects, l.MinObjects, l.MaxObjects)
	}
	if objectSize < l.MinObjectSize || objectSize > l.MaxObjectSize {
		return apperrors.Newf(apperrors.CodeInvalidInput,
			"object_size %d outside [%d, %d]", objectSize, l.MinObjectSize, l.MaxObjectSize)
	}
	return nil
}

// EnsureReportDir creates the report directory if it doesn't exist.
func (c *Config) EnsureReportDir() error {
	if c.Simulation.ReportDir == "" {
		return nil
	}
	return os.MkdirAll(c.Simulation.ReportDir, 0755)
}
