package pprof

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"
)

// Collector records the configured profiles between Start and Stop.
type Collector struct {
	config *Config

	mu      sync.Mutex
	running bool
	start   time.Time
	cpuFile *os.File
	written []string
}

// NewCollector creates a new Collector.
func NewCollector(cfg *Config) (*Collector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Collector{config: cfg}, nil
}

// Start creates the output directory and begins CPU profiling when enabled.
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("collector is already running")
	}
	if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	c.start = time.Now()
	c.written = nil

	if c.config.HasProfile(ProfileBlock) {
		runtime.SetBlockProfileRate(c.config.BlockRate)
	}
	if c.config.HasProfile(ProfileMutex) {
		runtime.SetMutexProfileFraction(c.config.MutexFraction)
	}

	if c.config.HasProfile(ProfileCPU) {
		if c.config.CPURate > 0 {
			runtime.SetCPUProfileRate(c.config.CPURate)
		}
		f, err := os.Create(c.path(ProfileCPU))
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		c.cpuFile = f
	}

	c.running = true
	return nil
}

// Stop ends CPU profiling and writes every other configured profile. It
// returns the paths written by this run.
func (c *Collector) Stop() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, nil
	}
	c.running = false

	var firstErr error
	if c.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := c.cpuFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close CPU profile: %w", err)
		}
		c.written = append(c.written, c.cpuFile.Name())
		c.cpuFile = nil
	}

	for _, pt := range c.config.Profiles {
		if pt == ProfileCPU {
			continue
		}
		if err := c.writeLookup(pt); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.config.HasProfile(ProfileBlock) {
		runtime.SetBlockProfileRate(0)
	}
	if c.config.HasProfile(ProfileMutex) {
		runtime.SetMutexProfileFraction(0)
	}

	return append([]string(nil), c.written...), firstErr
}

func (c *Collector) writeLookup(pt ProfileType) error {
	if pt == ProfileHeap {
		runtime.GC()
	}
	prof := pprof.Lookup(string(pt))
	if prof == nil {
		return fmt.Errorf("profile %s is not available", pt)
	}

	path := c.path(pt)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile: %w", pt, err)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s profile: %w", pt, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s profile: %w", pt, err)
	}
	c.written = append(c.written, path)
	return nil
}

func (c *Collector) path(pt ProfileType) string {
	name := fmt.Sprintf("%s_%s.pprof", pt, c.start.Format("20060102_150405"))
	return filepath.Join(c.config.OutputDir, name)
}

// Running reports whether profiling is in progress.
func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Config returns the collector configuration.
func (c *Collector) Config() *Config {
	return c.config
}
