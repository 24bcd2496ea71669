// Package pprof profiles the simulator itself while a command runs.
package pprof

import (
	"fmt"
	"strings"
)

// ProfileType names a runtime profile.
type ProfileType string

const (
	ProfileCPU       ProfileType = "cpu"
	ProfileHeap      ProfileType = "heap"
	ProfileAllocs    ProfileType = "allocs"
	ProfileGoroutine ProfileType = "goroutine"
	ProfileBlock     ProfileType = "block"
	ProfileMutex     ProfileType = "mutex"
)

// AllProfileTypes returns every supported profile type.
func AllProfileTypes() []ProfileType {
	return []ProfileType{ProfileCPU, ProfileHeap, ProfileAllocs, ProfileGoroutine, ProfileBlock, ProfileMutex}
}

// DefaultProfileTypes returns the profiles collected when none are named.
func DefaultProfileTypes() []ProfileType {
	return []ProfileType{ProfileCPU, ProfileHeap}
}

// ParseProfileTypes parses a comma-separated list such as "cpu,heap".
func ParseProfileTypes(s string) ([]ProfileType, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultProfileTypes(), nil
	}

	seen := make(map[ProfileType]bool)
	var out []ProfileType
	for _, part := range strings.Split(s, ",") {
		pt := ProfileType(strings.ToLower(strings.TrimSpace(part)))
		if pt == "" || seen[pt] {
			continue
		}
		if !isValid(pt) {
			return nil, fmt.Errorf("unknown profile type %q", part)
		}
		seen[pt] = true
		out = append(out, pt)
	}
	return out, nil
}

func isValid(pt ProfileType) bool {
	for _, p := range AllProfileTypes() {
		if p == pt {
			return true
		}
	}
	return false
}

// Config holds profiler configuration.
type Config struct {
	OutputDir string
	Profiles  []ProfileType
	// CPURate is the CPU sampling rate in Hz. Zero keeps the runtime default.
	CPURate int
	// BlockRate and MutexFraction are applied while the block and mutex
	// profiles are enabled.
	BlockRate     int
	MutexFraction int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:     "./pprof",
		Profiles:      DefaultProfileTypes(),
		BlockRate:     1,
		MutexFraction: 1,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one profile type must be specified")
	}
	for _, pt := range c.Profiles {
		if !isValid(pt) {
			return fmt.Errorf("unknown profile type %q", pt)
		}
	}
	if c.CPURate < 0 {
		return fmt.Errorf("CPU rate must not be negative")
	}
	return nil
}

// HasProfile checks if a profile type is enabled.
func (c *Config) HasProfile(pt ProfileType) bool {
	for _, p := range c.Profiles {
		if p == pt {
			return true
		}
	}
	return false
}
