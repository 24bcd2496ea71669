// Package testutil provides utilities for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/config"
	"github.com/mandrykarina/GC/pkg/model"
)

// TestConfig returns the default configuration with the history database
// and report storage placed in a per-test temporary directory.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "runs.db")
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = filepath.Join(dir, "storage")
	cfg.Simulation.ReportDir = filepath.Join(dir, "reports")
	cfg.Simulation.HeapSize = 1 << 20
	return cfg
}

// CycleScenario returns a scenario where objects 0 and 1 reference each
// other and lose their root, leaving a two object cycle.
func CycleScenario() *model.Scenario {
	return &model.Scenario{
		Name:     "cycle",
		HeapSize: 1024,
		Operations: []model.Operation{
			model.AllocateID(0, 32),
			model.AllocateID(1, 32),
			model.MakeRoot(0),
			model.AddReference(0, 1),
			model.AddReference(1, 0),
			model.RemoveRoot(0),
			model.Collect(),
		},
	}
}

// WriteScenario encodes s into dir/name and returns the path.
func WriteScenario(t *testing.T, dir, name string, s *model.Scenario) string {
	t.Helper()
	data, err := scenario.Encode(s)
	if err != nil {
		t.Fatalf("failed to encode scenario: %v", err)
	}
	return WriteFile(t, dir, name, string(data))
}

// SampleComparison returns a small two-collector comparison for storage
// and API tests.
func SampleComparison(runID string, createdAt time.Time) *model.Comparison {
	return &model.Comparison{
		RunID:        runID,
		ScenarioName: "cycle",
		HeapSize:     1024,
		Operations:   7,
		Results: []model.GCResult{
			{Collector: "reference_counting", ObjectsCreated: 2, ObjectsLeft: 2, MemoryAllocated: 64, MemoryLeaked: 64, PeakMemory: 64},
			{Collector: "mark_sweep", ObjectsCreated: 2, MemoryAllocated: 64, MemoryFreed: 64, PeakMemory: 64, RecoveryPercent: 100, CollectionsRun: 1, ObjectsFreed: 2},
		},
		CreatedAt: createdAt.UTC(),
	}
}

// WriteFile writes content to a file in the given directory.
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// ReadFile reads a file and returns its contents.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}
