package formatter

import (
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// BenchFormatter formats performance sweep results as a table.
type BenchFormatter struct{}

// SupportedKinds returns the report kinds this formatter supports.
func (f *BenchFormatter) SupportedKinds() []ReportKind {
	return []ReportKind{KindBench}
}

// Format outputs the sweep to the logger.
func (f *BenchFormatter) Format(v interface{}, log utils.Logger) {
	cases, _ := v.([]model.BenchCase)

	log.Info("=== Performance Sweep ===")
	log.Info("  %-8s %-20s %8s %8s %12s %12s", "GRAPH", "COLLECTOR", "OBJECTS", "LEFT", "LEAKED", "RECLAIM(ms)")
	for _, c := range cases {
		if c.Error != "" {
			log.Info("  %-8s %-20s %8d  error: %s", c.Graph, c.Collector, c.Objects, truncateString(c.Error, 60))
			continue
		}
		log.Info("  %-8s %-20s %8d %8d %12s %12.3f",
			c.Graph, c.Collector, c.Objects, c.ObjectsLeft, formatBytes(c.MemoryLeaked), c.ReclaimTimeMs)
	}
}

// FormatSummary returns a summary map for serialization.
func (f *BenchFormatter) FormatSummary(v interface{}) map[string]interface{} {
	cases, _ := v.([]model.BenchCase)
	failed := 0
	for _, c := range cases {
		if c.Error != "" {
			failed++
		}
	}
	return map[string]interface{}{
		"cases":  len(cases),
		"failed": failed,
		"data":   cases,
	}
}
