package formatter

import (
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// GCResultFormatter formats a single collector result.
type GCResultFormatter struct{}

// SupportedKinds returns the report kinds this formatter supports.
func (f *GCResultFormatter) SupportedKinds() []ReportKind {
	return []ReportKind{KindResult}
}

// Format outputs the result to the logger.
func (f *GCResultFormatter) Format(v interface{}, log utils.Logger) {
	res, ok := asResult(v)
	if !ok {
		log.Info("(No result available)")
		return
	}
	log.Info("=== %s ===", res.Collector)
	printResult(res, log)
}

// FormatSummary returns a summary map for serialization.
func (f *GCResultFormatter) FormatSummary(v interface{}) map[string]interface{} {
	res, ok := asResult(v)
	if !ok {
		return nil
	}
	return resultSummary(res)
}

func asResult(v interface{}) (*model.GCResult, bool) {
	switch r := v.(type) {
	case *model.GCResult:
		return r, r != nil
	case model.GCResult:
		return &r, true
	}
	return nil, false
}

func printResult(res *model.GCResult, log utils.Logger) {
	log.Info("  Objects Created:  %d", res.ObjectsCreated)
	log.Info("  Objects Left:     %d", res.ObjectsLeft)
	log.Info("  Memory Allocated: %s", formatBytes(res.MemoryAllocated))
	log.Info("  Memory Freed:     %s", formatBytes(res.MemoryFreed))
	log.Info("  Memory Leaked:    %s", formatBytes(res.MemoryLeaked))
	log.Info("  Peak Memory:      %s", formatBytes(res.PeakMemory))
	log.Info("  Recovery:         %.2f%%", res.RecoveryPercent)
	log.Info("  Collections:      %d", res.CollectionsRun)
	log.Info("  Execution Time:   %.3f ms", res.ExecutionTimeMs)
	if len(res.Failures) > 0 {
		log.Info("  Failed Steps:     %d", len(res.Failures))
		for i, fail := range res.Failures {
			if i >= 5 {
				log.Info("    ... and %d more", len(res.Failures)-5)
				break
			}
			log.Info("    step %d %s: %s", fail.Step, fail.Operation, fail.Code)
		}
	}
}

func resultSummary(res *model.GCResult) map[string]interface{} {
	return map[string]interface{}{
		"collector":         res.Collector,
		"objects_created":   res.ObjectsCreated,
		"objects_left":      res.ObjectsLeft,
		"memory_freed":      res.MemoryFreed,
		"memory_leaked":     res.MemoryLeaked,
		"recovery_percent":  res.RecoveryPercent,
		"execution_time_ms": res.ExecutionTimeMs,
		"failures":          len(res.Failures),
	}
}

// ComparisonFormatter formats a multi-collector comparison.
type ComparisonFormatter struct{}

// SupportedKinds returns the report kinds this formatter supports.
func (f *ComparisonFormatter) SupportedKinds() []ReportKind {
	return []ReportKind{KindComparison}
}

// Format outputs the comparison to the logger.
func (f *ComparisonFormatter) Format(v interface{}, log utils.Logger) {
	cmp, ok := asComparison(v)
	if !ok {
		log.Info("(No comparison available)")
		return
	}

	log.Info("=== Simulation Results ===")
	log.Info("Run ID:      %s", cmp.RunID)
	log.Info("Scenario:    %s", cmp.ScenarioName)
	log.Info("Heap Size:   %s", formatBytes(cmp.HeapSize))
	log.Info("Operations:  %d", cmp.Operations)
	log.Info("")

	for i := range cmp.Results {
		log.Info("=== %s ===", cmp.Results[i].Collector)
		printResult(&cmp.Results[i], log)
		log.Info("")
	}

	log.Info("=== Comparison ===")
	if cmp.Agree {
		log.Info("  Collectors agree on the final heap")
	} else {
		log.Info("  Collectors DISAGREE on the final heap")
	}
	if fastest := fastest(cmp.Results); fastest != nil {
		log.Info("  Fastest: %s (%.3f ms)", fastest.Collector, fastest.ExecutionTimeMs)
	}
}

// FormatSummary returns a summary map for serialization.
func (f *ComparisonFormatter) FormatSummary(v interface{}) map[string]interface{} {
	cmp, ok := asComparison(v)
	if !ok {
		return nil
	}
	results := make([]map[string]interface{}, 0, len(cmp.Results))
	for i := range cmp.Results {
		results = append(results, resultSummary(&cmp.Results[i]))
	}
	return map[string]interface{}{
		"run_id":     cmp.RunID,
		"scenario":   cmp.ScenarioName,
		"heap_size":  cmp.HeapSize,
		"operations": cmp.Operations,
		"agree":      cmp.Agree,
		"results":    results,
	}
}

func asComparison(v interface{}) (*model.Comparison, bool) {
	switch c := v.(type) {
	case *model.Comparison:
		return c, c != nil
	case model.Comparison:
		return &c, true
	}
	return nil, false
}

func fastest(results []model.GCResult) *model.GCResult {
	var best *model.GCResult
	for i := range results {
		if best == nil || results[i].ExecutionTimeMs < best.ExecutionTimeMs {
			best = &results[i]
		}
	}
	return best
}
