package model

import "time"

// OperationFailure records a scenario step the collector rejected.
type OperationFailure struct {
	Step      int    `json:"step"`
	Operation string `json:"operation"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// GCResult summarizes one scenario replay against one collector.
type GCResult struct {
	Collector       string             `json:"collector"`
	ObjectsCreated  int                `json:"objects_created"`
	ObjectsLeft     int                `json:"objects_left"`
	MemoryAllocated uint64             `json:"memory_allocated"`
	MemoryFreed     uint64             `json:"memory_freed"`
	MemoryLeaked    uint64             `json:"memory_leaked"`
	PeakMemory      uint64             `json:"peak_memory"`
	RecoveryPercent float64            `json:"recovery_percent"`
	CollectionsRun  int                `json:"collections_run"`
	ObjectsFreed    int                `json:"objects_freed"`
	ExecutionTimeMs float64            `json:"execution_time_ms"`
	Failures        []OperationFailure `json:"failures,omitempty"`
	Snapshot        *HeapSnapshot      `json:"snapshot,omitempty"`
}

// Comparison holds the results of one scenario replayed against several
// collectors.
type Comparison struct {
	RunID        string     `json:"run_id"`
	ScenarioName string     `json:"scenario_name"`
	HeapSize     uint64     `json:"heap_size"`
	Operations   int        `json:"operations"`
	Results      []GCResult `json:"results"`
	// Agree is true when every collector ended with the same live objects
	// and live bytes.
	Agree     bool      `json:"agree"`
	CreatedAt time.Time `json:"created_at"`
}

// Result returns the result recorded for the named collector.
func (c *Comparison) Result(collector string) (*GCResult, bool) {
	for i := range c.Results {
		if c.Results[i].Collector == collector {
			return &c.Results[i], true
		}
	}
	return nil, false
}

// BenchCase is one measured point of a performance sweep.
type BenchCase struct {
	Graph         string  `json:"graph"`
	Collector     string  `json:"collector"`
	Objects       int     `json:"objects"`
	ObjectSize    uint64  `json:"object_size"`
	ObjectsLeft   int     `json:"objects_left"`
	MemoryFreed   uint64  `json:"memory_freed"`
	MemoryLeaked  uint64  `json:"memory_leaked"`
	ReclaimTimeMs float64 `json:"reclaim_time_ms"`
	Error         string  `json:"error,omitempty"`
}
