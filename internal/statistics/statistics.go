// Package statistics accumulates memory and collection statistics from
// collector events.
package statistics

import (
	"time"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// MemoryStats summarizes heap usage over a run.
type MemoryStats struct {
	TotalAllocated uint64 `json:"total_allocated"`
	TotalFreed     uint64 `json:"total_freed"`
	PeakMemory     uint64 `json:"peak_memory"`
	// LeakedMemory is the size of live objects unreachable from the roots
	// when the stats were finalized.
	LeakedMemory    uint64  `json:"leaked_memory"`
	RecoveryPercent float64 `json:"recovery_percent"`
}

// GCStats summarizes collect calls over a run.
type GCStats struct {
	CollectionsRun      int             `json:"collections_run"`
	ObjectsCollected    int             `json:"objects_collected"`
	MemoryFreed         uint64          `json:"memory_freed"`
	CollectionTimes     []time.Duration `json:"collection_times"`
	TotalCollectionTime time.Duration   `json:"total_collection_time"`
}

// AverageCollectionTime returns the mean collect duration.
func (s GCStats) AverageCollectionTime() time.Duration {
	if s.CollectionsRun == 0 {
		return 0
	}
	return s.TotalCollectionTime / time.Duration(s.CollectionsRun)
}

// Tracker is a gc.EventSink that keeps MemoryStats and GCStats for one
// collector. It is not safe for concurrent use, matching the collectors.
type Tracker struct {
	clock          utils.Clock
	mem            MemoryStats
	gc             GCStats
	objectsCreated int
	objectsFreed   int
	collectStart   time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock sets the clock used to time collect calls.
func WithClock(clock utils.Clock) TrackerOption {
	return func(t *Tracker) {
		t.clock = clock
	}
}

// NewTracker creates a new Tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{clock: utils.NewRealClock()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnEvent updates the statistics.
func (t *Tracker) OnEvent(ev gc.Event) {
	switch ev.Kind {
	case gc.EventAllocate:
		t.mem.TotalAllocated += ev.Size
		t.objectsCreated++
		t.mem.PeakMemory = max(t.mem.PeakMemory, ev.LiveBytes)
	case gc.EventFree:
		t.mem.TotalFreed += ev.FreedBytes
		t.objectsFreed += ev.FreedObjects
	case gc.EventCollectStart:
		t.collectStart = t.clock.Now()
	case gc.EventCollectEnd:
		elapsed := t.clock.Since(t.collectStart)
		t.gc.CollectionsRun++
		t.gc.ObjectsCollected += ev.FreedObjects
		t.gc.MemoryFreed += ev.FreedBytes
		t.gc.CollectionTimes = append(t.gc.CollectionTimes, elapsed)
		t.gc.TotalCollectionTime += elapsed
	}
}

// Memory returns the memory statistics accumulated so far.
func (t *Tracker) Memory() MemoryStats {
	m := t.mem
	if m.TotalAllocated > 0 {
		m.RecoveryPercent = float64(m.TotalFreed) / float64(m.TotalAllocated) * 100
	}
	return m
}

// GC returns the collection statistics accumulated so far.
func (t *Tracker) GC() GCStats {
	s := t.gc
	s.CollectionTimes = append([]time.Duration(nil), t.gc.CollectionTimes...)
	return s
}

// ObjectsCreated returns how many allocations succeeded.
func (t *Tracker) ObjectsCreated() int { return t.objectsCreated }

// Finalize records the leaked bytes of c's current heap and returns the
// run summary. The snapshot is attached when withSnapshot is set.
func (t *Tracker) Finalize(c gc.Collector, withSnapshot bool) model.GCResult {
	snap := c.Snapshot()
	t.mem.LeakedMemory = snap.LeakedBytes()
	mem := t.Memory()

	res := model.GCResult{
		Collector:       c.Name(),
		ObjectsCreated:  t.objectsCreated,
		ObjectsLeft:     c.AliveCount(),
		MemoryAllocated: mem.TotalAllocated,
		MemoryFreed:     mem.TotalFreed,
		MemoryLeaked:    mem.LeakedMemory,
		PeakMemory:      mem.PeakMemory,
		RecoveryPercent: mem.RecoveryPercent,
		CollectionsRun:  t.gc.CollectionsRun,
		ObjectsFreed:    t.objectsFreed,
	}
	if withSnapshot {
		res.Snapshot = &snap
	}
	return res
}
