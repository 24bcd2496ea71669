package gc

import "github.com/mandrykarina/GC/pkg/model"

// Kind is the closed set of collector algorithms.
type Kind int

const (
	KindReferenceCounting Kind = iota
	KindTracing
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindReferenceCounting:
		return "reference_counting"
	case KindTracing:
		return "mark_sweep"
	default:
		return "unknown"
	}
}

// Collector is the contract shared by both algorithms. Only the two
// collectors in this package implement it.
type Collector interface {
	// Kind reports which algorithm the collector runs.
	Kind() Kind

	// Name is the collector label used in logs and reports.
	Name() string

	// Allocate creates an object with an id chosen by the collector.
	Allocate(size uint64) (model.ObjectID, error)

	// AllocateWithID creates an object with a caller-chosen id.
	AllocateWithID(id model.ObjectID, size uint64) error

	// AddReference adds the edge from -> to. It returns false when the edge
	// already existed.
	AddReference(from, to model.ObjectID) (bool, error)

	// RemoveReference drops the edge from -> to. It returns false when the
	// edge did not exist.
	RemoveReference(from, to model.ObjectID) (bool, error)

	MakeRoot(id model.ObjectID) error
	RemoveRoot(id model.ObjectID) error

	// Collect runs a collection and returns the bytes it freed.
	Collect() uint64

	AliveCount() int
	LiveBytes() uint64
	Contains(id model.ObjectID) bool
	IsRoot(id model.ObjectID) bool

	// Step and SetStep carry the driver step number into events.
	Step() uint64
	SetStep(step uint64)

	// DetectLeaks lists live objects unreachable from the root set.
	DetectLeaks() []model.ObjectID

	Snapshot() model.HeapSnapshot

	sealed()
}

// collectorBase holds the state and introspection shared by both variants.
type collectorBase struct {
	heap *Heap
	sink EventSink
	name string
	step uint64
}

func newCollectorBase(name string, o options) collectorBase {
	return collectorBase{
		heap: NewHeap(o.heapLimit),
		sink: o.sink,
		name: name,
	}
}

func (b *collectorBase) sealed() {}

// Name returns the collector label.
func (b *collectorBase) Name() string { return b.name }

// AliveCount returns the number of live objects.
func (b *collectorBase) AliveCount() int { return b.heap.Len() }

// LiveBytes returns the total size of live objects.
func (b *collectorBase) LiveBytes() uint64 { return b.heap.LiveBytes() }

// Contains reports whether id is live.
func (b *collectorBase) Contains(id model.ObjectID) bool { return b.heap.Contains(id) }

// IsRoot reports whether id is rooted.
func (b *collectorBase) IsRoot(id model.ObjectID) bool { return b.heap.IsRoot(id) }

// Step returns the current step number.
func (b *collectorBase) Step() uint64 { return b.step }

// SetStep sets the step number stamped on subsequent events.
func (b *collectorBase) SetStep(step uint64) { b.step = step }

// Heap exposes the underlying store for read-only inspection.
func (b *collectorBase) Heap() *Heap { return b.heap }

// DetectLeaks lists live objects unreachable from the root set.
func (b *collectorBase) DetectLeaks() []model.ObjectID {
	return b.heap.Unreachable()
}

func (b *collectorBase) emit(ev Event) {
	ev.Step = b.step
	ev.Collector = b.name
	ev.LiveBytes = b.heap.LiveBytes()
	ev.AliveCount = b.heap.Len()
	b.sink.OnEvent(ev)
}

func (b *collectorBase) snapshot(refCounts bool) model.HeapSnapshot {
	reach := b.heap.Reachable()
	snap := model.HeapSnapshot{
		Collector:  b.name,
		Step:       b.step,
		AliveCount: b.heap.Len(),
		LiveBytes:  b.heap.LiveBytes(),
		Roots:      b.heap.Roots(),
		Objects:    make([]model.ObjectSnapshot, 0, b.heap.Len()),
	}
	for _, id := range b.heap.IDs() {
		obj, _ := b.heap.Get(id)
		status := model.StatusAlive
		if _, ok := reach[id]; !ok {
			status = model.StatusLeaked
		} else if obj.Marked {
			status = model.StatusMarked
		}
		entry := model.ObjectSnapshot{
			ID:     id,
			Size:   obj.Size,
			Root:   b.heap.IsRoot(id),
			Refs:   obj.Refs(),
			Status: status,
		}
		if refCounts {
			entry.RefCount = obj.RefCount
		}
		snap.Objects = append(snap.Objects, entry)
	}
	return snap
}
