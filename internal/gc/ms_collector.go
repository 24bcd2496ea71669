package gc

import (
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// TracingCollector defers all reclamation to Collect, which marks from the
// roots and sweeps everything left unmarked. Roots form a plain set.
type TracingCollector struct {
	collectorBase
	tracer  *tracer
	sweeper *sweeper

	collections  int
	freedBytes   uint64
	freedObjects int
	lastSweep    sweepResult
}

// NewTracing creates a mark-and-sweep collector.
func NewTracing(opts ...Option) *TracingCollector {
	o := buildOptions(opts)
	c := &TracingCollector{
		collectorBase: newCollectorBase(KindTracing.String(), o),
	}
	c.tracer = &tracer{heap: c.heap, emit: c.emit}
	c.sweeper = &sweeper{heap: c.heap, emit: c.emit}
	return c
}

// Kind returns KindTracing.
func (c *TracingCollector) Kind() Kind { return KindTracing }

// Allocate creates an object with the next unused id.
func (c *TracingCollector) Allocate(size uint64) (model.ObjectID, error) {
	id := c.heap.nextFreeID()
	if err := c.AllocateWithID(id, size); err != nil {
		return 0, err
	}
	return id, nil
}

// AllocateWithID creates object id with no edges.
func (c *TracingCollector) AllocateWithID(id model.ObjectID, size uint64) error {
	if _, err := c.heap.insert(id, size); err != nil {
		return err
	}
	c.emit(Event{Kind: EventAllocate, Object: id, Size: size})
	return nil
}

// AddReference adds from -> to. Repeating an existing edge is a no-op.
func (c *TracingCollector) AddReference(from, to model.ObjectID) (bool, error) {
	src, err := c.heap.lookup(from)
	if err != nil {
		return false, err
	}
	dst, err := c.heap.lookup(to)
	if err != nil {
		return false, err
	}
	if from == to {
		return false, apperrors.Newf(apperrors.CodeSelfReference, "object %d cannot reference itself", from)
	}
	if !src.addRef(to) {
		return false, nil
	}
	c.emit(Event{Kind: EventAddRef, Object: from, Target: to, Size: dst.Size})
	return true, nil
}

// RemoveReference drops from -> to. Nothing is reclaimed until Collect.
func (c *TracingCollector) RemoveReference(from, to model.ObjectID) (bool, error) {
	src, err := c.heap.lookup(from)
	if err != nil {
		return false, err
	}
	dst, err := c.heap.lookup(to)
	if err != nil {
		return false, err
	}
	if !src.removeRef(to) {
		return false, nil
	}
	c.emit(Event{Kind: EventRemoveRef, Object: from, Target: to, Size: dst.Size})
	return true, nil
}

// MakeRoot adds id to the root set. Re-adding is a no-op.
func (c *TracingCollector) MakeRoot(id model.ObjectID) error {
	obj, err := c.heap.lookup(id)
	if err != nil {
		return err
	}
	if c.heap.setRoot(id) {
		c.emit(Event{Kind: EventMakeRoot, Object: id, Size: obj.Size})
	}
	return nil
}

// RemoveRoot drops id from the root set. Removing a non-root is a no-op.
func (c *TracingCollector) RemoveRoot(id model.ObjectID) error {
	obj, err := c.heap.lookup(id)
	if err != nil {
		return err
	}
	if c.heap.clearRoot(id) {
		c.emit(Event{Kind: EventRemoveRoot, Object: id, Size: obj.Size})
	}
	return nil
}

// Collect marks from the roots, sweeps unmarked objects and returns the
// bytes freed. Every mark flag is false when it returns.
func (c *TracingCollector) Collect() uint64 {
	c.emit(Event{Kind: EventCollectStart})

	c.tracer.mark()
	res := c.sweeper.sweep()

	c.collections++
	c.freedBytes += res.FreedBytes
	c.freedObjects += res.FreedObjects
	c.lastSweep = res

	c.emit(Event{Kind: EventCollectEnd, FreedBytes: res.FreedBytes, FreedObjects: res.FreedObjects})
	return res.FreedBytes
}

// Collections returns how many times Collect ran.
func (c *TracingCollector) Collections() int { return c.collections }

// FreedBytes returns the bytes reclaimed by all collections.
func (c *TracingCollector) FreedBytes() uint64 { return c.freedBytes }

// FreedObjects returns the number of objects reclaimed by all collections.
func (c *TracingCollector) FreedObjects() int { return c.freedObjects }

// LastFreedObjects returns the number of objects the last Collect freed.
func (c *TracingCollector) LastFreedObjects() int { return c.lastSweep.FreedObjects }

// VerifyInvariants checks that no mark survives outside a collection and
// that survivors only reference live objects.
func (c *TracingCollector) VerifyInvariants() error {
	for _, id := range c.heap.IDs() {
		obj, _ := c.heap.Get(id)
		if obj.Marked {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "object %d still marked", id)
		}
		for ref := range obj.refs {
			if !c.heap.Contains(ref) {
				return apperrors.Newf(apperrors.CodeInvariantViolation,
					"object %d references freed object %d", id, ref)
			}
		}
	}
	return nil
}

// Snapshot copies the heap. Reference counts are not tracked.
func (c *TracingCollector) Snapshot() model.HeapSnapshot {
	return c.snapshot(false)
}
