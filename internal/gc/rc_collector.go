package gc

import (
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// ReferenceCountingCollector reclaims an object the moment its reference
// count reaches zero. Roots contribute one count each. Cycles that lose
// their last external reference are never reclaimed.
type ReferenceCountingCollector struct {
	collectorBase
	linker  *referenceLinker
	cascade *cascadeDeleter
	mode    Mode

	// pendingFreed accumulates cascade frees between Collect calls in
	// ModeCascade.
	pendingFreed uint64
	freedBytes   uint64
	freedObjects int
}

// NewReferenceCounting creates a reference counting collector.
func NewReferenceCounting(opts ...Option) *ReferenceCountingCollector {
	o := buildOptions(opts)
	name := KindReferenceCounting.String()
	if o.mode == ModeCascade {
		name = ModeCascade.String()
	}
	c := &ReferenceCountingCollector{
		collectorBase: newCollectorBase(name, o),
		mode:          o.mode,
	}
	c.linker = &referenceLinker{heap: c.heap}
	c.cascade = &cascadeDeleter{heap: c.heap, linker: c.linker, emit: c.emit}
	return c
}

// Kind returns KindReferenceCounting.
func (c *ReferenceCountingCollector) Kind() Kind { return KindReferenceCounting }

// Mode returns the operating mode.
func (c *ReferenceCountingCollector) Mode() Mode { return c.mode }

// Allocate creates an object with the next unused id.
func (c *ReferenceCountingCollector) Allocate(size uint64) (model.ObjectID, error) {
	id := c.heap.nextFreeID()
	if err := c.AllocateWithID(id, size); err != nil {
		return 0, err
	}
	return id, nil
}

// AllocateWithID creates object id with ref_count 0.
func (c *ReferenceCountingCollector) AllocateWithID(id model.ObjectID, size uint64) error {
	if _, err := c.heap.insert(id, size); err != nil {
		return err
	}
	c.emit(Event{Kind: EventAllocate, Object: id, Size: size})
	return nil
}

// AddReference adds from -> to and increments the target count once.
func (c *ReferenceCountingCollector) AddReference(from, to model.ObjectID) (bool, error) {
	dst, added, err := c.linker.link(from, to)
	if err != nil {
		return false, err
	}
	if added {
		c.emit(Event{Kind: EventAddRef, Object: from, Target: to, Size: dst.Size,
			RefBefore: dst.RefCount - 1, RefAfter: dst.RefCount})
	}
	return added, nil
}

// RemoveReference drops from -> to. When the target count reaches zero and
// the target is not rooted it is cascade deleted.
func (c *ReferenceCountingCollector) RemoveReference(from, to model.ObjectID) (bool, error) {
	dst, removed, err := c.linker.unlink(from, to)
	if err != nil || !removed {
		return false, err
	}
	c.emit(Event{Kind: EventRemoveRef, Object: from, Target: to, Size: dst.Size,
		RefBefore: dst.RefCount + 1, RefAfter: dst.RefCount})
	if dst.RefCount == 0 && !c.heap.IsRoot(to) {
		if err := c.reclaim(to); err != nil {
			return true, err
		}
	}
	return true, nil
}

// MakeRoot roots id and counts the root reference. Rooting an already
// rooted object is a caller error.
func (c *ReferenceCountingCollector) MakeRoot(id model.ObjectID) error {
	obj, err := c.heap.lookup(id)
	if err != nil {
		return err
	}
	if !c.heap.setRoot(id) {
		return apperrors.Newf(apperrors.CodeDuplicateRoot, "object %d is already a root", id)
	}
	c.linker.retain(obj)
	c.emit(Event{Kind: EventMakeRoot, Object: id, Size: obj.Size,
		RefBefore: obj.RefCount - 1, RefAfter: obj.RefCount})
	return nil
}

// RemoveRoot unroots id and drops the root reference, cascading when the
// count reaches zero.
func (c *ReferenceCountingCollector) RemoveRoot(id model.ObjectID) error {
	obj, err := c.heap.lookup(id)
	if err != nil {
		return err
	}
	if !c.heap.clearRoot(id) {
		return apperrors.Newf(apperrors.CodeDuplicateRoot, "object %d is not a root", id)
	}
	before := obj.RefCount
	if err := c.linker.release(obj); err != nil {
		return err
	}
	c.emit(Event{Kind: EventRemoveRoot, Object: id, Size: obj.Size,
		RefBefore: before, RefAfter: obj.RefCount})
	if obj.RefCount == 0 {
		return c.reclaim(id)
	}
	return nil
}

// Collect reclaims nothing. In ModeCascade it reports the bytes cascades
// freed since the previous call.
func (c *ReferenceCountingCollector) Collect() uint64 {
	c.emit(Event{Kind: EventCollectStart})
	var reported uint64
	if c.mode == ModeCascade {
		reported = c.pendingFreed
		c.pendingFreed = 0
	}
	c.emit(Event{Kind: EventCollectEnd, FreedBytes: reported})
	return reported
}

// RefCount returns the reference count of a live object.
func (c *ReferenceCountingCollector) RefCount(id model.ObjectID) (int, bool) {
	obj, ok := c.heap.Get(id)
	if !ok {
		return 0, false
	}
	return obj.RefCount, true
}

// FreedBytes returns the bytes reclaimed by cascades so far.
func (c *ReferenceCountingCollector) FreedBytes() uint64 { return c.freedBytes }

// FreedObjects returns the number of objects reclaimed by cascades so far.
func (c *ReferenceCountingCollector) FreedObjects() int { return c.freedObjects }

// DetectLeaks lists live objects that still hold a positive count but are
// unreachable from every root.
func (c *ReferenceCountingCollector) DetectLeaks() []model.ObjectID {
	var leaks []model.ObjectID
	for _, id := range c.heap.Unreachable() {
		if obj, ok := c.heap.Get(id); ok && obj.RefCount > 0 {
			leaks = append(leaks, id)
		}
	}
	return leaks
}

// VerifyInvariants checks every count against edges and roots.
func (c *ReferenceCountingCollector) VerifyInvariants() error {
	return c.linker.verify()
}

// Snapshot copies the heap including reference counts.
func (c *ReferenceCountingCollector) Snapshot() model.HeapSnapshot {
	return c.snapshot(true)
}

func (c *ReferenceCountingCollector) reclaim(id model.ObjectID) error {
	res, err := c.cascade.run(id)
	c.freedBytes += res.FreedBytes
	c.freedObjects += res.FreedObjects
	c.pendingFreed += res.FreedBytes
	return err
}
