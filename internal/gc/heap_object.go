package gc

import (
	"slices"

	"github.com/samber/lo"

	"github.com/mandrykarina/GC/pkg/model"
)

// HeapObject is a node of the simulated heap.
type HeapObject struct {
	ID   model.ObjectID
	Size uint64

	// RefCount is maintained by the reference counting collector only.
	RefCount int

	// Marked is only meaningful while a tracing collection is running.
	Marked bool

	refs map[model.ObjectID]struct{}
}

func newHeapObject(id model.ObjectID, size uint64) *HeapObject {
	return &HeapObject{
		ID:   id,
		Size: size,
		refs: make(map[model.ObjectID]struct{}),
	}
}

// HasRef reports whether the object has an edge to id.
func (o *HeapObject) HasRef(id model.ObjectID) bool {
	_, ok := o.refs[id]
	return ok
}

// Refs returns the outgoing edges in ascending id order.
func (o *HeapObject) Refs() []model.ObjectID {
	ids := lo.Keys(o.refs)
	slices.Sort(ids)
	return ids
}

// OutDegree returns the number of outgoing edges.
func (o *HeapObject) OutDegree() int {
	return len(o.refs)
}

func (o *HeapObject) addRef(id model.ObjectID) bool {
	if _, ok := o.refs[id]; ok {
		return false
	}
	o.refs[id] = struct{}{}
	return true
}

func (o *HeapObject) removeRef(id model.ObjectID) bool {
	if _, ok := o.refs[id]; !ok {
		return false
	}
	delete(o.refs, id)
	return true
}
