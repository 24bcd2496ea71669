package gc

import (
	"slices"

	"github.com/samber/lo"

	"github.com/mandrykarina/GC/pkg/collections"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// Heap owns every live HeapObject keyed by id together with the root set.
type Heap struct {
	objects   map[model.ObjectID]*HeapObject
	roots     map[model.ObjectID]struct{}
	liveBytes uint64
	limit     uint64 // 0 means unlimited

	// nextID is greater than every id ever inserted, so auto-assigned ids
	// are never reused.
	nextID model.ObjectID
}

// NewHeap creates an empty heap. A zero limit disables the byte budget.
func NewHeap(limit uint64) *Heap {
	return &Heap{
		objects: make(map[model.ObjectID]*HeapObject),
		roots:   make(map[model.ObjectID]struct{}),
		limit:   limit,
	}
}

// Get returns the live object with the given id.
func (h *Heap) Get(id model.ObjectID) (*HeapObject, bool) {
	obj, ok := h.objects[id]
	return obj, ok
}

// Contains reports whether id is live.
func (h *Heap) Contains(id model.ObjectID) bool {
	_, ok := h.objects[id]
	return ok
}

// lookup returns the live object or an UnknownObject error.
func (h *Heap) lookup(id model.ObjectID) (*HeapObject, error) {
	obj, ok := h.objects[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeUnknownObject, "object %d is not live", id)
	}
	return obj, nil
}

func (h *Heap) insert(id model.ObjectID, size uint64) (*HeapObject, error) {
	if id < 0 {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "object id %d is negative", id)
	}
	if _, ok := h.objects[id]; ok {
		return nil, apperrors.Newf(apperrors.CodeDuplicateID, "object %d already exists", id)
	}
	if h.limit > 0 && h.liveBytes+size > h.limit {
		return nil, apperrors.Newf(apperrors.CodeHeapExhausted,
			"allocating %d bytes exceeds heap limit %d (live %d)", size, h.limit, h.liveBytes)
	}

	obj := newHeapObject(id, size)
	h.objects[id] = obj
	h.liveBytes += size
	if id >= h.nextID {
		h.nextID = id + 1
	}
	return obj, nil
}

func (h *Heap) remove(id model.ObjectID) (*HeapObject, bool) {
	obj, ok := h.objects[id]
	if !ok {
		return nil, false
	}
	delete(h.objects, id)
	delete(h.roots, id)
	h.liveBytes -= obj.Size
	return obj, true
}

// nextFreeID returns the id the next auto-assigned allocation will use.
func (h *Heap) nextFreeID() model.ObjectID {
	return h.nextID
}

// IsRoot reports whether id is in the root set.
func (h *Heap) IsRoot(id model.ObjectID) bool {
	_, ok := h.roots[id]
	return ok
}

func (h *Heap) setRoot(id model.ObjectID) bool {
	if _, ok := h.roots[id]; ok {
		return false
	}
	h.roots[id] = struct{}{}
	return true
}

func (h *Heap) clearRoot(id model.ObjectID) bool {
	if _, ok := h.roots[id]; !ok {
		return false
	}
	delete(h.roots, id)
	return true
}

// Roots returns the root ids in ascending order.
func (h *Heap) Roots() []model.ObjectID {
	ids := lo.Keys(h.roots)
	slices.Sort(ids)
	return ids
}

// IDs returns every live id in ascending order.
func (h *Heap) IDs() []model.ObjectID {
	ids := lo.Keys(h.objects)
	slices.Sort(ids)
	return ids
}

// Len returns the number of live objects.
func (h *Heap) Len() int {
	return len(h.objects)
}

// LiveBytes returns the total size of live objects.
func (h *Heap) LiveBytes() uint64 {
	return h.liveBytes
}

// Limit returns the heap byte budget, 0 when unlimited.
func (h *Heap) Limit() uint64 {
	return h.limit
}

// EdgeCount returns the number of edges between live objects.
func (h *Heap) EdgeCount() int {
	n := 0
	for _, obj := range h.objects {
		n += obj.OutDegree()
	}
	return n
}

// Reachable returns the ids reachable from the root set. It does not touch
// mark flags.
func (h *Heap) Reachable() map[model.ObjectID]struct{} {
	seen := make(map[model.ObjectID]struct{}, len(h.objects))
	stack := collections.NewStackFrom(h.Roots())
	for !stack.IsEmpty() {
		id, _ := stack.Pop()
		if _, ok := seen[id]; ok {
			continue
		}
		obj, ok := h.objects[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		for ref := range obj.refs {
			if _, ok := seen[ref]; !ok {
				stack.Push(ref)
			}
		}
	}
	return seen
}

// Unreachable returns live ids not reachable from any root, ascending.
func (h *Heap) Unreachable() []model.ObjectID {
	reach := h.Reachable()
	return lo.Filter(h.IDs(), func(id model.ObjectID, _ int) bool {
		_, ok := reach[id]
		return !ok
	})
}

// incomingCounts returns, for every live object, how many live objects
// reference it.
func (h *Heap) incomingCounts() map[model.ObjectID]int {
	counts := make(map[model.ObjectID]int, len(h.objects))
	for _, obj := range h.objects {
		for ref := range obj.refs {
			counts[ref]++
		}
	}
	return counts
}
