package gc

import (
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// referenceLinker enforces edge invariants and keeps reference counts in
// step with edges and root membership.
type referenceLinker struct {
	heap *Heap
}

// endpoints resolves both ends of an edge.
func (l *referenceLinker) endpoints(from, to model.ObjectID) (*HeapObject, *HeapObject, error) {
	src, err := l.heap.lookup(from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := l.heap.lookup(to)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// link adds from -> to and counts it on the target. It reports false when
// the edge already existed.
func (l *referenceLinker) link(from, to model.ObjectID) (*HeapObject, bool, error) {
	src, dst, err := l.endpoints(from, to)
	if err != nil {
		return nil, false, err
	}
	if from == to {
		return nil, false, apperrors.Newf(apperrors.CodeSelfReference, "object %d cannot reference itself", from)
	}
	if !src.addRef(to) {
		return dst, false, nil
	}
	dst.RefCount++
	return dst, true, nil
}

// unlink removes from -> to and uncounts it. It reports false when the edge
// did not exist.
func (l *referenceLinker) unlink(from, to model.ObjectID) (*HeapObject, bool, error) {
	src, dst, err := l.endpoints(from, to)
	if err != nil {
		return nil, false, err
	}
	if !src.removeRef(to) {
		return dst, false, nil
	}
	if err := l.release(dst); err != nil {
		return nil, false, err
	}
	return dst, true, nil
}

// retain counts a root reference.
func (l *referenceLinker) retain(obj *HeapObject) {
	obj.RefCount++
}

// release drops one count from obj.
func (l *referenceLinker) release(obj *HeapObject) error {
	if obj.RefCount <= 0 {
		return apperrors.Newf(apperrors.CodeInvariantViolation,
			"object %d released with ref_count %d", obj.ID, obj.RefCount)
	}
	obj.RefCount--
	return nil
}

// verify recomputes every count from edges and roots and reports the first
// mismatch.
func (l *referenceLinker) verify() error {
	incoming := l.heap.incomingCounts()
	for _, id := range l.heap.IDs() {
		obj, _ := l.heap.Get(id)
		want := incoming[id]
		if l.heap.IsRoot(id) {
			want++
		}
		if obj.RefCount != want {
			return apperrors.Newf(apperrors.CodeInvariantViolation,
				"object %d has ref_count %d, expected %d", id, obj.RefCount, want)
		}
	}
	return nil
}
