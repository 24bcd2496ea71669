package gc

import (
	"github.com/mandrykarina/GC/pkg/collections"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// cascadeDeleter frees an object whose count reached zero and everything
// that loses its last reference as a result. It uses an explicit worklist
// so deep chains do not grow the goroutine stack.
type cascadeDeleter struct {
	heap   *Heap
	linker *referenceLinker
	emit   func(Event)
}

// cascadeResult totals one cascade.
type cascadeResult struct {
	FreedBytes   uint64
	FreedObjects int
	Freed        []model.ObjectID
}

// run deletes id, which must be live with ref_count 0.
func (d *cascadeDeleter) run(id model.ObjectID) (cascadeResult, error) {
	var res cascadeResult

	obj, err := d.heap.lookup(id)
	if err != nil {
		return res, err
	}
	if obj.RefCount != 0 {
		return res, apperrors.Newf(apperrors.CodeInvariantViolation,
			"cascade deletion of object %d with ref_count %d", id, obj.RefCount)
	}

	worklist := collections.NewStack[model.ObjectID](1)
	worklist.Push(id)
	for !worklist.IsEmpty() {
		cur, _ := worklist.Pop()

		obj, ok := d.heap.Get(cur)
		if !ok {
			continue
		}
		children := obj.Refs()
		d.heap.remove(cur)
		res.FreedBytes += obj.Size
		res.FreedObjects++
		res.Freed = append(res.Freed, cur)
		d.emit(Event{Kind: EventFree, Object: cur, Size: obj.Size, FreedBytes: obj.Size, FreedObjects: 1})

		for _, childID := range children {
			child, ok := d.heap.Get(childID)
			if !ok {
				continue
			}
			before := child.RefCount
			if err := d.linker.release(child); err != nil {
				return res, err
			}
			d.emit(Event{Kind: EventDecrement, Object: childID, Target: cur, Size: child.Size,
				RefBefore: before, RefAfter: child.RefCount})
			if child.RefCount == 0 && !d.heap.IsRoot(childID) {
				worklist.Push(childID)
			}
		}
	}
	return res, nil
}
