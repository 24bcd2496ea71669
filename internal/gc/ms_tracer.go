package gc

import "github.com/mandrykarina/GC/pkg/collections"

// tracer is the mark phase: it flags every object reachable from the roots.
type tracer struct {
	heap *Heap
	emit func(Event)
}

// clear resets every mark flag.
func (t *tracer) clear() {
	for _, obj := range t.heap.objects {
		obj.Marked = false
	}
}

// mark clears old flags and marks from the current roots. Each object is
// visited once, so cycles terminate. It returns the number of marked
// objects.
func (t *tracer) mark() int {
	t.clear()

	marked := 0
	stack := collections.NewStackFrom(t.heap.Roots())
	for !stack.IsEmpty() {
		id, _ := stack.Pop()

		obj, ok := t.heap.Get(id)
		if !ok || obj.Marked {
			continue
		}
		obj.Marked = true
		marked++
		t.emit(Event{Kind: EventMark, Object: id, Size: obj.Size})

		for ref := range obj.refs {
			if child, ok := t.heap.Get(ref); ok && !child.Marked {
				stack.Push(ref)
			}
		}
	}
	return marked
}
