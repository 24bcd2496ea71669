package gc

// sweeper is the reclamation phase. It walks the whole heap, so its cost
// follows total object count rather than the size of the dead subgraph.
type sweeper struct {
	heap *Heap
	emit func(Event)
}

// sweepResult totals one sweep.
type sweepResult struct {
	FreedBytes   uint64
	FreedObjects int
	Survivors    int
}

// sweep removes unmarked objects and clears the marks of survivors.
func (s *sweeper) sweep() sweepResult {
	var res sweepResult
	for _, id := range s.heap.IDs() {
		obj, _ := s.heap.Get(id)
		if obj.Marked {
			obj.Marked = false
			res.Survivors++
			continue
		}
		s.heap.remove(id)
		res.FreedBytes += obj.Size
		res.FreedObjects++
		s.emit(Event{Kind: EventFree, Object: id, Size: obj.Size, FreedBytes: obj.Size, FreedObjects: 1})
	}
	return res
}
