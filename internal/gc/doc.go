// Package gc simulates two heap-management disciplines over explicit object
// graphs: eager reference counting with cascade deletion and deferred
// mark-and-sweep tracing.
//
// # Package Organization
//
// The package is organized into logical groups using file name prefixes:
//
// ## Heap (heap_*.go)
//   - heap_object.go: HeapObject node record with its outgoing edge set
//   - heap_store.go: Heap arena keyed by object id, root set and byte totals
//
// ## Contract (collector.go, options.go, events.go, factory.go)
//   - collector.go: Collector interface closed over Kind, shared base
//   - options.go: construction options (event sink, heap limit, RC mode)
//   - events.go: Event records and EventSink implementations
//   - factory.go: New and ParseKind
//
// ## Reference Counting (rc_*.go)
//   - rc_linker.go: edge invariants and count bookkeeping
//   - rc_cascade.go: worklist cascade deletion
//   - rc_collector.go: ReferenceCountingCollector
//
// ## Mark and Sweep (ms_*.go)
//   - ms_tracer.go: mark phase
//   - ms_sweeper.go: sweep phase
//   - ms_collector.go: TracingCollector
//
// A collector owns its heap exclusively and performs no locking. Run
// concurrent comparisons on separate instances.
//
// # Usage Example
//
//	c := gc.New(gc.KindReferenceCounting, gc.WithEventSink(sink))
//	a, _ := c.Allocate(64)
//	b, _ := c.Allocate(64)
//	_ = c.MakeRoot(a)
//	_, _ = c.AddReference(a, b)
//	_ = c.RemoveRoot(a) // frees a and b
package gc
