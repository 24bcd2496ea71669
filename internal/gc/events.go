package gc

import "github.com/mandrykarina/GC/pkg/model"

// EventKind identifies what happened inside a collector.
type EventKind string

const (
	EventAllocate     EventKind = "allocate"
	EventMakeRoot     EventKind = "make_root"
	EventRemoveRoot   EventKind = "remove_root"
	EventAddRef       EventKind = "add_ref"
	EventRemoveRef    EventKind = "remove_ref"
	EventDecrement    EventKind = "decrement"
	EventFree         EventKind = "free"
	EventMark         EventKind = "mark"
	EventCollectStart EventKind = "collect_start"
	EventCollectEnd   EventKind = "collect_end"
)

// Event is delivered synchronously to an EventSink after each state change.
type Event struct {
	Step      uint64    `json:"step"`
	Collector string    `json:"collector"`
	Kind      EventKind `json:"kind"`

	// Object is the subject of the event; Target is the edge target for
	// reference events.
	Object model.ObjectID `json:"object"`
	Target model.ObjectID `json:"target,omitempty"`
	Size   uint64         `json:"size,omitempty"`

	// RefBefore and RefAfter carry the reference count of the counted
	// object around the change. They are zero for the tracing collector.
	RefBefore int `json:"ref_before,omitempty"`
	RefAfter  int `json:"ref_after,omitempty"`

	// FreedBytes and FreedObjects are set on free and collect_end events.
	FreedBytes   uint64 `json:"freed_bytes,omitempty"`
	FreedObjects int    `json:"freed_objects,omitempty"`

	// Cumulative heap totals after the event.
	LiveBytes  uint64 `json:"live_bytes"`
	AliveCount int    `json:"alive_count"`
}

// EventSink receives collector events. Return values are not observed, so
// implementations must not fail.
type EventSink interface {
	OnEvent(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev Event)

// OnEvent calls f(ev).
func (f EventSinkFunc) OnEvent(ev Event) {
	f(ev)
}

// NopSink discards all events.
type NopSink struct{}

// OnEvent does nothing.
func (NopSink) OnEvent(Event) {}

// MultiSink fans an event out to several sinks in order.
type MultiSink []EventSink

// OnEvent forwards ev to every non-nil sink.
func (m MultiSink) OnEvent(ev Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(ev)
		}
	}
}

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

// OnEvent appends ev.
func (r *Recorder) OnEvent(ev Event) {
	r.Events = append(r.Events, ev)
}

// OfKind returns the recorded events of the given kind.
func (r *Recorder) OfKind(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.Events = r.Events[:0]
}
