package gc

// Mode selects how the reference counting collector reports reclamation.
type Mode int

const (
	// ModeStrict frees eagerly and Collect always returns 0.
	ModeStrict Mode = iota
	// ModeCascade frees eagerly and Collect drains the bytes freed by
	// cascades since the previous Collect.
	ModeCascade
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeCascade:
		return "cascade"
	default:
		return "unknown"
	}
}

type options struct {
	sink      EventSink
	heapLimit uint64
	mode      Mode
}

// Option configures a collector.
type Option func(*options)

// WithEventSink sets the sink that receives collector events.
func WithEventSink(sink EventSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithHeapLimit caps live bytes. Allocations past the limit fail with
// HEAP_EXHAUSTED. Zero means unlimited.
func WithHeapLimit(limit uint64) Option {
	return func(o *options) {
		o.heapLimit = limit
	}
}

// WithMode sets the reference counting mode. Tracing collectors ignore it.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

func buildOptions(opts []Option) options {
	o := options{sink: NopSink{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
