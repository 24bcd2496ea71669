package gc

import (
	"fmt"
	"strings"

	"github.com/mandrykarina/GC/pkg/model"
)

// New creates a collector of the given kind.
func New(kind Kind, opts ...Option) Collector {
	switch kind {
	case KindTracing:
		return NewTracing(opts...)
	default:
		return NewReferenceCounting(opts...)
	}
}

// ParseKind maps a collector name to its kind and reference counting mode.
// "cascade" selects reference counting in ModeCascade.
func ParseKind(s string) (Kind, Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rc", "refcount", "reference_counting", "reference-counting":
		return KindReferenceCounting, ModeStrict, nil
	case "cascade":
		return KindReferenceCounting, ModeCascade, nil
	case "ms", "mark_sweep", "mark-sweep", "marksweep", "tracing":
		return KindTracing, ModeStrict, nil
	default:
		return 0, 0, fmt.Errorf("unknown collector: %q", s)
	}
}

// NewByName creates a collector from a name accepted by ParseKind.
func NewByName(name string, opts ...Option) (Collector, error) {
	kind, mode, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, append(opts, WithMode(mode))...), nil
}

// ForCollectionType returns the collector name a scenario file requests.
// An empty type defaults to reference counting.
func ForCollectionType(t model.CollectionType) string {
	switch t {
	case model.CollectionMarkSweep:
		return KindTracing.String()
	case model.CollectionCascade:
		return ModeCascade.String()
	default:
		return KindReferenceCounting.String()
	}
}

// Names lists the collector names accepted for comparison runs.
func Names() []string {
	return []string{KindReferenceCounting.String(), KindTracing.String(), ModeCascade.String()}
}
