// Package model defines the data structures shared across the simulator.
package model

// ObjectID identifies a heap object while it is live.
type ObjectID int64

// MissingID stands in for an id a scenario step left out. No live object
// ever has it.
const MissingID ObjectID = -1

// ObjectStatus describes an object in a heap snapshot.
type ObjectStatus string

const (
	StatusAlive   ObjectStatus = "alive"
	StatusMarked  ObjectStatus = "marked"
	StatusDeleted ObjectStatus = "deleted"
	StatusLeaked  ObjectStatus = "leaked"
)

// ObjectSnapshot is a point-in-time copy of one heap object.
type ObjectSnapshot struct {
	ID       ObjectID     `json:"id"`
	Size     uint64       `json:"size"`
	RefCount int          `json:"ref_count"`
	Root     bool         `json:"root"`
	Refs     []ObjectID   `json:"refs"`
	Status   ObjectStatus `json:"status"`
}

// HeapSnapshot is a point-in-time copy of a collector heap.
type HeapSnapshot struct {
	Collector  string           `json:"collector"`
	Step       uint64           `json:"step"`
	AliveCount int              `json:"alive_count"`
	LiveBytes  uint64           `json:"live_bytes"`
	Roots      []ObjectID       `json:"roots"`
	Objects    []ObjectSnapshot `json:"objects"`
}

// Object returns the snapshot entry for id.
func (s *HeapSnapshot) Object(id ObjectID) (ObjectSnapshot, bool) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return ObjectSnapshot{}, false
}

// LeakedBytes sums the sizes of objects flagged as leaked.
func (s *HeapSnapshot) LeakedBytes() uint64 {
	var total uint64
	for _, o := range s.Objects {
		if o.Status == StatusLeaked {
			total += o.Size
		}
	}
	return total
}
