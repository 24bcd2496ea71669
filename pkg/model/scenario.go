package model

import (
	"fmt"
	"strings"
)

// OpType is the kind of a scenario operation.
type OpType string

const (
	OpAllocate        OpType = "allocate"
	OpMakeRoot        OpType = "make_root"
	OpRemoveRoot      OpType = "remove_root"
	OpAddReference    OpType = "add_reference"
	OpRemoveReference OpType = "remove_reference"
	OpCollect         OpType = "collect"
)

// ParseOpType maps an operation name, including the short aliases used by
// older scenario files, to an OpType.
func ParseOpType(s string) (OpType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allocate", "alloc":
		return OpAllocate, nil
	case "make_root", "addroot", "add_root":
		return OpMakeRoot, nil
	case "remove_root", "removeroot":
		return OpRemoveRoot, nil
	case "add_reference", "add_ref", "addref":
		return OpAddReference, nil
	case "remove_reference", "remove_ref", "removeref":
		return OpRemoveReference, nil
	case "collect", "gc":
		return OpCollect, nil
	default:
		return "", fmt.Errorf("unknown operation: %q", s)
	}
}

// Operation is a single typed step of a scenario.
type Operation struct {
	Type OpType `json:"op"`
	// ID is the target of root toggles and, when HasID is set, the
	// caller-chosen id of an allocation.
	ID          ObjectID `json:"id,omitempty"`
	HasID       bool     `json:"-"`
	Size        uint64   `json:"size,omitempty"`
	From        ObjectID `json:"from,omitempty"`
	To          ObjectID `json:"to,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Allocate returns an allocation that lets the collector choose the id.
func Allocate(size uint64) Operation {
	return Operation{Type: OpAllocate, Size: size}
}

// AllocateID returns an allocation with a caller-chosen id.
func AllocateID(id ObjectID, size uint64) Operation {
	return Operation{Type: OpAllocate, ID: id, HasID: true, Size: size}
}

// MakeRoot returns a make_root operation.
func MakeRoot(id ObjectID) Operation {
	return Operation{Type: OpMakeRoot, ID: id}
}

// RemoveRoot returns a remove_root operation.
func RemoveRoot(id ObjectID) Operation {
	return Operation{Type: OpRemoveRoot, ID: id}
}

// AddReference returns an add_reference operation.
func AddReference(from, to ObjectID) Operation {
	return Operation{Type: OpAddReference, From: from, To: to}
}

// RemoveReference returns a remove_reference operation.
func RemoveReference(from, to ObjectID) Operation {
	return Operation{Type: OpRemoveReference, From: from, To: to}
}

// Collect returns a collect operation.
func Collect() Operation {
	return Operation{Type: OpCollect}
}

// String renders the operation the way step logs print it.
func (o Operation) String() string {
	switch o.Type {
	case OpAllocate:
		if o.HasID {
			return fmt.Sprintf("ALLOCATE obj_%d (size=%d)", o.ID, o.Size)
		}
		return fmt.Sprintf("ALLOCATE (size=%d)", o.Size)
	case OpMakeRoot:
		return fmt.Sprintf("MAKE_ROOT obj_%d", o.ID)
	case OpRemoveRoot:
		return fmt.Sprintf("REMOVE_ROOT obj_%d", o.ID)
	case OpAddReference:
		return fmt.Sprintf("ADD_REF obj_%d -> obj_%d", o.From, o.To)
	case OpRemoveReference:
		return fmt.Sprintf("REMOVE_REF obj_%d -> obj_%d", o.From, o.To)
	case OpCollect:
		return "COLLECT"
	case "":
		return "<empty>"
	default:
		return strings.ToUpper(string(o.Type))
	}
}

// CollectionType is the collector a scenario file asks for.
type CollectionType string

const (
	CollectionReferenceCounting CollectionType = "reference_counting"
	CollectionMarkSweep         CollectionType = "mark_sweep"
	CollectionCascade           CollectionType = "cascade"
)

// Scenario is an already-parsed ordered operation sequence.
type Scenario struct {
	Name           string         `json:"scenario_name"`
	Description    string         `json:"description,omitempty"`
	HeapSize       uint64         `json:"heap_size"`
	CollectionType CollectionType `json:"collection_type,omitempty"`
	Operations     []Operation    `json:"operations"`
}

// CountOps returns how many operations of type t the scenario holds.
func (s *Scenario) CountOps(t OpType) int {
	n := 0
	for _, op := range s.Operations {
		if op.Type == t {
			n++
		}
	}
	return n
}
