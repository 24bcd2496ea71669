package scenario

import (
	"fmt"
	"strings"

	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// GraphKind is the shape of a generated object graph.
type GraphKind string

const (
	// GraphLinear links object i to i+1.
	GraphLinear GraphKind = "linear"
	// GraphCycle is a linear chain whose last object points back to 0.
	GraphCycle GraphKind = "cycle"
	// GraphTree is a binary tree where object i points to 2i+1 and 2i+2.
	GraphTree GraphKind = "tree"
)

// Minimums for generated graphs.
const (
	MinObjects    = 2
	MinObjectSize = 8
)

// GraphKinds lists the generated graph shapes.
func GraphKinds() []GraphKind {
	return []GraphKind{GraphLinear, GraphCycle, GraphTree}
}

// ParseGraphKind maps a scenario name, including the preset names served by
// the API, to a graph kind.
func ParseGraphKind(s string) (GraphKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "basic", "chain":
		return GraphLinear, nil
	case "cycle", "cyclic", "cycle_leak":
		return GraphCycle, nil
	case "tree", "cascade", "cascade_delete":
		return GraphTree, nil
	default:
		return "", apperrors.Newf(apperrors.CodeInvalidInput, "unknown scenario type %q", s)
	}
}

// Presets lists the scenario names accepted by ParseGraphKind that the API
// advertises.
func Presets() []string {
	return []string{"basic", "cycle_leak", "linear", "cycle", "tree"}
}

// GenerateConfig describes a generated scenario.
type GenerateConfig struct {
	Kind       GraphKind
	NumObjects int
	ObjectSize uint64
	HeapSize   uint64
}

// Validate checks the generator minimums, that the graph fits the heap and,
// when limits is non-nil, the configured bounds.
func (c GenerateConfig) Validate(limits *config.LimitsConfig) error {
	if c.NumObjects < MinObjects {
		return apperrors.Newf(apperrors.CodeInvalidInput, "num_objects must be at least %d", MinObjects)
	}
	if c.ObjectSize < MinObjectSize {
		return apperrors.Newf(apperrors.CodeInvalidInput, "object_size must be at least %d", MinObjectSize)
	}
	if need := uint64(c.NumObjects) * c.ObjectSize; c.HeapSize > 0 && need > c.HeapSize {
		return apperrors.Newf(apperrors.CodeInvalidInput,
			"%d objects of %d bytes need %d bytes, heap holds %d", c.NumObjects, c.ObjectSize, need, c.HeapSize)
	}
	if limits != nil {
		return limits.Check(c.HeapSize, c.NumObjects, c.ObjectSize)
	}
	return nil
}

// Edges returns the edges of a graph of kind with n objects.
func Edges(kind GraphKind, n int) [][2]model.ObjectID {
	var edges [][2]model.ObjectID
	switch kind {
	case GraphTree:
		for i := 1; i < n; i++ {
			edges = append(edges, [2]model.ObjectID{model.ObjectID((i - 1) / 2), model.ObjectID(i)})
		}
	default:
		for i := 1; i < n; i++ {
			edges = append(edges, [2]model.ObjectID{model.ObjectID(i - 1), model.ObjectID(i)})
		}
		if kind == GraphCycle && n > 1 {
			edges = append(edges, [2]model.ObjectID{model.ObjectID(n - 1), 0})
		}
	}
	return edges
}

// Generate builds the scenario: allocate every object with an explicit id,
// root object 0, add the edges, then remove the root and collect.
func Generate(cfg GenerateConfig) (*model.Scenario, error) {
	if err := cfg.Validate(nil); err != nil {
		return nil, err
	}
	if _, err := ParseGraphKind(string(cfg.Kind)); err != nil {
		return nil, err
	}

	edges := Edges(cfg.Kind, cfg.NumObjects)
	ops := make([]model.Operation, 0, cfg.NumObjects+len(edges)+3)
	for i := 0; i < cfg.NumObjects; i++ {
		ops = append(ops, model.AllocateID(model.ObjectID(i), cfg.ObjectSize))
	}
	ops = append(ops, model.MakeRoot(0))
	for _, e := range edges {
		ops = append(ops, model.AddReference(e[0], e[1]))
	}
	ops = append(ops, model.RemoveRoot(0), model.Collect())

	return &model.Scenario{
		Name:        fmt.Sprintf("%s_%dx%d", cfg.Kind, cfg.NumObjects, cfg.ObjectSize),
		Description: fmt.Sprintf("%s graph of %d objects, %d bytes each", cfg.Kind, cfg.NumObjects, cfg.ObjectSize),
		HeapSize:    cfg.HeapSize,
		Operations:  ops,
	}, nil
}

// Preset generates the named scenario type with the given parameters.
func Preset(name string, numObjects int, objectSize, heapSize uint64) (*model.Scenario, error) {
	kind, err := ParseGraphKind(name)
	if err != nil {
		return nil, err
	}
	s, err := Generate(GenerateConfig{Kind: kind, NumObjects: numObjects, ObjectSize: objectSize, HeapSize: heapSize})
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}
