package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mandrykarina/GC/pkg/compression"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// DefaultHeapSize is the budget of a scenario file that declares none.
const DefaultHeapSize = 1048576

// fileScenario is the on-disk layout of a scenario file.
type fileScenario struct {
	Name           string          `json:"scenario_name"`
	Description    string          `json:"description,omitempty"`
	MaxHeapSize    *uint64         `json:"max_heap_size,omitempty"`
	HeapSize       *uint64         `json:"heap_size,omitempty"`
	CollectionType string          `json:"collection_type,omitempty"`
	Operations     []fileOperation `json:"operations"`
}

// fileOperation keeps optional ids as pointers so that a missing id is
// distinguishable from id 0.
type fileOperation struct {
	Op          string  `json:"op"`
	ID          *int64  `json:"id,omitempty"`
	Size        *uint64 `json:"size,omitempty"`
	From        *int64  `json:"from,omitempty"`
	To          *int64  `json:"to,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Parse decodes a scenario file.
func Parse(data []byte) (*model.Scenario, error) {
	var raw fileScenario
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "invalid scenario JSON", err)
	}

	s := &model.Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		HeapSize:    DefaultHeapSize,
		Operations:  make([]model.Operation, 0, len(raw.Operations)),
	}
	if s.Name == "" {
		s.Name = "Unknown"
	}
	switch {
	case raw.MaxHeapSize != nil:
		s.HeapSize = *raw.MaxHeapSize
	case raw.HeapSize != nil:
		s.HeapSize = *raw.HeapSize
	}

	if raw.CollectionType != "" {
		ct, err := parseCollectionType(raw.CollectionType)
		if err != nil {
			return nil, err
		}
		s.CollectionType = ct
	}

	for _, fo := range raw.Operations {
		s.Operations = append(s.Operations, fo.toOperation())
	}
	return s, nil
}

func parseCollectionType(s string) (model.CollectionType, error) {
	switch ct := model.CollectionType(strings.ToLower(strings.TrimSpace(s))); ct {
	case model.CollectionReferenceCounting, model.CollectionMarkSweep, model.CollectionCascade:
		return ct, nil
	default:
		return "", apperrors.Newf(apperrors.CodeParseError, "unknown collection_type %q", s)
	}
}

// toOperation never fails. An unknown op name keeps its raw name and a
// missing id becomes MissingID, so the step fails when it is replayed and
// the rest of the scenario still runs.
func (fo fileOperation) toOperation() model.Operation {
	t, err := model.ParseOpType(fo.Op)
	if err != nil {
		t = model.OpType(strings.ToLower(strings.TrimSpace(fo.Op)))
	}

	op := model.Operation{Type: t, Description: fo.Description}
	switch t {
	case model.OpAllocate:
		if fo.Size != nil {
			op.Size = *fo.Size
		}
		if fo.ID != nil {
			op.ID = model.ObjectID(*fo.ID)
			op.HasID = true
		}
	case model.OpMakeRoot, model.OpRemoveRoot:
		op.ID = idOrMissing(fo.ID)
	case model.OpAddReference, model.OpRemoveReference:
		op.From = idOrMissing(fo.From)
		op.To = idOrMissing(fo.To)
	}
	return op
}

func idOrMissing(id *int64) model.ObjectID {
	if id == nil {
		return model.MissingID
	}
	return model.ObjectID(*id)
}

// Encode renders s in the scenario file layout accepted by Parse.
func Encode(s *model.Scenario) ([]byte, error) {
	heap := s.HeapSize
	raw := fileScenario{
		Name:           s.Name,
		Description:    s.Description,
		MaxHeapSize:    &heap,
		CollectionType: string(s.CollectionType),
		Operations:     make([]fileOperation, 0, len(s.Operations)),
	}
	for _, op := range s.Operations {
		fo := fileOperation{Op: string(op.Type), Description: op.Description}
		switch op.Type {
		case model.OpAllocate:
			size := op.Size
			fo.Size = &size
			if op.HasID {
				fo.ID = int64Ptr(op.ID)
			}
		case model.OpMakeRoot, model.OpRemoveRoot:
			fo.ID = int64Ptr(op.ID)
		case model.OpAddReference, model.OpRemoveReference:
			fo.From = int64Ptr(op.From)
			fo.To = int64Ptr(op.To)
		}
		raw.Operations = append(raw.Operations, fo)
	}
	return json.MarshalIndent(raw, "", "  ")
}

func int64Ptr(id model.ObjectID) *int64 {
	v := int64(id)
	return &v
}

// LoadFile reads and parses one scenario file, which may be gzip or zstd
// compressed.
func LoadFile(path string) (*model.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "cannot open scenario file "+path, err)
	}
	data, err = compression.AutoDecompress(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "cannot decompress scenario file "+path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var scenarioPatterns = []string{"*.json", "*.json.gz", "*.json.zst"}

// LoadDir parses every *.json, *.json.gz and *.json.zst file in dir, in name
// order. Files that fail to parse are logged and skipped.
func LoadDir(dir string, log utils.Logger) ([]*model.Scenario, error) {
	if log == nil {
		log = &utils.NullLogger{}
	}
	var paths []string
	for _, pattern := range scenarioPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("cannot read scenarios directory %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*model.Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadFile(p)
		if err != nil {
			log.Warn("Skipping scenario %s: %v", filepath.Base(p), err)
			continue
		}
		log.Debug("Loaded scenario %s (%d operations)", s.Name, len(s.Operations))
		scenarios = append(scenarios, s)
	}
	if len(scenarios) == 0 {
		log.Warn("No scenarios found in %s", dir)
	}
	return scenarios, nil
}
