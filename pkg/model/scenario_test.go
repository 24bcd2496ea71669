package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpType(t *testing.T) {
	tests := []struct {
		input   string
		want    OpType
		wantErr bool
	}{
		{"allocate", OpAllocate, false},
		{"ALLOC", OpAllocate, false},
		{"make_root", OpMakeRoot, false},
		{"addRoot", OpMakeRoot, false},
		{"remove_root", OpRemoveRoot, false},
		{"removeroot", OpRemoveRoot, false},
		{"add_ref", OpAddReference, false},
		{"add_reference", OpAddReference, false},
		{"remove_ref", OpRemoveReference, false},
		{" collect ", OpCollect, false},
		{"gc", OpCollect, false},
		{"compact", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOpType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "ALLOCATE obj_3 (size=64)", AllocateID(3, 64).String())
	assert.Equal(t, "ALLOCATE (size=16)", Allocate(16).String())
	assert.Equal(t, "MAKE_ROOT obj_1", MakeRoot(1).String())
	assert.Equal(t, "REMOVE_ROOT obj_1", RemoveRoot(1).String())
	assert.Equal(t, "ADD_REF obj_0 -> obj_1", AddReference(0, 1).String())
	assert.Equal(t, "REMOVE_REF obj_2 -> obj_0", RemoveReference(2, 0).String())
	assert.Equal(t, "COLLECT", Collect().String())
}

func TestScenario_CountOps(t *testing.T) {
	s := Scenario{
		Name: "chain",
		Operations: []Operation{
			AllocateID(0, 8),
			AllocateID(1, 8),
			MakeRoot(0),
			AddReference(0, 1),
			Collect(),
		},
	}
	assert.Equal(t, 2, s.CountOps(OpAllocate))
	assert.Equal(t, 1, s.CountOps(OpCollect))
	assert.Equal(t, 0, s.CountOps(OpRemoveRoot))
}
