package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeapSnapshot(t *testing.T) {
	snap := HeapSnapshot{
		Collector: "reference_counting",
		Objects: []ObjectSnapshot{
			{ID: 0, Size: 64, Root: true, Status: StatusAlive},
			{ID: 1, Size: 32, Status: StatusLeaked},
			{ID: 2, Size: 16, Status: StatusLeaked},
		},
	}

	obj, ok := snap.Object(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(32), obj.Size)

	_, ok = snap.Object(9)
	assert.False(t, ok)

	assert.Equal(t, uint64(48), snap.LeakedBytes())
}

func TestComparison_Result(t *testing.T) {
	c := Comparison{Results: []GCResult{{Collector: "mark_sweep", ObjectsLeft: 2}}}

	r, ok := c.Result("mark_sweep")
	assert.True(t, ok)
	assert.Equal(t, 2, r.ObjectsLeft)

	_, ok = c.Result("cascade")
	assert.False(t, ok)
}
