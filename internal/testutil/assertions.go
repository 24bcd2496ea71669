package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mandrykarina/GC/pkg/model"
)

// AssertJSONEqual asserts that two JSON strings are semantically equal.
func AssertJSONEqual(t *testing.T, expected, actual string) {
	t.Helper()
	assert.JSONEq(t, expected, actual)
}

// AssertHeapConsistent checks that a snapshot agrees with itself: totals
// match the object list, roots and edges name live objects, and for
// counted heaps every count equals incoming edges plus the root reference.
func AssertHeapConsistent(t *testing.T, snap model.HeapSnapshot, counted bool) {
	t.Helper()

	live := make(map[model.ObjectID]bool, len(snap.Objects))
	incoming := make(map[model.ObjectID]int, len(snap.Objects))
	var bytes uint64
	for _, o := range snap.Objects {
		live[o.ID] = true
		bytes += o.Size
	}
	assert.Equal(t, len(snap.Objects), snap.AliveCount, "alive count")
	assert.Equal(t, bytes, snap.LiveBytes, "live bytes")

	for _, r := range snap.Roots {
		assert.True(t, live[r], "root %d is not live", r)
	}
	for _, o := range snap.Objects {
		for _, ref := range o.Refs {
			assert.True(t, live[ref], "object %d references dead object %d", o.ID, ref)
			incoming[ref]++
		}
	}

	if !counted {
		return
	}
	for _, o := range snap.Objects {
		want := incoming[o.ID]
		if o.Root {
			want++
		}
		assert.Equal(t, want, o.RefCount, "ref count of object %d", o.ID)
	}
}

// AssertResultsAgree asserts that every result of cmp ends with the same
// live objects and live bytes.
func AssertResultsAgree(t *testing.T, cmp *model.Comparison) {
	t.Helper()
	if len(cmp.Results) == 0 {
		return
	}
	first := cmp.Results[0]
	for _, r := range cmp.Results[1:] {
		assert.Equal(t, first.ObjectsLeft, r.ObjectsLeft, "%s vs %s objects left", first.Collector, r.Collector)
		assert.Equal(t, first.MemoryAllocated-first.MemoryFreed, r.MemoryAllocated-r.MemoryFreed,
			"%s vs %s live bytes", first.Collector, r.Collector)
	}
}
