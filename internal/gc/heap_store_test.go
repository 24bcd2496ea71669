package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

func TestHeap_InsertAndRemove(t *testing.T) {
	h := NewHeap(0)

	obj, err := h.insert(3, 64)
	require.NoError(t, err)
	assert.Equal(t, model.ObjectID(3), obj.ID)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, uint64(64), h.LiveBytes())
	assert.Equal(t, model.ObjectID(4), h.nextFreeID())

	_, err = h.insert(3, 8)
	assert.True(t, apperrors.IsDuplicateID(err))

	_, err = h.insert(-1, 8)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))

	removed, ok := h.remove(3)
	require.True(t, ok)
	assert.Equal(t, uint64(64), removed.Size)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, uint64(0), h.LiveBytes())

	_, ok = h.remove(3)
	assert.False(t, ok)

	// Freed ids are not handed out again.
	assert.Equal(t, model.ObjectID(4), h.nextFreeID())
}

func TestHeap_Limit(t *testing.T) {
	h := NewHeap(100)

	_, err := h.insert(0, 60)
	require.NoError(t, err)
	_, err = h.insert(1, 40)
	require.NoError(t, err)

	_, err = h.insert(2, 1)
	assert.True(t, apperrors.IsHeapExhausted(err))
	assert.False(t, h.Contains(2))
	assert.Equal(t, uint64(100), h.Limit())
}

func TestHeap_Roots(t *testing.T) {
	h := NewHeap(0)
	_, _ = h.insert(0, 8)
	_, _ = h.insert(1, 8)

	assert.True(t, h.setRoot(1))
	assert.False(t, h.setRoot(1))
	assert.True(t, h.setRoot(0))
	assert.Equal(t, []model.ObjectID{0, 1}, h.Roots())

	assert.True(t, h.clearRoot(0))
	assert.False(t, h.clearRoot(0))

	h.remove(1)
	assert.Empty(t, h.Roots())
}

func TestHeap_Reachability(t *testing.T) {
	h := NewHeap(0)
	for i := 0; i < 5; i++ {
		_, err := h.insert(model.ObjectID(i), 16)
		require.NoError(t, err)
	}
	o0, _ := h.Get(0)
	o1, _ := h.Get(1)
	o3, _ := h.Get(3)
	o4, _ := h.Get(4)
	o0.addRef(1)
	o1.addRef(0) // cycle through the root
	o3.addRef(4)
	o4.addRef(3) // detached cycle
	h.setRoot(0)

	reach := h.Reachable()
	assert.Len(t, reach, 2)
	assert.Contains(t, reach, model.ObjectID(0))
	assert.Contains(t, reach, model.ObjectID(1))

	assert.Equal(t, []model.ObjectID{2, 3, 4}, h.Unreachable())
	assert.Equal(t, 4, h.EdgeCount())

	incoming := h.incomingCounts()
	assert.Equal(t, 1, incoming[0])
	assert.Equal(t, 0, incoming[2])
}

func TestHeapObject_Refs(t *testing.T) {
	obj := newHeapObject(1, 8)
	assert.True(t, obj.addRef(5))
	assert.True(t, obj.addRef(2))
	assert.False(t, obj.addRef(5))
	assert.Equal(t, []model.ObjectID{2, 5}, obj.Refs())
	assert.Equal(t, 2, obj.OutDegree())
	assert.True(t, obj.HasRef(2))

	assert.True(t, obj.removeRef(2))
	assert.False(t, obj.removeRef(2))
	assert.False(t, obj.HasRef(2))
}
