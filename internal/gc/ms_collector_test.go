package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

func newMS(t *testing.T, n int, size uint64, opts ...Option) *TracingCollector {
	t.Helper()
	c := NewTracing(opts...)
	for i := 0; i < n; i++ {
		id, err := c.Allocate(size)
		require.NoError(t, err)
		require.Equal(t, model.ObjectID(i), id)
	}
	return c
}

func TestTracing_AddReference(t *testing.T) {
	c := newMS(t, 2, 32)

	_, err := c.AddReference(0, 5)
	assert.True(t, apperrors.IsUnknownObject(err))

	added, err := c.AddReference(0, 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.AddReference(0, 1)
	require.NoError(t, err)
	assert.False(t, added)

	obj, _ := c.Heap().Get(0)
	assert.Equal(t, 1, obj.OutDegree())

	added, err = c.AddReference(1, 1)
	assert.Equal(t, apperrors.CodeSelfReference, apperrors.GetErrorCode(err))
	assert.False(t, added)
	obj, _ = c.Heap().Get(1)
	assert.Zero(t, obj.OutDegree())
}

func TestTracing_RootsAreIdempotent(t *testing.T) {
	rec := &Recorder{}
	c := newMS(t, 1, 32, WithEventSink(rec))

	require.NoError(t, c.MakeRoot(0))
	require.NoError(t, c.MakeRoot(0))
	assert.True(t, c.IsRoot(0))
	assert.Len(t, rec.OfKind(EventMakeRoot), 1)

	require.NoError(t, c.RemoveRoot(0))
	require.NoError(t, c.RemoveRoot(0))
	assert.False(t, c.IsRoot(0))
	assert.Len(t, rec.OfKind(EventRemoveRoot), 1)

	assert.True(t, apperrors.IsUnknownObject(c.MakeRoot(3)))
	assert.True(t, apperrors.IsUnknownObject(c.RemoveRoot(3)))
}

func TestTracing_ReclaimsOnlyOnCollect(t *testing.T) {
	c := newMS(t, 3, 100)
	require.NoError(t, c.MakeRoot(0))
	_, err := c.AddReference(0, 1)
	require.NoError(t, err)

	removed, err := c.RemoveReference(0, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 3, c.AliveCount())

	freed := c.Collect()
	assert.Equal(t, uint64(200), freed)
	assert.Equal(t, 1, c.AliveCount())
	assert.Equal(t, 2, c.LastFreedObjects())
	assert.Equal(t, 1, c.Collections())
	assert.NoError(t, c.VerifyInvariants())
}

func TestTracing_CollectClearsMarks(t *testing.T) {
	rec := &Recorder{}
	c := newMS(t, 4, 8, WithEventSink(rec))
	require.NoError(t, c.MakeRoot(0))
	_, _ = c.AddReference(0, 1)
	_, _ = c.AddReference(1, 2)
	_, _ = c.AddReference(2, 0)

	c.Collect()

	assert.Len(t, rec.OfKind(EventMark), 3)
	for _, id := range c.Heap().IDs() {
		obj, _ := c.Heap().Get(id)
		assert.False(t, obj.Marked)
	}
	for _, o := range c.Snapshot().Objects {
		assert.Equal(t, model.StatusAlive, o.Status)
	}
	assert.False(t, c.Contains(3))
}

func TestTracing_UnrootedCycleIsFreed(t *testing.T) {
	c := newMS(t, 4, 16)
	for i := 0; i < 4; i++ {
		_, err := c.AddReference(model.ObjectID(i), model.ObjectID((i+1)%4))
		require.NoError(t, err)
	}
	assert.Equal(t, []model.ObjectID{0, 1, 2, 3}, c.DetectLeaks())

	assert.Equal(t, uint64(64), c.Collect())
	assert.Equal(t, 0, c.AliveCount())
	assert.Empty(t, c.DetectLeaks())
}

func TestTracing_SweptIDIsUnknown(t *testing.T) {
	c := newMS(t, 2, 16)
	require.NoError(t, c.MakeRoot(0))
	c.Collect()

	_, err := c.AddReference(0, 1)
	assert.True(t, apperrors.IsUnknownObject(err))

	// Ids are not recycled after a sweep.
	id, err := c.Allocate(16)
	require.NoError(t, err)
	assert.Equal(t, model.ObjectID(2), id)
}

func TestTracing_CollectEvents(t *testing.T) {
	rec := &Recorder{}
	c := newMS(t, 2, 50, WithEventSink(rec))
	c.SetStep(4)
	rec.Reset()

	c.Collect()

	require.NotEmpty(t, rec.Events)
	assert.Equal(t, EventCollectStart, rec.Events[0].Kind)
	end := rec.Events[len(rec.Events)-1]
	assert.Equal(t, EventCollectEnd, end.Kind)
	assert.Equal(t, uint64(100), end.FreedBytes)
	assert.Equal(t, 2, end.FreedObjects)
	assert.Equal(t, uint64(4), end.Step)
	assert.Equal(t, "mark_sweep", end.Collector)
	assert.Len(t, rec.OfKind(EventFree), 2)
}

func TestTracing_HeapLimit(t *testing.T) {
	c := NewTracing(WithHeapLimit(32))
	_, err := c.Allocate(32)
	require.NoError(t, err)

	_, err = c.Allocate(1)
	assert.True(t, apperrors.IsHeapExhausted(err))

	c.Collect()
	_, err = c.Allocate(32)
	assert.NoError(t, err)
}
