package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/pkg/model"
)

// buildGraph allocates n objects on c, adds the given edges and roots.
func buildGraph(t *testing.T, c Collector, n int, size uint64, edges [][2]model.ObjectID, roots ...model.ObjectID) {
	t.Helper()
	for i := 0; i < n; i++ {
		id, err := c.Allocate(size)
		require.NoError(t, err)
		require.Equal(t, model.ObjectID(i), id)
	}
	for _, r := range roots {
		require.NoError(t, c.MakeRoot(r))
	}
	for _, e := range edges {
		_, err := c.AddReference(e[0], e[1])
		require.NoError(t, err)
	}
}

func chainEdges(n int) [][2]model.ObjectID {
	edges := make([][2]model.ObjectID, 0, n)
	for i := 0; i < n-1; i++ {
		edges = append(edges, [2]model.ObjectID{model.ObjectID(i), model.ObjectID(i + 1)})
	}
	return edges
}

func cycleEdges(n int) [][2]model.ObjectID {
	edges := make([][2]model.ObjectID, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, [2]model.ObjectID{model.ObjectID(i), model.ObjectID((i + 1) % n)})
	}
	return edges
}

func TestProperty_AcyclicGraphsAgree(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]model.ObjectID
		roots []model.ObjectID
		drop  []model.ObjectID
	}{
		{
			name:  "tree with shared leaf",
			n:     6,
			edges: [][2]model.ObjectID{{0, 1}, {0, 2}, {1, 3}, {2, 3}, {2, 4}},
			roots: []model.ObjectID{0, 5},
			drop:  []model.ObjectID{0},
		},
		{
			name:  "two chains one dropped",
			n:     6,
			edges: [][2]model.ObjectID{{0, 1}, {1, 2}, {3, 4}, {4, 5}},
			roots: []model.ObjectID{0, 3},
			drop:  []model.ObjectID{3},
		},
		{
			name:  "rooted cycle survives",
			n:     4,
			edges: [][2]model.ObjectID{{0, 1}, {1, 2}, {2, 1}, {2, 3}},
			roots: []model.ObjectID{0, 1},
			drop:  []model.ObjectID{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := New(KindReferenceCounting)
			ms := New(KindTracing)
			for _, c := range []Collector{rc, ms} {
				buildGraph(t, c, tt.n, 24, tt.edges, tt.roots...)
				for _, r := range tt.drop {
					require.NoError(t, c.RemoveRoot(r))
				}
			}
			ms.Collect()

			assert.Equal(t, rc.AliveCount(), ms.AliveCount())
			assert.Equal(t, rc.LiveBytes(), ms.LiveBytes())
			for i := 0; i < tt.n; i++ {
				id := model.ObjectID(i)
				assert.Equal(t, rc.Contains(id), ms.Contains(id), "object %d", id)
			}
		})
	}
}

func TestProperty_SecondCollectIsIdempotent(t *testing.T) {
	ms := NewTracing()
	buildGraph(t, ms, 5, 10, [][2]model.ObjectID{{0, 1}, {3, 4}, {4, 3}}, 0)

	first := ms.Collect()
	assert.Equal(t, uint64(30), first)
	alive := ms.AliveCount()

	assert.Equal(t, uint64(0), ms.Collect())
	assert.Equal(t, alive, ms.AliveCount())
}

func TestProperty_CycleLeak(t *testing.T) {
	for _, n := range []int{2, 3, 10} {
		rc := NewReferenceCounting()
		ms := NewTracing()
		buildGraph(t, rc, n, 64, cycleEdges(n), 0)
		buildGraph(t, ms, n, 64, cycleEdges(n), 0)

		require.NoError(t, rc.RemoveRoot(0))
		require.NoError(t, ms.RemoveRoot(0))

		assert.Equal(t, n, rc.AliveCount(), "rc retains the cycle of %d", n)
		for i := 0; i < n; i++ {
			count, ok := rc.RefCount(model.ObjectID(i))
			require.True(t, ok)
			assert.Equal(t, 1, count)
		}

		freed := ms.Collect()
		assert.Equal(t, uint64(n)*64, freed)
		assert.Equal(t, 0, ms.AliveCount())
	}
}

func TestProperty_LinearChain(t *testing.T) {
	const n = 8
	rec := &Recorder{}
	rc := NewReferenceCounting(WithEventSink(rec))
	ms := NewTracing()
	buildGraph(t, rc, n, 32, chainEdges(n), 0)
	buildGraph(t, ms, n, 32, chainEdges(n), 0)

	rec.Reset()
	require.NoError(t, rc.RemoveRoot(0))
	assert.Equal(t, 0, rc.AliveCount())
	assert.Len(t, rec.OfKind(EventFree), n)
	assert.Equal(t, uint64(n*32), rc.FreedBytes())

	require.NoError(t, ms.RemoveRoot(0))
	assert.Equal(t, n, ms.AliveCount())
	ms.Collect()
	assert.Equal(t, 0, ms.AliveCount())
}

func TestProperty_DuplicateAddReference(t *testing.T) {
	rc := NewReferenceCounting()
	ms := NewTracing()
	buildGraph(t, rc, 2, 8, nil)
	buildGraph(t, ms, 2, 8, nil)

	for i := 0; i < 2; i++ {
		_, err := rc.AddReference(0, 1)
		require.NoError(t, err)
		_, err = ms.AddReference(0, 1)
		require.NoError(t, err)
	}

	count, _ := rc.RefCount(1)
	assert.Equal(t, 1, count)
	obj, _ := ms.Heap().Get(0)
	assert.Equal(t, 1, obj.OutDegree())
}

func TestProperty_FiveObjectChainScenario(t *testing.T) {
	const heapBudget = 1048576
	rc := New(KindReferenceCounting, WithHeapLimit(heapBudget))
	ms := New(KindTracing, WithHeapLimit(heapBudget))
	buildGraph(t, rc, 5, 64, chainEdges(5), 0)
	buildGraph(t, ms, 5, 64, chainEdges(5), 0)

	before := rc.LiveBytes()
	require.NoError(t, rc.RemoveRoot(0))
	assert.Equal(t, 0, rc.AliveCount())
	assert.Equal(t, uint64(320), before-rc.LiveBytes())

	require.NoError(t, ms.RemoveRoot(0))
	assert.Equal(t, uint64(320), ms.Collect())
	assert.Equal(t, 0, ms.AliveCount())
}
