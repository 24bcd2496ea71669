package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/internal/metrics"
	"github.com/mandrykarina/GC/internal/scenario"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
	"github.com/mandrykarina/GC/pkg/writer"
)

func preset(t *testing.T, name string, n int, size uint64) *model.Scenario {
	t.Helper()
	s, err := scenario.Preset(name, n, size, 1048576)
	require.NoError(t, err)
	return s
}

func TestRunner_Run(t *testing.T) {
	clock := utils.NewTickingClock(time.Unix(0, 0), time.Millisecond)
	r := NewRunner(Config{}, WithClock(clock))

	res, err := r.Run(context.Background(), "reference_counting", preset(t, "linear", 5, 64))
	require.NoError(t, err)

	assert.Equal(t, "reference_counting", res.Collector)
	assert.Equal(t, 5, res.ObjectsCreated)
	assert.Equal(t, 0, res.ObjectsLeft)
	assert.Equal(t, uint64(320), res.MemoryAllocated)
	assert.Equal(t, uint64(320), res.MemoryFreed)
	assert.Equal(t, uint64(0), res.MemoryLeaked)
	assert.Equal(t, 100.0, res.RecoveryPercent)
	assert.Equal(t, 1, res.CollectionsRun)
	assert.Equal(t, 2.0, res.ExecutionTimeMs)
	assert.Empty(t, res.Failures)
	assert.Nil(t, res.Snapshot)
}

func TestRunner_RunUnknownCollector(t *testing.T) {
	r := NewRunner(Config{})
	_, err := r.Run(context.Background(), "generational", preset(t, "linear", 3, 8))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestRunner_CompareLinear(t *testing.T) {
	r := NewRunner(Config{Workers: 2, Snapshot: true})

	cmp, err := r.Compare(context.Background(), preset(t, "linear", 5, 64))
	require.NoError(t, err)

	assert.NotEmpty(t, cmp.RunID)
	assert.Equal(t, "linear", cmp.ScenarioName)
	assert.Equal(t, uint64(1048576), cmp.HeapSize)
	require.Len(t, cmp.Results, 2)
	assert.Equal(t, "reference_counting", cmp.Results[0].Collector)
	assert.Equal(t, "mark_sweep", cmp.Results[1].Collector)
	assert.True(t, cmp.Agree)

	for _, res := range cmp.Results {
		assert.Equal(t, uint64(320), res.MemoryFreed, res.Collector)
		assert.Equal(t, 0, res.ObjectsLeft, res.Collector)
		require.NotNil(t, res.Snapshot)
		assert.Empty(t, res.Snapshot.Objects)
	}
}

func TestRunner_CompareCycle(t *testing.T) {
	r := NewRunner(Config{})

	cmp, err := r.Compare(context.Background(), preset(t, "cycle", 4, 32), "rc", "ms", "rc")
	require.NoError(t, err)
	require.Len(t, cmp.Results, 2)
	assert.False(t, cmp.Agree)

	rc, ok := cmp.Result("reference_counting")
	require.True(t, ok)
	assert.Equal(t, 4, rc.ObjectsLeft)
	assert.Equal(t, uint64(128), rc.MemoryLeaked)
	assert.Equal(t, 0.0, rc.RecoveryPercent)

	ms, ok := cmp.Result("mark_sweep")
	require.True(t, ok)
	assert.Equal(t, 0, ms.ObjectsLeft)
	assert.Equal(t, uint64(0), ms.MemoryLeaked)
	assert.Equal(t, uint64(128), ms.MemoryFreed)
}

func TestRunner_CompareCascade(t *testing.T) {
	r := NewRunner(Config{})

	cmp, err := r.Compare(context.Background(), preset(t, "tree", 7, 16), gc.Names()...)
	require.NoError(t, err)
	require.Len(t, cmp.Results, 3)
	assert.True(t, cmp.Agree)

	cascade, ok := cmp.Result("cascade")
	require.True(t, ok)
	assert.Equal(t, uint64(112), cascade.MemoryFreed)
	assert.Equal(t, 1, cascade.CollectionsRun)
}

func TestRunner_CompareRejectsUnknownCollector(t *testing.T) {
	r := NewRunner(Config{})
	_, err := r.Compare(context.Background(), preset(t, "linear", 3, 8), "rc", "copying")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestRunner_CompareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Config{})
	_, err := r.Compare(ctx, preset(t, "linear", 3, 8))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RecordsFailures(t *testing.T) {
	s := &model.Scenario{
		Name: "bad",
		Operations: []model.Operation{
			model.AllocateID(0, 8),
			model.AddReference(0, 9),
			model.MakeRoot(0),
			model.Collect(),
		},
	}
	r := NewRunner(Config{})

	res, err := r.Run(context.Background(), "mark_sweep", s)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Step)
	assert.Equal(t, apperrors.CodeUnknownObject, res.Failures[0].Code)
	assert.Equal(t, 1, res.ObjectsLeft)
}

func TestRunner_EventRecorderAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	lines := writer.NewLinesWriter[gc.Event](&buf, false)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	r := NewRunner(Config{LogSteps: true},
		WithEventRecorder(lines),
		WithMetrics(m),
		WithLogger(utils.NewDefaultLogger(utils.LevelDebug, io.Discard)),
	)

	_, err := r.Compare(context.Background(), preset(t, "linear", 3, 10), "rc", "ms")
	require.NoError(t, err)
	require.NoError(t, lines.Close())

	decoded := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, lines.Count(), len(decoded))

	var first gc.Event
	require.NoError(t, json.Unmarshal([]byte(decoded[0]), &first))
	assert.Equal(t, uint64(1), first.Step)
	assert.Equal(t, gc.EventAllocate, first.Kind)

	runs, err := testutil.GatherAndCount(m.Registry(), "gcsim_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}

func TestAgree(t *testing.T) {
	a := model.GCResult{ObjectsLeft: 1, MemoryAllocated: 100, MemoryFreed: 60}
	b := model.GCResult{ObjectsLeft: 1, MemoryAllocated: 40, MemoryFreed: 0}
	c := model.GCResult{ObjectsLeft: 2, MemoryAllocated: 100, MemoryFreed: 60}

	assert.True(t, Agree(nil))
	assert.True(t, Agree([]model.GCResult{a}))
	assert.True(t, Agree([]model.GCResult{a, b}))
	assert.False(t, Agree([]model.GCResult{a, c}))
}
