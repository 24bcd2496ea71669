package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/internal/gc"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

func TestInterpreter_FiveObjectChain(t *testing.T) {
	s, err := Generate(GenerateConfig{Kind: GraphLinear, NumObjects: 5, ObjectSize: 64, HeapSize: 1048576})
	require.NoError(t, err)

	for _, name := range []string{"reference_counting", "mark_sweep"} {
		t.Run(name, func(t *testing.T) {
			c, err := gc.NewByName(name, gc.WithHeapLimit(s.HeapSize))
			require.NoError(t, err)

			report, err := NewInterpreter().Run(context.Background(), c, s)
			require.NoError(t, err)
			assert.Empty(t, report.Failures)
			assert.Equal(t, len(s.Operations), report.Applied)
			assert.Equal(t, 0, c.AliveCount())
		})
	}
}

func TestInterpreter_ContinuesAfterFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	log := utils.NewDefaultLogger(utils.LevelDebug, buf)

	s := &model.Scenario{
		Name: "faulty",
		Operations: []model.Operation{
			model.AllocateID(0, 16),
			model.AddReference(0, 7),
			model.AddReference(0, 0),
			model.MakeRoot(0),
			model.MakeRoot(0),
			model.AllocateID(0, 16),
			model.Collect(),
		},
	}

	c := gc.NewReferenceCounting()
	report, err := NewInterpreter(WithLogger(log), WithStepLogging(true)).Run(context.Background(), c, s)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Steps)
	assert.Equal(t, 3, report.Applied)
	require.Len(t, report.Failures, 4)
	first := report.Failures[0]
	assert.Equal(t, 2, first.Step)
	assert.Equal(t, "ADD_REF obj_0 -> obj_7", first.Operation)
	assert.Equal(t, apperrors.CodeUnknownObject, first.Code)
	assert.NotEmpty(t, first.Message)
	assert.Equal(t, apperrors.CodeSelfReference, report.Failures[1].Code)
	assert.Equal(t, apperrors.CodeDuplicateRoot, report.Failures[2].Code)
	assert.Equal(t, apperrors.CodeDuplicateID, report.Failures[3].Code)

	assert.True(t, c.IsRoot(0))
	assert.Contains(t, buf.String(), "step 2 ADD_REF obj_0 -> obj_7 failed")
	assert.Contains(t, buf.String(), "collector=reference_counting")
	assert.Contains(t, buf.String(), "step 7: COLLECT")
}

func TestInterpreter_ContinuesPastMalformedSteps(t *testing.T) {
	s, err := Parse([]byte(malformedJSON))
	require.NoError(t, err)

	tests := []struct {
		name      string
		collector gc.Collector
		collected uint64
	}{
		{"reference_counting", gc.NewReferenceCounting(), 0},
		{"mark_sweep", gc.NewTracing(), 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := NewInterpreter().Run(context.Background(), tt.collector, s)
			require.NoError(t, err)

			assert.Equal(t, 8, report.Steps)
			assert.Equal(t, 4, report.Applied)
			require.Len(t, report.Failures, 4)
			assert.Equal(t, 2, report.Failures[0].Step)
			assert.Equal(t, apperrors.CodeUnknownObject, report.Failures[0].Code)
			assert.Equal(t, apperrors.CodeInvalidInput, report.Failures[1].Code)
			assert.Equal(t, "FROBNICATE", report.Failures[1].Operation)
			assert.Equal(t, apperrors.CodeUnknownObject, report.Failures[2].Code)
			assert.Equal(t, apperrors.CodeInvalidInput, report.Failures[3].Code)

			assert.Equal(t, tt.collected, report.CollectedBytes)
			assert.Equal(t, 0, tt.collector.AliveCount())
		})
	}
}

func TestInterpreter_StampsSteps(t *testing.T) {
	rec := &gc.Recorder{}
	c := gc.NewTracing(gc.WithEventSink(rec))
	s := &model.Scenario{Operations: []model.Operation{model.Allocate(8), model.Allocate(8), model.Collect()}}

	report, err := NewInterpreter().Run(context.Background(), c, s)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), report.CollectedBytes)

	require.NotEmpty(t, rec.Events)
	assert.Equal(t, uint64(1), rec.Events[0].Step)
	assert.Equal(t, uint64(2), rec.Events[1].Step)
	assert.Equal(t, uint64(3), rec.Events[len(rec.Events)-1].Step)
}

func TestInterpreter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &model.Scenario{Operations: []model.Operation{model.Allocate(8)}}
	report, err := NewInterpreter().Run(ctx, gc.NewTracing(), s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Steps)
}

func TestInterpreter_UnsupportedOperation(t *testing.T) {
	s := &model.Scenario{Operations: []model.Operation{{Type: "compact"}}}
	report, err := NewInterpreter().Run(context.Background(), gc.NewTracing(), s)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, apperrors.CodeInvalidInput, report.Failures[0].Code)
	assert.Equal(t, "COMPACT", report.Failures[0].Operation)
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "[ALLOCATE] obj_3 (size=64)", FormatEvent(gc.Event{Kind: gc.EventAllocate, Object: 3, Size: 64}))
	assert.Equal(t, "[ADD_REF] obj_0 -> obj_1 (rc=2)", FormatEvent(gc.Event{Kind: gc.EventAddRef, Object: 0, Target: 1, RefAfter: 2}))
	assert.Equal(t, "[DELETE] obj_1 (freed 64 bytes)", FormatEvent(gc.Event{Kind: gc.EventFree, Object: 1, FreedBytes: 64}))
	assert.Equal(t, "[COLLECTION_START]", FormatEvent(gc.Event{Kind: gc.EventCollectStart}))

	buf := &bytes.Buffer{}
	sink := NewLogSink(utils.NewDefaultLogger(utils.LevelDebug, buf))
	sink.OnEvent(gc.Event{Kind: gc.EventMark, Object: 4})
	assert.Contains(t, buf.String(), "[MARK] obj_4")
}
