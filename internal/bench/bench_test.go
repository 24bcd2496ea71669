package bench

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/utils"
)

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.BenchConfig{
		Sizes:      []int{10, 100},
		Graphs:     []string{"linear", "cycle_leak", "cycle"},
		ObjectSize: 64,
		Workers:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, []scenario.GraphKind{scenario.GraphLinear, scenario.GraphCycle}, cfg.Graphs)
	assert.Len(t, cfg.Cases(), 2*2*2)

	_, err = FromConfig(&config.BenchConfig{Sizes: []int{10}, Graphs: []string{"mesh"}, ObjectSize: 64})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestConfig_Validate(t *testing.T) {
	base := Config{
		Sizes:      []int{10},
		Graphs:     []scenario.GraphKind{scenario.GraphTree},
		Collectors: []gc.Kind{gc.KindTracing},
		ObjectSize: 8,
	}
	assert.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no sizes", func(c *Config) { c.Sizes = nil }},
		{"size too small", func(c *Config) { c.Sizes = []int{1} }},
		{"no graphs", func(c *Config) { c.Graphs = nil }},
		{"object too small", func(c *Config) { c.ObjectSize = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestRunner_RunCase(t *testing.T) {
	clock := utils.NewTickingClock(time.Unix(0, 0), 3*time.Millisecond)
	r := NewRunner(WithClock(clock))

	tests := []struct {
		graph     scenario.GraphKind
		collector gc.Kind
		left      int
		freed     uint64
		leaked    uint64
	}{
		{scenario.GraphLinear, gc.KindReferenceCounting, 0, 1000, 0},
		{scenario.GraphLinear, gc.KindTracing, 0, 1000, 0},
		{scenario.GraphCycle, gc.KindReferenceCounting, 100, 0, 1000},
		{scenario.GraphCycle, gc.KindTracing, 0, 1000, 0},
		{scenario.GraphTree, gc.KindReferenceCounting, 0, 1000, 0},
		{scenario.GraphTree, gc.KindTracing, 0, 1000, 0},
	}
	for _, tt := range tests {
		c := Case{Graph: tt.graph, Collector: tt.collector, Objects: 100, ObjectSize: 10}
		t.Run(c.String(), func(t *testing.T) {
			res := r.RunCase(context.Background(), c)
			assert.Empty(t, res.Error)
			assert.Equal(t, tt.left, res.ObjectsLeft)
			assert.Equal(t, tt.freed, res.MemoryFreed)
			assert.Equal(t, tt.leaked, res.MemoryLeaked)
			assert.Equal(t, 3.0, res.ReclaimTimeMs)
		})
	}
}

func TestRunner_Run(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(WithProgressInterval(time.Hour), WithLogger(utils.NewDefaultLogger(utils.LevelInfo, &buf)))

	cfg := Config{
		Sizes:      []int{10, 50},
		Graphs:     scenario.GraphKinds(),
		Collectors: []gc.Kind{gc.KindReferenceCounting, gc.KindTracing},
		ObjectSize: 16,
		Workers:    3,
	}
	results, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 12)
	assert.Contains(t, buf.String(), "Bench progress: 12/12 cases")

	assert.Equal(t, "linear", results[0].Graph)
	assert.Equal(t, "reference_counting", results[0].Collector)
	assert.Equal(t, 10, results[0].Objects)
	assert.Equal(t, "mark_sweep", results[11].Collector)
	assert.Equal(t, 50, results[11].Objects)

	for _, res := range results {
		assert.Empty(t, res.Error)
		if res.Graph == "cycle" && res.Collector == "reference_counting" {
			assert.Equal(t, res.Objects, res.ObjectsLeft)
		} else {
			assert.Equal(t, 0, res.ObjectsLeft)
		}
	}
}

func TestRunner_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner()
	_, err := r.Run(ctx, Config{
		Sizes:      []int{10},
		Graphs:     []scenario.GraphKind{scenario.GraphLinear},
		Collectors: []gc.Kind{gc.KindTracing},
		ObjectSize: 8,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RunCase_CycleLeak(t *testing.T) {
	r := NewRunner()

	rc := r.RunCase(context.Background(), Case{Graph: scenario.GraphCycle, Collector: gc.KindReferenceCounting, Objects: 8, ObjectSize: 32})
	require.Empty(t, rc.Error)
	assert.Equal(t, uint64(8*32), rc.MemoryLeaked)
	assert.Zero(t, rc.MemoryFreed)

	ms := r.RunCase(context.Background(), Case{Graph: scenario.GraphCycle, Collector: gc.KindTracing, Objects: 8, ObjectSize: 32})
	require.Empty(t, ms.Error)
	assert.Zero(t, ms.MemoryLeaked)
	assert.Equal(t, uint64(8*32), ms.MemoryFreed)
}
