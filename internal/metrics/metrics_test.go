package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/internal/gc"
)

func TestMetrics_OnEvent(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	c := gc.NewReferenceCounting(gc.WithEventSink(m))

	for i := 0; i < 3; i++ {
		_, err := c.Allocate(100)
		require.NoError(t, err)
	}
	require.NoError(t, c.MakeRoot(0))
	_, err := c.AddReference(0, 1)
	require.NoError(t, err)
	require.NoError(t, c.RemoveRoot(0))
	c.Collect()

	const rc = "reference_counting"
	assert.Equal(t, 300.0, testutil.ToFloat64(m.allocatedBytes.WithLabelValues(rc)))
	assert.Equal(t, 200.0, testutil.ToFloat64(m.freedBytes.WithLabelValues(rc)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.freedObjects.WithLabelValues(rc)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collections.WithLabelValues(rc)))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.liveBytes.WithLabelValues(rc)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aliveObjects.WithLabelValues(rc)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.operations.WithLabelValues(rc, "allocate")))
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.ObserveRun("mark_sweep", 0.002, []string{"UNKNOWN_OBJECT", "UNKNOWN_OBJECT"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("mark_sweep")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues("mark_sweep", "UNKNOWN_OBJECT")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.replaySeconds))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.OnEvent(gc.Event{Collector: "mark_sweep", Kind: gc.EventAllocate, Size: 64, LiveBytes: 64, AliveCount: 1})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `gcsim_allocated_bytes_total{collector="mark_sweep"} 64`))
	assert.Contains(t, text, "go_goroutines")
}
