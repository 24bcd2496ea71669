// Package simulation replays scenarios against one or more collectors and
// assembles the comparison report.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/internal/metrics"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/internal/statistics"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/parallel"
	"github.com/mandrykarina/GC/pkg/telemetry"
	"github.com/mandrykarina/GC/pkg/utils"
)

// Config controls how a Runner replays scenarios.
type Config struct {
	// Workers bounds how many collectors replay at once.
	Workers int
	// LogSteps logs every operation and collector event at debug level.
	LogSteps bool
	// Snapshot attaches the final heap snapshot to each result.
	Snapshot bool
	// Timeout bounds a whole comparison. Zero means none.
	Timeout time.Duration
}

// Runner drives the interpreter for each requested collector. It is safe
// for concurrent use; every replay gets its own collector instance.
type Runner struct {
	cfg     Config
	log     utils.Logger
	clock   utils.Clock
	metrics *metrics.Metrics

	mu           sync.Mutex
	events       EventRecorder
	eventsFailed bool
}

// EventRecorder receives every collector event of a run. Calls are
// serialized by the Runner.
type EventRecorder interface {
	Append(ev gc.Event) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(log utils.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock sets the clock used for execution times.
func WithClock(clock utils.Clock) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMetrics feeds collector events into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithEventRecorder streams every collector event to rec.
func WithEventRecorder(rec EventRecorder) Option {
	return func(r *Runner) {
		r.events = rec
	}
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, opts ...Option) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	r := &Runner{
		cfg:   cfg,
		log:   &utils.NullLogger{},
		clock: utils.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays s against the named collector.
func (r *Runner) Run(ctx context.Context, collector string, s *model.Scenario) (model.GCResult, error) {
	tracker := statistics.NewTracker(statistics.WithClock(r.clock))
	sinks := gc.MultiSink{tracker}
	if r.metrics != nil {
		sinks = append(sinks, r.metrics)
	}
	if r.cfg.LogSteps {
		sinks = append(sinks, scenario.NewLogSink(r.log.WithField("collector", collector)))
	}
	if r.events != nil {
		sinks = append(sinks, gc.EventSinkFunc(r.record))
	}

	c, err := gc.NewByName(collector, gc.WithEventSink(sinks), gc.WithHeapLimit(s.HeapSize))
	if err != nil {
		return model.GCResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown collector", err)
	}

	interp := scenario.NewInterpreter(
		scenario.WithLogger(r.log),
		scenario.WithStepLogging(r.cfg.LogSteps),
	)

	start := r.clock.Now()
	report, err := interp.Run(ctx, c, s)
	elapsed := r.clock.Since(start)

	res := tracker.Finalize(c, r.cfg.Snapshot)
	res.ExecutionTimeMs = float64(elapsed.Microseconds()) / 1000
	res.Failures = report.Failures

	if r.metrics != nil {
		r.metrics.ObserveRun(c.Name(), elapsed.Seconds(), lo.Map(report.Failures, func(f model.OperationFailure, _ int) string {
			return f.Code
		}))
	}
	return res, err
}

// Compare replays s against every named collector concurrently. Results
// keep the order of collectors. A cancelled context fails the comparison.
func (r *Runner) Compare(ctx context.Context, s *model.Scenario, collectors ...string) (*model.Comparison, error) {
	if len(collectors) == 0 {
		collectors = []string{gc.KindReferenceCounting.String(), gc.KindTracing.String()}
	}
	collectors = lo.Uniq(collectors)
	for _, name := range collectors {
		if _, _, err := gc.ParseKind(name); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown collector", err)
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "simulation.compare",
		attribute.String("scenario.name", s.Name),
		attribute.StringSlice("gc.collectors", collectors),
	)

	r.log.Info("Comparing %d collectors on scenario %s (%d operations)", len(collectors), s.Name, len(s.Operations))

	pool := parallel.NewWorkerPool[string, model.GCResult](
		parallel.DefaultPoolConfig().WithWorkers(r.cfg.Workers).WithTimeout(r.cfg.Timeout),
	)
	results := pool.ExecuteFunc(ctx, collectors, func(ctx context.Context, name string) (model.GCResult, error) {
		return r.Run(ctx, name, s)
	})

	cmp := &model.Comparison{
		RunID:        uuid.NewString(),
		ScenarioName: s.Name,
		HeapSize:     s.HeapSize,
		Operations:   len(s.Operations),
		Results:      make([]model.GCResult, 0, len(results)),
		CreatedAt:    r.clock.Now(),
	}
	for _, res := range results {
		if res.Error != nil {
			telemetry.EndSpan(span, res.Error)
			return nil, res.Error
		}
		cmp.Results = append(cmp.Results, res.Result)
	}
	cmp.Agree = Agree(cmp.Results)

	span.SetAttributes(attribute.Bool("simulation.agree", cmp.Agree))
	telemetry.EndSpan(span, nil)

	r.log.Info("Comparison %s finished, collectors agree: %v", cmp.RunID, cmp.Agree)
	return cmp, nil
}

// Agree reports whether every result ended with the same number of live
// objects and the same live bytes.
func Agree(results []model.GCResult) bool {
	if len(results) < 2 {
		return true
	}
	first := results[0]
	return lo.EveryBy(results[1:], func(res model.GCResult) bool {
		return res.ObjectsLeft == first.ObjectsLeft && liveBytes(res) == liveBytes(first)
	})
}

func liveBytes(res model.GCResult) uint64 {
	return res.MemoryAllocated - res.MemoryFreed
}

func (r *Runner) record(ev gc.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eventsFailed {
		return
	}
	if err := r.events.Append(ev); err != nil {
		r.eventsFailed = true
		r.log.Warn("Failed to record event, event log disabled: %v", err)
	}
}
