// Package bench measures how long each collector takes to reclaim generated
// object graphs of increasing size.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/parallel"
	"github.com/mandrykarina/GC/pkg/telemetry"
	"github.com/mandrykarina/GC/pkg/utils"
)

// Config describes a sweep.
type Config struct {
	Sizes      []int
	Graphs     []scenario.GraphKind
	Collectors []gc.Kind
	ObjectSize uint64
	Workers    int
}

// FromConfig builds a sweep from the bench section of the application
// config. Both collectors are measured.
func FromConfig(cfg *config.BenchConfig) (Config, error) {
	graphs := make([]scenario.GraphKind, 0, len(cfg.Graphs))
	for _, name := range cfg.Graphs {
		kind, err := scenario.ParseGraphKind(name)
		if err != nil {
			return Config{}, err
		}
		graphs = append(graphs, kind)
	}
	out := Config{
		Sizes:      cfg.Sizes,
		Graphs:     lo.Uniq(graphs),
		Collectors: []gc.Kind{gc.KindReferenceCounting, gc.KindTracing},
		ObjectSize: cfg.ObjectSize,
		Workers:    cfg.Workers,
	}
	return out, out.Validate()
}

// Validate checks that the sweep has something to measure.
func (c Config) Validate() error {
	if len(c.Sizes) == 0 || len(c.Graphs) == 0 || len(c.Collectors) == 0 {
		return apperrors.New(apperrors.CodeInvalidInput, "bench needs at least one size, graph and collector")
	}
	for _, n := range c.Sizes {
		if n < scenario.MinObjects {
			return apperrors.Newf(apperrors.CodeInvalidInput, "bench size %d is below %d", n, scenario.MinObjects)
		}
	}
	if c.ObjectSize < scenario.MinObjectSize {
		return apperrors.Newf(apperrors.CodeInvalidInput, "object size must be at least %d", scenario.MinObjectSize)
	}
	return nil
}

// Case is one point of the sweep.
type Case struct {
	Graph      scenario.GraphKind
	Collector  gc.Kind
	Objects    int
	ObjectSize uint64
}

func (c Case) String() string {
	return fmt.Sprintf("%s/%s/%d", c.Graph, c.Collector, c.Objects)
}

// Cases expands the sweep in size, graph, collector order.
func (c Config) Cases() []Case {
	cases := make([]Case, 0, len(c.Sizes)*len(c.Graphs)*len(c.Collectors))
	for _, n := range c.Sizes {
		for _, g := range c.Graphs {
			for _, k := range c.Collectors {
				cases = append(cases, Case{Graph: g, Collector: k, Objects: n, ObjectSize: c.ObjectSize})
			}
		}
	}
	return cases
}

// Runner executes sweeps.
type Runner struct {
	log      utils.Logger
	clock    utils.Clock
	interval time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for progress reports.
func WithLogger(log utils.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock sets the clock used to time reclamation.
func WithClock(clock utils.Clock) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithProgressInterval sets how often progress is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.interval = d
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		log:      &utils.NullLogger{},
		clock:    utils.NewRealClock(),
		interval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run measures every case of cfg on a worker pool. A case that fails is
// reported with its Error set; Run itself fails only on an invalid config
// or a cancelled context.
func (r *Runner) Run(ctx context.Context, cfg Config) ([]model.BenchCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cases := cfg.Cases()

	ctx, span := telemetry.StartSpan(ctx, "bench.sweep", attribute.Int("bench.cases", len(cases)))

	progress := parallel.NewProgressTracker(int64(len(cases)), func(completed, total int64) {
		r.log.Info("Bench progress: %d/%d cases", completed, total)
	}, r.interval)
	progress.Start(ctx)

	pool := parallel.NewWorkerPool[Case, model.BenchCase](parallel.DefaultPoolConfig().WithWorkers(cfg.Workers))
	results := pool.ExecuteFunc(ctx, cases, func(ctx context.Context, c Case) (model.BenchCase, error) {
		defer progress.Increment()
		return r.RunCase(ctx, c), nil
	})
	progress.Stop()

	if err := ctx.Err(); err != nil {
		telemetry.EndSpan(span, err)
		return nil, err
	}

	out := lo.Map(results, func(res parallel.TaskResult[Case, model.BenchCase], _ int) model.BenchCase {
		return res.Result
	})
	metrics := pool.Metrics()
	r.log.Info("Bench finished: %d cases in %v (slowest %v)", metrics.TotalTasks, metrics.TotalDuration, metrics.MaxTaskTime)
	telemetry.EndSpan(span, nil)
	return out, nil
}

// RunCase builds the graph rooted at object 0 and times its reclamation.
// Reference counting is timed across the root removal that starts the
// cascade. Mark-sweep removes the root untimed and is timed across Collect.
func (r *Runner) RunCase(ctx context.Context, c Case) model.BenchCase {
	_, span := telemetry.StartSpan(ctx, "bench.case",
		attribute.String("bench.graph", string(c.Graph)),
		attribute.String("gc.collector", c.Collector.String()),
		attribute.Int("bench.objects", c.Objects),
	)

	out := model.BenchCase{
		Graph:      string(c.Graph),
		Collector:  c.Collector.String(),
		Objects:    c.Objects,
		ObjectSize: c.ObjectSize,
	}

	col := gc.New(c.Collector)
	if err := build(col, c); err != nil {
		out.Error = err.Error()
		telemetry.EndSpan(span, err)
		return out
	}
	allocated := col.LiveBytes()

	var elapsed time.Duration
	switch c.Collector {
	case gc.KindTracing:
		if err := col.RemoveRoot(0); err != nil {
			out.Error = err.Error()
			telemetry.EndSpan(span, err)
			return out
		}
		start := r.clock.Now()
		col.Collect()
		elapsed = r.clock.Since(start)
	default:
		start := r.clock.Now()
		err := col.RemoveRoot(0)
		elapsed = r.clock.Since(start)
		if err != nil {
			out.Error = err.Error()
			telemetry.EndSpan(span, err)
			return out
		}
	}

	out.ReclaimTimeMs = float64(elapsed.Microseconds()) / 1000
	out.ObjectsLeft = col.AliveCount()
	out.MemoryFreed = allocated - col.LiveBytes()
	snap := col.Snapshot()
	out.MemoryLeaked = snap.LeakedBytes()

	span.SetAttributes(attribute.Float64("bench.reclaim_ms", out.ReclaimTimeMs))
	telemetry.EndSpan(span, nil)
	return out
}

func build(col gc.Collector, c Case) error {
	for i := 0; i < c.Objects; i++ {
		if err := col.AllocateWithID(model.ObjectID(i), c.ObjectSize); err != nil {
			return err
		}
	}
	if err := col.MakeRoot(0); err != nil {
		return err
	}
	for _, e := range scenario.Edges(c.Graph, c.Objects) {
		if _, err := col.AddReference(e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}
