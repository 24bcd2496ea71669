// Package parallel runs independent simulator jobs on a bounded worker pool.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// PoolConfig configures the worker pool behavior.
type PoolConfig struct {
	// MaxWorkers is the number of concurrent workers.
	// Default: min(runtime.NumCPU(), 8), at least 2.
	MaxWorkers int

	// Timeout bounds the whole Execute call. Zero means no timeout.
	Timeout time.Duration
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxWorkers: max(2, min(runtime.NumCPU(), 8))}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.MaxWorkers = n
	return c
}

// WithTimeout returns a new config with the specified timeout.
func (c PoolConfig) WithTimeout(d time.Duration) PoolConfig {
	c.Timeout = d
	return c
}

// PoolMetrics holds execution statistics of the last Execute call.
type PoolMetrics struct {
	TotalTasks     int64
	CompletedTasks int64
	FailedTasks    int64
	TotalDuration  time.Duration
	MaxTaskTime    time.Duration
}

// TaskResult holds the outcome of one input.
type TaskResult[T any, R any] struct {
	Input    T
	Result   R
	Error    error
	Duration time.Duration
}

// WorkerPool applies a function to inputs on a fixed number of goroutines.
type WorkerPool[T any, R any] struct {
	config  PoolConfig
	mu      sync.Mutex
	metrics PoolMetrics
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool[T any, R any](config PoolConfig) *WorkerPool[T, R] {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultPoolConfig().MaxWorkers
	}
	return &WorkerPool[T, R]{config: config}
}

// ExecuteFunc runs fn over inputs and returns results in input order.
// Inputs not started before ctx is done report ctx.Err().
func (p *WorkerPool[T, R]) ExecuteFunc(ctx context.Context, inputs []T, fn func(ctx context.Context, input T) (R, error)) []TaskResult[T, R] {
	if len(inputs) == 0 {
		return nil
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	results := make([]TaskResult[T, R], len(inputs))
	started := make([]bool, len(inputs))
	indexCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(p.config.MaxWorkers, len(inputs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				taskStart := time.Now()
				result, err := fn(ctx, inputs[idx])
				results[idx] = TaskResult[T, R]{
					Input:    inputs[idx],
					Result:   result,
					Error:    err,
					Duration: time.Since(taskStart),
				}
			}
		}()
	}

submit:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break submit
		case indexCh <- i:
			started[i] = true
		}
	}
	close(indexCh)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			results[i] = TaskResult[T, R]{Input: inputs[i], Error: ctx.Err()}
		}
	}

	p.recordMetrics(results, time.Since(start))
	return results
}

func (p *WorkerPool[T, R]) recordMetrics(results []TaskResult[T, R], total time.Duration) {
	m := PoolMetrics{TotalTasks: int64(len(results)), TotalDuration: total}
	for _, r := range results {
		if r.Error != nil {
			m.FailedTasks++
		} else {
			m.CompletedTasks++
		}
		m.MaxTaskTime = max(m.MaxTaskTime, r.Duration)
	}
	p.mu.Lock()
	p.metrics = m
	p.mu.Unlock()
}

// Metrics returns the statistics of the last ExecuteFunc call.
func (p *WorkerPool[T, R]) Metrics() PoolMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// ProgressTracker reports completion counts on an interval while a batch
// runs, and once more on Stop.
type ProgressTracker struct {
	total     int64
	completed atomic.Int64
	callback  func(completed, total int64)
	interval  time.Duration
	stopCh    chan struct{}
	done      chan struct{}
	stopped   atomic.Bool
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(total int64, callback func(completed, total int64), interval time.Duration) *ProgressTracker {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &ProgressTracker{
		total:    total,
		callback: callback,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins periodic reporting in a background goroutine.
func (pt *ProgressTracker) Start(ctx context.Context) {
	go func() {
		defer close(pt.done)
		ticker := time.NewTicker(pt.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-pt.stopCh:
				return
			case <-ticker.C:
				pt.report()
			}
		}
	}()
}

// Increment increments the completed count.
func (pt *ProgressTracker) Increment() {
	pt.completed.Add(1)
}

// Stop ends periodic reporting and emits a final report. Stop must follow
// Start and is safe to call more than once.
func (pt *ProgressTracker) Stop() {
	if pt.stopped.CompareAndSwap(false, true) {
		close(pt.stopCh)
		<-pt.done
		pt.report()
	}
}

// Completed returns the current completed count.
func (pt *ProgressTracker) Completed() int64 {
	return pt.completed.Load()
}

func (pt *ProgressTracker) report() {
	if pt.callback != nil {
		pt.callback(pt.completed.Load(), pt.total)
	}
}
