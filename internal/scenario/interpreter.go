// Package scenario loads, generates and replays GC scenarios.
package scenario

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mandrykarina/GC/internal/gc"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/telemetry"
	"github.com/mandrykarina/GC/pkg/utils"
)

// Report is the outcome of replaying one scenario against one collector.
type Report struct {
	Scenario  string
	Collector string
	Steps     int
	Applied   int
	Failures  []model.OperationFailure
	// CollectedBytes sums the values returned by collect steps.
	CollectedBytes uint64
}

// Interpreter replays operations in order against a collector. A failing
// operation is logged and recorded, and replay continues with the next one.
type Interpreter struct {
	log      utils.Logger
	logSteps bool
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithLogger sets the logger that receives step failures.
func WithLogger(log utils.Logger) InterpreterOption {
	return func(in *Interpreter) {
		if log != nil {
			in.log = log
		}
	}
}

// WithStepLogging logs every operation at debug level before it runs.
func WithStepLogging(enabled bool) InterpreterOption {
	return func(in *Interpreter) {
		in.logSteps = enabled
	}
}

// NewInterpreter creates an interpreter.
func NewInterpreter(opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{log: &utils.NullLogger{}}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run replays s against c. Steps are numbered from 1 and stamped on the
// collector before each operation. Run only returns an error when ctx is
// cancelled; the partial report is returned with it.
func (in *Interpreter) Run(ctx context.Context, c gc.Collector, s *model.Scenario) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "scenario.replay",
		attribute.String("scenario.name", s.Name),
		attribute.String("gc.collector", c.Name()),
		attribute.Int("scenario.operations", len(s.Operations)),
	)

	report := &Report{Scenario: s.Name, Collector: c.Name()}
	log := in.log.WithField("collector", c.Name())

	for i, op := range s.Operations {
		if err := ctx.Err(); err != nil {
			telemetry.EndSpan(span, err)
			return report, err
		}

		step := i + 1
		c.SetStep(uint64(step))
		report.Steps++
		if in.logSteps {
			log.Debug("step %d: %s", step, op)
		}

		freed, err := in.apply(ctx, c, op)
		if err != nil {
			report.Failures = append(report.Failures, model.OperationFailure{
				Step:      step,
				Operation: op.String(),
				Code:      apperrors.GetErrorCode(err),
				Message:   apperrors.GetErrorMessage(err),
			})
			log.Warn("step %d %s failed: %v", step, op, err)
			continue
		}
		report.Applied++
		report.CollectedBytes += freed
	}

	span.SetAttributes(
		attribute.Int("scenario.failures", len(report.Failures)),
		attribute.Int64("gc.collected_bytes", int64(report.CollectedBytes)),
	)
	telemetry.EndSpan(span, nil)
	return report, nil
}

func (in *Interpreter) apply(ctx context.Context, c gc.Collector, op model.Operation) (uint64, error) {
	switch op.Type {
	case model.OpAllocate:
		if op.HasID {
			return 0, c.AllocateWithID(op.ID, op.Size)
		}
		_, err := c.Allocate(op.Size)
		return 0, err
	case model.OpMakeRoot:
		return 0, c.MakeRoot(op.ID)
	case model.OpRemoveRoot:
		return 0, c.RemoveRoot(op.ID)
	case model.OpAddReference:
		_, err := c.AddReference(op.From, op.To)
		return 0, err
	case model.OpRemoveReference:
		_, err := c.RemoveReference(op.From, op.To)
		return 0, err
	case model.OpCollect:
		_, span := telemetry.StartSpan(ctx, "gc.collect", attribute.String("gc.collector", c.Name()))
		freed := c.Collect()
		span.SetAttributes(attribute.Int64("gc.freed_bytes", int64(freed)))
		telemetry.EndSpan(span, nil)
		return freed, nil
	default:
		return 0, apperrors.Newf(apperrors.CodeInvalidInput, "unsupported operation %q", op.Type)
	}
}
