// Package repository stores simulation run history.
package repository

import (
	"context"

	"github.com/mandrykarina/GC/pkg/model"
)

// RunRepository defines the run history operations.
type RunRepository interface {
	// SaveRun inserts a comparison, replacing any run with the same id.
	SaveRun(ctx context.Context, cmp *model.Comparison) error

	// GetRun retrieves a run by its id.
	GetRun(ctx context.Context, runID string) (*model.Comparison, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*model.Comparison, error)

	// DeleteRun removes a run.
	DeleteRun(ctx context.Context, runID string) error
}

// DefaultListLimit caps ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
