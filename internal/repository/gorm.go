package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Migrate creates or updates the simulation_runs table.
func (r *GormRunRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&SimulationRun{}); err != nil {
		return fmt.Errorf("failed to migrate simulation_runs: %w", err)
	}
	return nil
}

// SaveRun inserts cmp, replacing any row with the same run id.
func (r *GormRunRepository) SaveRun(ctx context.Context, cmp *model.Comparison) error {
	row, err := NewSimulationRun(cmp)
	if err != nil {
		return fmt.Errorf("failed to marshal run results: %w", err)
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"scenario_name", "heap_size", "operations", "agree", "results", "created_at"}),
		}).
		Create(row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save run", err)
	}
	return nil
}

// GetRun retrieves a run by its id.
func (r *GormRunRepository) GetRun(ctx context.Context, runID string) (*model.Comparison, error) {
	var row SimulationRun

	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", runID)
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to get run", err)
	}

	return row.ToModel()
}

// ListRuns returns the most recent runs, newest first.
func (r *GormRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Comparison, error) {
	var rows []SimulationRun

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(listLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list runs", err)
	}

	out := make([]*model.Comparison, 0, len(rows))
	for i := range rows {
		cmp, err := rows[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode run %s: %w", rows[i].RunID, err)
		}
		out = append(out, cmp)
	}
	return out, nil
}

// DeleteRun removes a run.
func (r *GormRunRepository) DeleteRun(ctx context.Context, runID string) error {
	result := r.db.WithContext(ctx).Where("run_id = ?", runID).Delete(&SimulationRun{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete run", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "run not found: %s", runID)
	}
	return nil
}
