package storage

import (
	"context"
	"fmt"
	"slices"
)

// RunRepository stores completed agent and team runs.
type RunRepository struct {
	db *DB
}

// Runs returns the run repository.
func (d *DB) Runs() *RunRepository { return &RunRepository{db: d} }

// Create inserts a run.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := tracer.Start(ctx, "storage.RunRepository.Create")
	defer span.End()

	if run.Status == "" {
		run.Status = StatusCompleted
	}
	if err := r.db.Gorm(ctx).Create(run).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// ListBySession returns every run of the session, oldest first.
func (r *RunRepository) ListBySession(ctx context.Context, sessionID string) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "storage.RunRepository.ListBySession")
	defer span.End()

	var out []Run
	err := r.db.Gorm(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return out, nil
}

// Recent returns the last n completed runs of the session, oldest first.
// A non-empty componentID keeps only the runs of that agent, team or
// workflow.
func (r *RunRepository) Recent(ctx context.Context, sessionID, componentID string, n int) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "storage.RunRepository.Recent")
	defer span.End()

	q := r.db.Gorm(ctx).Where("session_id = ? AND status = ?", sessionID, StatusCompleted)
	if componentID != "" {
		q = q.Where("component_id = ?", componentID)
	}
	var out []Run
	err := q.
		Order("created_at DESC").
		Limit(n).
		Find(&out).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}
