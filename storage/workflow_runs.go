package storage

import (
	"context"
	"fmt"
)

// WorkflowRunRepository stores workflow executions.
type WorkflowRunRepository struct {
	db *DB
}

// WorkflowRuns returns the workflow run repository.
func (d *DB) WorkflowRuns() *WorkflowRunRepository { return &WorkflowRunRepository{db: d} }

// Save inserts or updates a workflow run.
func (r *WorkflowRunRepository) Save(ctx context.Context, run *WorkflowRun) error {
	ctx, span := tracer.Start(ctx, "storage.WorkflowRunRepository.Save")
	defer span.End()

	if err := r.db.Gorm(ctx).Save(run).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("saving workflow run: %w", err)
	}
	return nil
}

// Get returns a workflow run, or [ErrNotFound].
func (r *WorkflowRunRepository) Get(ctx context.Context, id string) (*WorkflowRun, error) {
	var run WorkflowRun
	if err := r.db.Gorm(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting workflow run %s: %w", id, notFound(err))
	}
	return &run, nil
}

// List returns the runs of a workflow, newest first. An empty sessionID
// matches every session.
func (r *WorkflowRunRepository) List(ctx context.Context, workflowID, sessionID string) ([]WorkflowRun, error) {
	ctx, span := tracer.Start(ctx, "storage.WorkflowRunRepository.List")
	defer span.End()

	q := r.db.Gorm(ctx).Where("workflow_id = ?", workflowID)
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	var out []WorkflowRun
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing workflow runs: %w", err)
	}
	return out, nil
}
