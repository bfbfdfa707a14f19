package storage

import (
	"context"
	"fmt"
)

// Content status values.
const (
	ContentProcessing = "processing"
	ContentCompleted  = "completed"
	ContentFailed     = "failed"
)

// ContentRepository records what each knowledge base has ingested.
type ContentRepository struct {
	db *DB
}

// Contents returns the knowledge content repository.
func (d *DB) Contents() *ContentRepository { return &ContentRepository{db: d} }

// FindByHash returns the content of knowledge with the given hash, or
// [ErrNotFound].
func (r *ContentRepository) FindByHash(ctx context.Context, knowledge, hash string) (*Content, error) {
	ctx, span := tracer.Start(ctx, "storage.ContentRepository.FindByHash")
	defer span.End()

	var c Content
	err := r.db.Gorm(ctx).First(&c, "knowledge = ? AND content_hash = ?", knowledge, hash).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Save inserts or updates a content row.
func (r *ContentRepository) Save(ctx context.Context, c *Content) error {
	ctx, span := tracer.Start(ctx, "storage.ContentRepository.Save")
	defer span.End()

	if err := r.db.Gorm(ctx).Save(c).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("saving content: %w", err)
	}
	return nil
}

// List returns the contents of a knowledge base, oldest first.
func (r *ContentRepository) List(ctx context.Context, knowledge string) ([]Content, error) {
	ctx, span := tracer.Start(ctx, "storage.ContentRepository.List")
	defer span.End()

	var out []Content
	err := r.db.Gorm(ctx).Where("knowledge = ?", knowledge).Order("created_at ASC").Find(&out).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing contents: %w", err)
	}
	return out, nil
}

// Delete removes a content row.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.Gorm(ctx).Where("id = ?", id).Delete(&Content{})
	if res.Error != nil {
		return fmt.Errorf("deleting content %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deleting content %s: %w", id, ErrNotFound)
	}
	return nil
}
