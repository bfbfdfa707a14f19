package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository stores user memories.
type MemoryRepository struct {
	db *DB
}

// Memories returns the memory repository.
func (d *DB) Memories() *MemoryRepository { return &MemoryRepository{db: d} }

// Add stores a new memory for userID and returns it.
func (r *MemoryRepository) Add(ctx context.Context, userID, memory string, topics []string) (*Memory, error) {
	ctx, span := tracer.Start(ctx, "storage.MemoryRepository.Add")
	defer span.End()

	m := &Memory{
		ID:     uuid.NewString(),
		UserID: userID,
		Memory: memory,
		Topics: topics,
	}
	if err := r.db.Gorm(ctx).Create(m).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("saving memory: %w", err)
	}
	return m, nil
}

// Update replaces the text and topics of a memory owned by userID.
func (r *MemoryRepository) Update(ctx context.Context, userID, id, memory string, topics []string) error {
	ctx, span := tracer.Start(ctx, "storage.MemoryRepository.Update")
	defer span.End()

	res := r.db.Gorm(ctx).Model(&Memory{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("memory", "topics", "updated_at").
		Updates(&Memory{Memory: memory, Topics: topics, UpdatedAt: time.Now()})
	if res.Error != nil {
		span.RecordError(res.Error)
		return fmt.Errorf("updating memory %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating memory %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a memory owned by userID.
func (r *MemoryRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, span := tracer.Start(ctx, "storage.MemoryRepository.Delete")
	defer span.End()

	res := r.db.Gorm(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Memory{})
	if res.Error != nil {
		span.RecordError(res.Error)
		return fmt.Errorf("deleting memory %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deleting memory %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns the memories of userID, oldest first. An empty userID lists
// every user's memories.
func (r *MemoryRepository) List(ctx context.Context, userID string) ([]Memory, error) {
	ctx, span := tracer.Start(ctx, "storage.MemoryRepository.List")
	defer span.End()

	q := r.db.Gorm(ctx).Order("created_at ASC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var out []Memory
	if err := q.Find(&out).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	return out, nil
}

// Clear removes every memory of userID.
func (r *MemoryRepository) Clear(ctx context.Context, userID string) error {
	if err := r.db.Gorm(ctx).Where("user_id = ?", userID).Delete(&Memory{}).Error; err != nil {
		return fmt.Errorf("clearing memories: %w", err)
	}
	return nil
}
