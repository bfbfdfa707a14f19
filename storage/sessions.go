package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores agent, team and workflow sessions.
type SessionRepository struct {
	db *DB
}

// Sessions returns the session repository.
func (d *DB) Sessions() *SessionRepository { return &SessionRepository{db: d} }

// SessionFilter narrows [SessionRepository.List]. Zero fields match all.
type SessionFilter struct {
	Type        SessionType
	ComponentID string
	UserID      string
	Limit       int
}

// Upsert creates the session or updates its owner and state.
func (r *SessionRepository) Upsert(ctx context.Context, s *Session) error {
	ctx, span := tracer.Start(ctx, "storage.SessionRepository.Upsert")
	defer span.End()

	if s.SessionType == "" {
		s.SessionType = SessionAgent
	}
	err := r.db.Gorm(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"component_id", "user_id", "session_state", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get returns the session with the given id, or [ErrNotFound].
func (r *SessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "storage.SessionRepository.Get")
	defer span.End()

	var s Session
	if err := r.db.Gorm(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, notFound(err))
	}
	return &s, nil
}

// List returns sessions, most recently updated first.
func (r *SessionRepository) List(ctx context.Context, f SessionFilter) ([]Session, error) {
	ctx, span := tracer.Start(ctx, "storage.SessionRepository.List")
	defer span.End()

	q := r.db.Gorm(ctx).Model(&Session{})
	if f.Type != "" {
		q = q.Where("session_type = ?", f.Type)
	}
	if f.ComponentID != "" {
		q = q.Where("component_id = ?", f.ComponentID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []Session
	if err := q.Order("updated_at DESC").Find(&out).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// Delete removes the session and its runs.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "storage.SessionRepository.Delete")
	defer span.End()

	err := r.db.Gorm(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&Run{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
