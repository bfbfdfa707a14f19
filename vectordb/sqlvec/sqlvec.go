// Package sqlvec is a [vectordb.VectorDB] kept in the application database.
// Embeddings are stored as JSON and scored in process, which suits the
// few thousand chunks a local knowledge base holds.
package sqlvec

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/vectordb"
)

var tracer = otel.Tracer("github.com/agentcookbook/gemini-agents/vectordb/sqlvec")

// row is a vector_documents record.
type row struct {
	Collection string `gorm:"primaryKey"`
	ID         string `gorm:"primaryKey"`
	ContentID  string
	Name       string
	Content    string
	MetaData   map[string]any `gorm:"serializer:json"`
	Embedding  []float32      `gorm:"serializer:json"`
	CreatedAt  time.Time
}

func (row) TableName() string { return "vector_documents" }

// marker is the row that records a created collection.
const marker = "__collection__"

// Store is one collection of the vector_documents table.
type Store struct {
	db         *storage.DB
	collection string
}

var _ vectordb.VectorDB = (*Store)(nil)

// New returns the collection named collection in db.
func New(db *storage.DB, collection string) *Store {
	return &Store{db: db, collection: collection}
}

// Collection returns the collection name.
func (s *Store) Collection() string { return s.collection }

func (s *Store) gorm(ctx context.Context) *gorm.DB {
	return s.db.Gorm(ctx).Model(&row{}).Where("collection = ?", s.collection)
}

// Create registers the collection. It is a no-op when it exists.
func (s *Store) Create(ctx context.Context) error {
	err := s.db.Gorm(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row{
		Collection: s.collection,
		ID:         marker,
		Content:    "",
		Embedding:  []float32{},
	}).Error
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	return nil
}

// Exists reports whether the collection was created.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	var n int64
	if err := s.gorm(ctx).Where("id = ?", marker).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	return n > 0, nil
}

// Drop deletes every document of the collection.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.db.Gorm(ctx).Where("collection = ?", s.collection).Delete(&row{}).Error; err != nil {
		return fmt.Errorf("dropping collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert inserts docs, replacing documents with the same id.
func (s *Store) Upsert(ctx context.Context, docs []vectordb.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "sqlvec.Upsert", trace.WithAttributes(
		attribute.String("collection", s.collection),
		attribute.Int("documents", len(docs)),
	))
	defer span.End()

	rows := make([]row, len(docs))
	for i, d := range docs {
		rows[i] = row{
			Collection: s.collection,
			ID:         d.ID,
			ContentID:  d.ContentID,
			Name:       d.Name,
			Content:    d.Content,
			MetaData:   d.Meta,
			Embedding:  d.Embedding,
		}
	}
	err := s.db.Gorm(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_id", "name", "content", "meta_data", "embedding"}),
	}).CreateInBatches(rows, 100).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upserting into %s: %w", s.collection, err)
	}
	return nil
}

// Search loads the collection and ranks it in memory.
func (s *Store) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Document, error) {
	req = req.Normalize()
	ctx, span := tracer.Start(ctx, "sqlvec.Search", trace.WithAttributes(
		attribute.String("collection", s.collection),
		attribute.String("search_type", string(req.Type)),
	))
	defer span.End()

	var rows []row
	if err := s.gorm(ctx).Where("id <> ?", marker).Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("searching %s: %w", s.collection, err)
	}
	if len(rows) == 0 {
		ok, err := s.Exists(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", vectordb.ErrCollectionMissing, s.collection)
		}
	}

	docs := make([]vectordb.Document, len(rows))
	for i, r := range rows {
		docs[i] = vectordb.Document{
			ID:        r.ID,
			ContentID: r.ContentID,
			Name:      r.Name,
			Content:   r.Content,
			Meta:      r.MetaData,
			Embedding: r.Embedding,
		}
	}
	return vectordb.Rank(docs, req)
}

// DeleteByContentID removes the chunks of one knowledge content.
func (s *Store) DeleteByContentID(ctx context.Context, contentID string) error {
	if err := s.db.Gorm(ctx).Where("collection = ? AND content_id = ?", s.collection, contentID).Delete(&row{}).Error; err != nil {
		return fmt.Errorf("deleting content %s from %s: %w", contentID, s.collection, err)
	}
	return nil
}
