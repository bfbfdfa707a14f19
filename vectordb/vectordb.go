// Package vectordb defines the vector store used by knowledge bases and the
// ranking shared by its backends: cosine similarity, BM25 keyword scoring
// and reciprocal rank fusion for hybrid search.
package vectordb

import (
	"context"
	"errors"
)

// ErrCollectionMissing is returned when searching a collection that was
// never created.
var ErrCollectionMissing = errors.New("vectordb: collection does not exist")

// Embedder turns text into vectors. gemini.Embedder satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// SearchType selects how documents are ranked.
type SearchType string

const (
	SearchVector  SearchType = "vector"
	SearchKeyword SearchType = "keyword"
	SearchHybrid  SearchType = "hybrid"
)

// Document is one chunk stored in a collection.
type Document struct {
	ID        string         `json:"id"`
	ContentID string         `json:"content_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta_data,omitempty"`
	Embedding []float32      `json:"-"`

	// Score is set on search results. Its scale depends on the search type.
	Score float64 `json:"score,omitempty"`
}

// SearchRequest describes a query. Vector is required for vector and hybrid
// search, Query for keyword and hybrid search.
type SearchRequest struct {
	Query  string
	Vector []float32
	Limit  int
	Type   SearchType
}

// VectorDB stores and searches documents of a single collection.
type VectorDB interface {
	Create(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
	Drop(ctx context.Context) error
	Upsert(ctx context.Context, docs []Document) error
	Search(ctx context.Context, req SearchRequest) ([]Document, error)
	DeleteByContentID(ctx context.Context, contentID string) error
}

// DefaultLimit is used when a request does not set one.
const DefaultLimit = 5

func (r SearchRequest) limit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// Normalize fills in the request defaults: the limit, and the search type
// implied by which of Query and Vector are set.
func (r SearchRequest) Normalize() SearchRequest {
	r.Limit = r.limit()
	if r.Type == "" {
		switch {
		case len(r.Vector) > 0 && r.Query != "":
			r.Type = SearchHybrid
		case len(r.Vector) > 0:
			r.Type = SearchVector
		default:
			r.Type = SearchKeyword
		}
	}
	return r
}
