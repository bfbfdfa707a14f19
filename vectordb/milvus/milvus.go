// Package milvus is a [vectordb.VectorDB] backed by a Milvus collection with
// an HNSW index on cosine distance. Keyword ranking is done in process over
// the stored chunks since the collection carries no sparse index.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentcookbook/gemini-agents/vectordb"
)

var tracer = otel.Tracer("github.com/agentcookbook/gemini-agents/vectordb/milvus")

const (
	fieldID        = "id"
	fieldVector    = "vector"
	fieldContentID = "content_id"
	fieldName      = "name"
	fieldContent   = "content"
	fieldMeta      = "meta_data"
)

var outputFields = []string{fieldID, fieldContentID, fieldName, fieldContent, fieldMeta}

// Store is a Milvus collection.
type Store struct {
	c          client.Client
	collection string
	dimensions int

	hnswM          int
	efConstruction int
	ef             int
	scanLimit      int64
}

var _ vectordb.VectorDB = (*Store)(nil)

// Option configures a [Store].
type Option func(*Store)

// WithHNSW sets the index build parameters.
func WithHNSW(m, efConstruction int) Option {
	return func(s *Store) { s.hnswM, s.efConstruction = m, efConstruction }
}

// WithSearchEf sets the HNSW search breadth.
func WithSearchEf(ef int) Option {
	return func(s *Store) { s.ef = ef }
}

// WithScanLimit bounds how many chunks keyword search reads.
func WithScanLimit(n int) Option {
	return func(s *Store) { s.scanLimit = int64(n) }
}

// Connect dials a Milvus server.
func Connect(ctx context.Context, address string) (client.Client, error) {
	c, err := client.NewClient(ctx, client.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus at %s: %w", address, err)
	}
	return c, nil
}

// New returns the collection named collection holding vectors of the given
// dimensions.
func New(c client.Client, collection string, dimensions int, opts ...Option) *Store {
	s := &Store{
		c:              c,
		collection:     collection,
		dimensions:     dimensions,
		hnswM:          16,
		efConstruction: 200,
		ef:             64,
		scanLimit:      4096,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) schema() *entity.Schema {
	varchar := func(name, maxLen string) *entity.Field {
		return &entity.Field{Name: name, DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": maxLen}}
	}
	id := varchar(fieldID, "128")
	id.PrimaryKey = true
	return &entity.Schema{
		CollectionName: s.collection,
		Description:    "knowledge chunks",
		Fields: []*entity.Field{
			id,
			{
				Name:       fieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(s.dimensions)},
			},
			varchar(fieldContentID, "128"),
			varchar(fieldName, "512"),
			varchar(fieldContent, "65535"),
			varchar(fieldMeta, "65535"),
		},
	}
}

// Create creates, indexes and loads the collection when it is missing.
func (s *Store) Create(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.Create", trace.WithAttributes(attribute.String("collection", s.collection)))
	defer span.End()

	ok, err := s.c.HasCollection(ctx, s.collection)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if !ok {
		if err := s.c.CreateCollection(ctx, s.schema(), entity.DefaultShardNumber); err != nil {
			span.RecordError(err)
			return fmt.Errorf("creating collection %s: %w", s.collection, err)
		}
		idx, err := entity.NewIndexHNSW(entity.COSINE, s.hnswM, s.efConstruction)
		if err != nil {
			return fmt.Errorf("building index params: %w", err)
		}
		if err := s.c.CreateIndex(ctx, s.collection, fieldVector, idx, false); err != nil {
			span.RecordError(err)
			return fmt.Errorf("indexing collection %s: %w", s.collection, err)
		}
	}
	if err := s.c.LoadCollection(ctx, s.collection, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("loading collection %s: %w", s.collection, err)
	}
	return nil
}

// Exists reports whether the collection exists.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.c.HasCollection(ctx, s.collection)
}

// Drop deletes the collection.
func (s *Store) Drop(ctx context.Context) error {
	ok, err := s.c.HasCollection(ctx, s.collection)
	if err != nil || !ok {
		return err
	}
	return s.c.DropCollection(ctx, s.collection)
}

// Upsert writes docs, replacing documents with the same id.
func (s *Store) Upsert(ctx context.Context, docs []vectordb.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.Upsert", trace.WithAttributes(
		attribute.String("collection", s.collection),
		attribute.Int("count", len(docs)),
	))
	defer span.End()

	var (
		ids        = make([]string, len(docs))
		vectors    = make([][]float32, len(docs))
		contentIDs = make([]string, len(docs))
		names      = make([]string, len(docs))
		contents   = make([]string, len(docs))
		metas      = make([]string, len(docs))
	)
	for i, d := range docs {
		if len(d.Embedding) != s.dimensions {
			return fmt.Errorf("document %s has %d dimensions, collection %s has %d", d.ID, len(d.Embedding), s.collection, s.dimensions)
		}
		meta, err := json.Marshal(d.Meta)
		if err != nil {
			return fmt.Errorf("encoding metadata of %s: %w", d.ID, err)
		}
		ids[i] = d.ID
		vectors[i] = d.Embedding
		contentIDs[i] = d.ContentID
		names[i] = d.Name
		contents[i] = d.Content
		metas[i] = string(meta)
	}

	_, err := s.c.Upsert(ctx, s.collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnFloatVector(fieldVector, s.dimensions, vectors),
		entity.NewColumnVarChar(fieldContentID, contentIDs),
		entity.NewColumnVarChar(fieldName, names),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldMeta, metas),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("upserting into %s: %w", s.collection, err)
	}
	if err := s.c.Flush(ctx, s.collection, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("flushing %s: %w", s.collection, err)
	}
	return nil
}

// Search runs a vector, keyword or hybrid query.
func (s *Store) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Document, error) {
	req = req.Normalize()
	ctx, span := tracer.Start(ctx, "milvus.Search", trace.WithAttributes(
		attribute.String("collection", s.collection),
		attribute.String("search_type", string(req.Type)),
		attribute.Int("limit", req.Limit),
	))
	defer span.End()

	switch req.Type {
	case vectordb.SearchVector:
		return s.vectorSearch(ctx, req.Vector, req.Limit)
	case vectordb.SearchKeyword:
		return s.keywordSearch(ctx, req.Query, req.Limit)
	case vectordb.SearchHybrid:
		vec, err := s.vectorSearch(ctx, req.Vector, req.Limit*2)
		if err != nil {
			return nil, err
		}
		kw, err := s.keywordSearch(ctx, req.Query, req.Limit*2)
		if err != nil {
			return nil, err
		}
		return vectordb.FuseRRF(req.Limit, vec, kw), nil
	default:
		return nil, fmt.Errorf("unknown search type %q", req.Type)
	}
}

func (s *Store) vectorSearch(ctx context.Context, vec []float32, limit int) ([]vectordb.Document, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("vector search needs a query vector")
	}
	sp, err := entity.NewIndexHNSWSearchParam(max(s.ef, limit))
	if err != nil {
		return nil, fmt.Errorf("building search params: %w", err)
	}
	results, err := s.c.Search(ctx, s.collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(vec)}, fieldVector, entity.COSINE, limit, sp)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.collection, err)
	}

	var out []vectordb.Document
	for _, r := range results {
		docs := documents(r.Fields, r.ResultCount)
		for i := range docs {
			if i < len(r.Scores) {
				docs[i].Score = float64(r.Scores[i])
			}
		}
		out = append(out, docs...)
	}
	return out, nil
}

func (s *Store) keywordSearch(ctx context.Context, query string, limit int) ([]vectordb.Document, error) {
	rs, err := s.c.Query(ctx, s.collection, nil, fieldID+` != ""`, outputFields, client.WithLimit(s.scanLimit))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.collection, err)
	}
	n := 0
	if col := rs.GetColumn(fieldID); col != nil {
		n = col.Len()
	}
	return vectordb.Rank(documents(rs, n), vectordb.SearchRequest{Query: query, Limit: limit, Type: vectordb.SearchKeyword})
}

// DeleteByContentID removes the chunks of one knowledge content.
func (s *Store) DeleteByContentID(ctx context.Context, contentID string) error {
	expr := fmt.Sprintf("%s == %q", fieldContentID, contentID)
	if err := s.c.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("deleting content %s from %s: %w", contentID, s.collection, err)
	}
	return nil
}

func documents(rs client.ResultSet, n int) []vectordb.Document {
	docs := make([]vectordb.Document, n)
	fill := func(field string, set func(d *vectordb.Document, v string)) {
		col, ok := rs.GetColumn(field).(*entity.ColumnVarChar)
		if !ok {
			return
		}
		data := col.Data()
		for i := 0; i < n && i < len(data); i++ {
			set(&docs[i], data[i])
		}
	}
	fill(fieldID, func(d *vectordb.Document, v string) { d.ID = v })
	fill(fieldContentID, func(d *vectordb.Document, v string) { d.ContentID = v })
	fill(fieldName, func(d *vectordb.Document, v string) { d.Name = v })
	fill(fieldContent, func(d *vectordb.Document, v string) { d.Content = v })
	fill(fieldMeta, func(d *vectordb.Document, v string) {
		if v != "" && v != "null" {
			_ = json.Unmarshal([]byte(v), &d.Meta)
		}
	})
	return docs
}
