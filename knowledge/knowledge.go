// Package knowledge ingests documents into a vector store and searches them
// on behalf of agents.
package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agentcookbook/gemini-agents/media"
	"github.com/agentcookbook/gemini-agents/storage"
	"github.com/agentcookbook/gemini-agents/vectordb"
)

var tracer = otel.Tracer("github.com/agentcookbook/gemini-agents/knowledge")

// ErrUnsupportedSource is returned for sources that cannot be read as text,
// such as PDFs. Attach those to a prompt instead.
var ErrUnsupportedSource = errors.New("knowledge: unsupported source")

// Source is one document to ingest. Exactly one of Text, URL and Path is
// read, in that order.
type Source struct {
	Name string
	Text string
	URL  string
	Path string
	Meta map[string]any
}

// Knowledge is a named, searchable document collection.
type Knowledge struct {
	name       string
	vdb        vectordb.VectorDB
	embedder   vectordb.Embedder
	contents   *storage.ContentRepository
	chunker    Chunker
	searchType vectordb.SearchType
	maxResults int
}

// Option configures a [Knowledge].
type Option func(*Knowledge)

// WithContentsDB records ingested contents so the same document is not
// inserted twice.
func WithContentsDB(repo *storage.ContentRepository) Option {
	return func(k *Knowledge) { k.contents = repo }
}

// WithChunker replaces the [FixedSizeChunker].
func WithChunker(c Chunker) Option {
	return func(k *Knowledge) { k.chunker = c }
}

// WithSearchType sets how searches rank documents. The default is hybrid.
func WithSearchType(t vectordb.SearchType) Option {
	return func(k *Knowledge) { k.searchType = t }
}

// WithMaxResults sets the default number of search results.
func WithMaxResults(n int) Option {
	return func(k *Knowledge) { k.maxResults = n }
}

// New creates a knowledge base over vdb. embedder may be nil only for
// keyword search.
func New(name string, vdb vectordb.VectorDB, embedder vectordb.Embedder, opts ...Option) *Knowledge {
	k := &Knowledge{
		name:       name,
		vdb:        vdb,
		embedder:   embedder,
		chunker:    FixedSizeChunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap},
		searchType: vectordb.SearchHybrid,
		maxResults: vectordb.DefaultLimit,
	}
	for _, o := range opts {
		o(k)
	}
	if k.embedder == nil {
		k.searchType = vectordb.SearchKeyword
	}
	return k
}

// Name returns the knowledge base name.
func (k *Knowledge) Name() string { return k.name }

// InsertResult describes an ingested source.
type InsertResult struct {
	ContentID string
	Chunks    int
	// Skipped is set when identical content was already ingested.
	Skipped bool
}

// Insert reads, chunks, embeds and stores src.
func (k *Knowledge) Insert(ctx context.Context, src Source) (*InsertResult, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Insert")
	defer span.End()
	span.SetAttributes(attribute.String("knowledge.name", k.name))

	text, origin, err := read(ctx, src)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	name := src.Name
	if name == "" {
		name = origin
	}
	hash := contentHash(name, text)

	var row *storage.Content
	if k.contents != nil {
		existing, err := k.contents.FindByHash(ctx, k.name, hash)
		switch {
		case err == nil && existing.Status == storage.ContentCompleted:
			slog.DebugContext(ctx, "knowledge content already ingested", "knowledge", k.name, "name", name)
			return &InsertResult{ContentID: existing.ID, Chunks: existing.ChunkCount, Skipped: true}, nil
		case err == nil:
			row = existing
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}
	if row == nil {
		row = &storage.Content{ID: uuid.NewString(), Knowledge: k.name, Name: name, ContentHash: hash, Source: origin}
	}
	row.Status = storage.ContentProcessing
	if err := k.saveContent(ctx, row); err != nil {
		return nil, err
	}

	if err := k.ensureCollection(ctx); err != nil {
		return nil, k.fail(ctx, row, err)
	}
	docs, err := k.documents(ctx, row.ID, name, hash, text, src.Meta)
	if err != nil {
		return nil, k.fail(ctx, row, err)
	}
	if err := k.vdb.Upsert(ctx, docs); err != nil {
		return nil, k.fail(ctx, row, err)
	}

	row.Status = storage.ContentCompleted
	row.ChunkCount = len(docs)
	if err := k.saveContent(ctx, row); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "knowledge content inserted", "knowledge", k.name, "name", name, "chunks", len(docs))
	return &InsertResult{ContentID: row.ID, Chunks: len(docs)}, nil
}

func (k *Knowledge) documents(ctx context.Context, contentID, name, hash, text string, meta map[string]any) ([]vectordb.Document, error) {
	chunks, err := k.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %s: %w", name, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("knowledge: %s has no text", name)
	}

	var vecs [][]float32
	if k.searchType != vectordb.SearchKeyword {
		if vecs, err = k.embedder.EmbedBatch(ctx, chunks); err != nil {
			return nil, fmt.Errorf("embedding %s: %w", name, err)
		}
		if len(vecs) != len(chunks) {
			return nil, fmt.Errorf("embedding %s: got %d vectors for %d chunks", name, len(vecs), len(chunks))
		}
	}

	docs := make([]vectordb.Document, len(chunks))
	for i, c := range chunks {
		m := map[string]any{"chunk": i}
		for key, v := range meta {
			m[key] = v
		}
		docs[i] = vectordb.Document{
			ID:        fmt.Sprintf("%s-%d", hash[:16], i),
			ContentID: contentID,
			Name:      name,
			Content:   c,
			Meta:      m,
		}
		if vecs != nil {
			docs[i].Embedding = vecs[i]
		}
	}
	return docs, nil
}

// Search returns the documents most relevant to query. limit <= 0 uses the
// configured maximum.
func (k *Knowledge) Search(ctx context.Context, query string, limit int) ([]vectordb.Document, error) {
	ctx, span := tracer.Start(ctx, "knowledge.Search")
	defer span.End()
	span.SetAttributes(attribute.String("knowledge.name", k.name))

	if limit <= 0 {
		limit = k.maxResults
	}
	req := vectordb.SearchRequest{Query: query, Limit: limit, Type: k.searchType}
	if k.searchType != vectordb.SearchKeyword {
		vec, err := k.embedder.Embed(ctx, query)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		req.Vector = vec
	}
	docs, err := k.vdb.Search(ctx, req)
	if errors.Is(err, vectordb.ErrCollectionMissing) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("knowledge.results", len(docs)))
	return docs, nil
}

// Remove deletes an ingested content and its chunks.
func (k *Knowledge) Remove(ctx context.Context, contentID string) error {
	if err := k.vdb.DeleteByContentID(ctx, contentID); err != nil {
		return err
	}
	if k.contents == nil {
		return nil
	}
	return k.contents.Delete(ctx, contentID)
}

// Contents lists what was ingested. It is empty without a contents DB.
func (k *Knowledge) Contents(ctx context.Context) ([]storage.Content, error) {
	if k.contents == nil {
		return nil, nil
	}
	return k.contents.List(ctx, k.name)
}

func (k *Knowledge) ensureCollection(ctx context.Context) error {
	ok, err := k.vdb.Exists(ctx)
	if err != nil || ok {
		return err
	}
	return k.vdb.Create(ctx)
}

func (k *Knowledge) saveContent(ctx context.Context, row *storage.Content) error {
	if k.contents == nil {
		return nil
	}
	return k.contents.Save(ctx, row)
}

func (k *Knowledge) fail(ctx context.Context, row *storage.Content, err error) error {
	row.Status = storage.ContentFailed
	if serr := k.saveContent(ctx, row); serr != nil {
		slog.WarnContext(ctx, "recording failed content", "knowledge", k.name, "error", serr)
	}
	return err
}

// read returns the text of src and where it came from.
func read(ctx context.Context, src Source) (string, string, error) {
	switch {
	case src.Text != "":
		return src.Text, "text", nil
	case src.URL != "":
		if isPDF(src.URL) {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSource, src.URL)
		}
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		body, typ, err := media.Download(ctx, src.URL)
		if err != nil {
			return "", "", err
		}
		if typ == "application/pdf" {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSource, src.URL)
		}
		return string(body), src.URL, nil
	case src.Path != "":
		if isPDF(src.Path) {
			return "", "", fmt.Errorf("%w: %s", ErrUnsupportedSource, src.Path)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", src.Path, err)
		}
		return string(data), filepath.Base(src.Path), nil
	}
	return "", "", errors.New("knowledge: empty source")
}

func isPDF(s string) bool {
	return strings.EqualFold(filepath.Ext(s), ".pdf")
}

func contentHash(name, text string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
