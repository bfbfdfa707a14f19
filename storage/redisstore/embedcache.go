package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/agentcookbook/gemini-agents/vectordb"
)

// CachedEmbedder memoizes an embedder in redis. Concurrent requests for the
// same text share one upstream call.
type CachedEmbedder struct {
	inner  vectordb.Embedder
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

var _ vectordb.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner. A zero ttl keeps entries forever.
func NewCachedEmbedder(inner vectordb.Embedder, rdb redis.Cmdable, ttl time.Duration) *CachedEmbedder {
	model := "embedder"
	if m, ok := inner.(interface{ Model() string }); ok {
		model = m.Model()
	}
	return &CachedEmbedder{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		prefix: "emb:" + model + ":" + strconv.Itoa(inner.Dimensions()) + ":",
	}
}

// Dimensions returns the wrapped embedder's dimensions.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector of text, computing it on a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	ctx, span := tracer.Start(ctx, "redisstore.Embed", trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if vec, ok := c.get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return vec, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err, _ := c.group.Do(key, func() (any, error) {
		if vec, ok := c.get(ctx, key); ok {
			return vec, nil
		}
		vec, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, vec)
		return vec, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v.([]float32), nil
}

// EmbedBatch serves hits from redis and embeds the misses in one call.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out := make([][]float32, len(texts))
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		vals = make([]any, len(texts))
	}

	var (
		missIdx   []int
		missTexts []string
	)
	for i, v := range vals {
		if s, ok := v.(string); ok {
			var vec []float32
			if json.Unmarshal([]byte(s), &vec) == nil {
				out[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.set(ctx, keys[i], vecs[j])
	}
	return out, nil
}

func (c *CachedEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(b, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

// set stores vec. Failures only cost a future cache miss.
func (c *CachedEmbedder) set(ctx context.Context, key string, vec []float32) {
	b, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil && !errors.Is(err, context.Canceled) {
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
