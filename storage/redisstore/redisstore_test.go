package redisstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/storage/redisstore"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redisstore.Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatal(err)
	}
	rdb.Close()

	if _, err := redisstore.Connect(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestMessageStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	store := redisstore.NewMessageStore(rdb, "session_1", redisstore.WithTTL(time.Hour))

	err := store.AddMessages(ctx, []af.Message{
		af.NewUserMessage("What's the weather?"),
		af.NewAssistantMessage("Sunny."),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.AddMessages(ctx, []af.Message{af.NewUserMessage("And tomorrow?")}); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 || msgs[1].Role != af.RoleAssistant || msgs[2].Text() != "And tomorrow?" {
		t.Errorf("messages = %+v", msgs)
	}
	if ttl := mr.TTL(store.Key()); ttl != time.Hour {
		t.Errorf("ttl = %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	msgs, _ = store.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Errorf("messages survived expiry: %d", len(msgs))
	}
}

func TestMessageStore_WithAgentSession(t *testing.T) {
	_, rdb := newRedis(t)
	client := &fixedClient{reply: "Hello!"}
	agent := af.NewAgent(client, af.WithMessageStoreFactory(redisstore.Factory(rdb, redisstore.WithKeyPrefix("chat:"))))

	sess := agent.NewSession()
	for _, q := range []string{"hi", "again"} {
		if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage(q)}, af.WithSession(sess)); err != nil {
			t.Fatal(err)
		}
	}
	store := sess.Store().(*redisstore.MessageStore)
	if got := store.Key()[:5]; got != "chat:" {
		t.Errorf("key = %q", store.Key())
	}
	msgs, _ := store.ListMessages(context.Background())
	if len(msgs) != 4 {
		t.Errorf("stored %d messages", len(msgs))
	}
	if n := len(client.last); n < 3 {
		t.Errorf("second run saw %d messages", n)
	}
}

type fixedClient struct {
	reply string
	last  []af.Message
}

func (c *fixedClient) Response(_ context.Context, msgs []af.Message, _ *af.ChatOptions) (*af.ChatResponse, error) {
	c.last = msgs
	return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage(c.reply)}}, nil
}

func (c *fixedClient) StreamResponse(context.Context, []af.Message, *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	return nil, nil
}

// countingEmbedder returns len(text) as a one-dimensional vector.
type countingEmbedder struct {
	calls   atomic.Int32
	batched atomic.Int32
	gate    chan struct{}
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.gate != nil {
		<-e.gate
	}
	return []float32{float32(len(text))}, nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batched.Add(int32(len(texts)))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (e *countingEmbedder) Dimensions() int { return 1 }
func (e *countingEmbedder) Model() string   { return "test" }

func TestCachedEmbedder_Embed(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	inner := &countingEmbedder{}
	c := redisstore.NewCachedEmbedder(inner, rdb, time.Minute)

	for range 3 {
		vec, err := c.Embed(ctx, "coconut")
		if err != nil {
			t.Fatal(err)
		}
		if vec[0] != 7 {
			t.Errorf("vec = %v", vec)
		}
	}
	if inner.calls.Load() != 1 {
		t.Errorf("upstream calls = %d", inner.calls.Load())
	}
	keys := mr.Keys()
	if len(keys) != 1 || keys[0][:11] != "emb:test:1:" {
		t.Errorf("keys = %v", keys)
	}
	if c.Dimensions() != 1 {
		t.Errorf("dims = %d", c.Dimensions())
	}
}

func TestCachedEmbedder_ConcurrentMissesShareCall(t *testing.T) {
	_, rdb := newRedis(t)
	inner := &countingEmbedder{gate: make(chan struct{})}
	c := redisstore.NewCachedEmbedder(inner, rdb, 0)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Embed(context.Background(), "galangal"); err != nil {
				t.Error(err)
			}
		}()
	}
	// Let the goroutines pile up behind the first call.
	time.Sleep(50 * time.Millisecond)
	close(inner.gate)
	wg.Wait()

	if n := inner.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d", n)
	}
}

func TestCachedEmbedder_EmbedBatch(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	inner := &countingEmbedder{}
	c := redisstore.NewCachedEmbedder(inner, rdb, time.Minute)

	if _, err := c.Embed(ctx, "soup"); err != nil {
		t.Fatal(err)
	}
	vecs, err := c.EmbedBatch(ctx, []string{"soup", "noodles", "rice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 3 || vecs[0][0] != 4 || vecs[1][0] != 7 || vecs[2][0] != 4 {
		t.Errorf("vecs = %v", vecs)
	}
	if n := inner.batched.Load(); n != 2 {
		t.Errorf("batched misses = %d", n)
	}
}
