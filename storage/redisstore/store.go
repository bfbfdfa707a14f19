package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// MessageStore is an [af.MessageStore] holding one session's messages in a
// redis list. Every write refreshes the TTL.
type MessageStore struct {
	rdb    redis.Cmdable
	prefix string
	key    string
	ttl    time.Duration
}

var _ af.MessageStore = (*MessageStore)(nil)

// StoreOption configures a [MessageStore].
type StoreOption func(*MessageStore)

// WithTTL sets the session expiry. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MessageStore) { s.ttl = ttl }
}

// WithKeyPrefix changes the "session:" key prefix.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *MessageStore) { s.prefix = prefix }
}

// NewMessageStore returns the store of sessionID.
func NewMessageStore(rdb redis.Cmdable, sessionID string, opts ...StoreOption) *MessageStore {
	s := &MessageStore{rdb: rdb, prefix: "session:", ttl: DefaultTTL}
	for _, o := range opts {
		o(s)
	}
	s.key = s.prefix + sessionID + ":messages"
	return s
}

// Factory returns a store factory for [af.WithMessageStoreFactory]. Each
// store gets a fresh session key.
func Factory(rdb redis.Cmdable, opts ...StoreOption) func() af.MessageStore {
	return func() af.MessageStore {
		return NewMessageStore(rdb, uuid.NewString(), opts...)
	}
}

// Key returns the redis key of the list.
func (s *MessageStore) Key() string { return s.key }

// ListMessages returns the stored messages in order.
func (s *MessageStore) ListMessages(ctx context.Context) ([]af.Message, error) {
	ctx, span := tracer.Start(ctx, "redisstore.ListMessages")
	defer span.End()

	raw, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	msgs := make([]af.Message, 0, len(raw))
	for i, r := range raw {
		var m af.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("decoding message %d of %s: %w", i, s.key, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// AddMessages appends msgs.
func (s *MessageStore) AddMessages(ctx context.Context, msgs []af.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "redisstore.AddMessages")
	defer span.End()

	values := make([]any, len(msgs))
	for i, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding message: %w", err)
		}
		values[i] = b
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

// Clear deletes the session's messages.
func (s *MessageStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}

// Serialize reports where the messages live.
func (s *MessageStore) Serialize() (map[string]any, error) {
	return map[string]any{"redis_key": s.key, "ttl": s.ttl.String()}, nil
}
