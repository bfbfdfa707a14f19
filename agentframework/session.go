package agentframework

import (
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// Session holds the conversation state shared by consecutive runs: an
// identifier, the user it belongs to, an optional local [MessageStore]
// and a free-form state map.
type Session struct {
	mu     sync.Mutex
	id     string
	userID string
	store  MessageStore
	state  map[string]any
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithSessionStore sets the local message store for the session.
func WithSessionStore(store MessageStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// WithSessionKey uses a caller-chosen identifier instead of a generated one.
func WithSessionKey(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithSessionUserID sets the user that owns the session.
func WithSessionUserID(userID string) SessionOption {
	return func(s *Session) { s.userID = userID }
}

// WithSessionState seeds the session state.
func WithSessionState(state map[string]any) SessionOption {
	return func(s *Session) { maps.Copy(s.state, state) }
}

// NewSession creates a new Session with a generated ID.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:    uuid.NewString(),
		state: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the owner of the session, or "".
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SetUserID sets the owner of the session.
func (s *Session) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// Store returns the local message store, or nil.
func (s *Session) Store() MessageStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Get returns a session state value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[key]
	return v, ok
}

// Set stores a session state value.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
}

// State returns a copy of the session state.
func (s *Session) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.state)
}

// Serialize returns the session state as a serializable map.
func (s *Session) Serialize() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]any{
		"id": s.id,
	}
	if s.userID != "" {
		out["userId"] = s.userID
	}
	if len(s.state) > 0 {
		out["state"] = maps.Clone(s.state)
	}
	if s.store != nil {
		storeState, err := s.store.Serialize()
		if err != nil {
			return nil, fmt.Errorf("%w: serialize store: %w", ErrSession, err)
		}
		out["store"] = storeState
	}
	return out, nil
}
