package storage

import (
	"context"
	"log/slog"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// HistoryProvider is an [af.ContextProvider] that persists every run to the
// database and replays the last runs of the session into the next request.
type HistoryProvider struct {
	af.NoOpContextProvider

	db          *DB
	numRuns     int
	sessionType SessionType
}

// HistoryOption configures a [HistoryProvider].
type HistoryOption func(*HistoryProvider)

// WithSessionType records sessions as team or workflow sessions.
func WithSessionType(t SessionType) HistoryOption {
	return func(p *HistoryProvider) { p.sessionType = t }
}

// History returns a provider replaying the last numRuns runs of the current
// session. numRuns <= 0 stores runs without replaying them.
func History(db *DB, numRuns int, opts ...HistoryOption) *HistoryProvider {
	p := &HistoryProvider{db: db, numRuns: numRuns, sessionType: SessionAgent}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Invoking prepends the recent runs of the session as user and assistant
// turns. Only runs of the same agent are replayed, so team members and
// workflow steps sharing a session keep separate histories. Tool traffic
// and model thoughts are not replayed.
func (p *HistoryProvider) Invoking(ctx context.Context, _ []af.Message) (*af.InvocationContext, error) {
	rc := af.RunContextFrom(ctx)
	if rc == nil || p.numRuns <= 0 {
		return &af.InvocationContext{}, nil
	}
	runs, err := p.db.Runs().Recent(ctx, rc.SessionID, rc.AgentID, p.numRuns)
	if err != nil {
		return nil, err
	}
	var msgs []af.Message
	for _, run := range runs {
		msgs = append(msgs, replayable(run.Messages)...)
	}
	if len(msgs) > 0 {
		slog.DebugContext(ctx, "replaying session history", "session_id", rc.SessionID, "runs", len(runs))
	}
	return &af.InvocationContext{Messages: msgs}, nil
}

// Invoked saves the session and the run.
func (p *HistoryProvider) Invoked(ctx context.Context, request []af.Message, resp *af.AgentResponse) error {
	rc := af.RunContextFrom(ctx)
	if rc == nil {
		return nil
	}
	return p.Record(ctx, rc, request, resp)
}

// Record stores a finished run and touches its session. Teams and
// workflows call it directly.
func (p *HistoryProvider) Record(ctx context.Context, rc *af.RunContext, request []af.Message, resp *af.AgentResponse) error {
	sess := &Session{
		ID:          rc.SessionID,
		SessionType: p.sessionType,
		ComponentID: resp.AgentID,
		UserID:      rc.UserID,
	}
	if rc.Session != nil {
		sess.State = rc.Session.State()
	}
	if err := p.db.Sessions().Upsert(ctx, sess); err != nil {
		return err
	}

	msgs := append(append([]af.Message(nil), request...), resp.Messages...)
	return p.db.Runs().Create(ctx, &Run{
		ID:          resp.RunID,
		SessionID:   rc.SessionID,
		ComponentID: resp.AgentID,
		UserID:      rc.UserID,
		Input:       af.LastUserText(request),
		Content:     resp.Text(),
		Messages:    msgs,
		Metrics:     resp.Metrics,
		Status:      StatusCompleted,
	})
}

func replayable(msgs []af.Message) []af.Message {
	var out []af.Message
	for _, m := range msgs {
		switch m.Role {
		case af.RoleUser:
			out = append(out, m)
		case af.RoleAssistant:
			if text := m.Text(); text != "" {
				out = append(out, af.Message{Role: af.RoleAssistant, Contents: af.Contents{&af.TextContent{Text: text}}, AuthorName: m.AuthorName})
			}
		}
	}
	return out
}
