package agentframework

import "context"

// RunContext identifies the run in progress. Agents store it in the context
// passed to context providers, tools and middleware.
type RunContext struct {
	RunID     string
	SessionID string
	UserID    string
	AgentID   string
	AgentName string
	Session   *Session
}

type runContextKey struct{}

// WithRunContext returns a copy of ctx carrying rc.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFrom returns the run context stored in ctx, or nil.
func RunContextFrom(ctx context.Context) *RunContext {
	rc, _ := ctx.Value(runContextKey{}).(*RunContext)
	return rc
}

// Forward returns options that run a nested runner (a team member, a
// workflow step) in the same session and for the same user. Session state
// is shared. The session's message store is neither replayed into the
// nested run nor extended by it.
func (rc *RunContext) Forward() []RunOption {
	var opts []RunOption
	if rc.Session != nil {
		opts = append(opts, WithSession(rc.Session))
	} else {
		opts = append(opts, WithSessionID(rc.SessionID))
	}
	if rc.UserID != "" {
		opts = append(opts, WithUserID(rc.UserID))
	}
	return append(opts, func(c *RunConfig) { c.nested = true })
}

// UserIDFrom returns the user of the current run, or "".
func UserIDFrom(ctx context.Context) string {
	if rc := RunContextFrom(ctx); rc != nil {
		return rc.UserID
	}
	return ""
}
