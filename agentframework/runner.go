package agentframework

import "context"

// Runner is anything that answers messages: an [Agent], a team or a workflow.
type Runner interface {
	ID() string
	Name() string
	Description() string
	Run(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponse, error)
	RunStream(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponseStream, error)
}

// RunOption configures a single Run or RunStream call.
type RunOption func(*RunConfig)

// RunConfig is the resolved set of [RunOption] values.
type RunConfig struct {
	Session   *Session
	SessionID string
	UserID    string
	Tools     []Tool
	Options   *ChatOptions

	nested bool
}

// ResolveRunOptions applies opts to an empty [RunConfig].
func ResolveRunOptions(opts ...RunOption) *RunConfig {
	cfg := &RunConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithSession attaches a [Session] for multi-turn conversation.
func WithSession(s *Session) RunOption {
	return func(c *RunConfig) { c.Session = s }
}

// WithSessionID runs inside the session with the given identifier. Stored
// history for that session is replayed by history providers.
func WithSessionID(id string) RunOption {
	return func(c *RunConfig) { c.SessionID = id }
}

// WithUserID scopes the run to a user (memories, sessions).
func WithUserID(id string) RunOption {
	return func(c *RunConfig) { c.UserID = id }
}

// WithRunTools provides per-call tool overrides (merged with agent defaults).
func WithRunTools(tools ...Tool) RunOption {
	return func(c *RunConfig) { c.Tools = tools }
}

// WithRunOptions provides per-call [ChatOptions] overrides.
func WithRunOptions(opts *ChatOptions) RunOption {
	return func(c *RunConfig) { c.Options = opts }
}

// SessionFor returns the session a run should use: the attached one, or a
// new session carrying the requested identifiers.
func (c *RunConfig) SessionFor() (s *Session, created bool) {
	if c.Session != nil {
		if c.UserID != "" && c.Session.UserID() == "" {
			c.Session.SetUserID(c.UserID)
		}
		return c.Session, false
	}
	return NewSession(WithSessionKey(c.SessionID), WithSessionUserID(c.UserID)), true
}
