package agentframework

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Agent is the top-level conversational agent. It composes a [ChatClient] with
// tools, middleware, session management, and context providers.
//
// Create one with [NewAgent] and functional options:
//
//	agent := agentframework.NewAgent(client,
//	    agentframework.WithName("Finance Agent"),
//	    agentframework.WithInstructions("Use tables to display data."),
//	    agentframework.WithToolkits(websearch.New()),
//	)
type Agent struct {
	id                  string
	name                string
	role                string
	description         string
	client              ChatClient
	instructions        []string
	expectedOutput      string
	markdown            bool
	tools               []Tool
	toolkits            []*Toolkit
	defaultOptions      *ChatOptions
	outputSchema        *ResponseFormat
	decodeOutput        func(text string) (any, error)
	messageStoreFactory func() MessageStore
	contextProviders    ContextProviders
	agentMiddleware     []AgentMiddleware
	chatMiddleware      []ChatMiddleware
	functionMiddleware  []FunctionMiddleware
	invocationConfig    InvocationConfig
}

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithID sets a stable identifier. A random one is generated otherwise.
func WithID(id string) AgentOption {
	return func(a *Agent) { a.id = id }
}

// WithName sets the agent's display name.
func WithName(name string) AgentOption {
	return func(a *Agent) { a.name = name }
}

// WithRole describes the agent's job inside a team.
func WithRole(role string) AgentOption {
	return func(a *Agent) { a.role = role }
}

// WithDescription sets the agent's description.
func WithDescription(desc string) AgentOption {
	return func(a *Agent) { a.description = desc }
}

// WithInstructions adds system instructions, one line each.
func WithInstructions(instructions ...string) AgentOption {
	return func(a *Agent) { a.instructions = append(a.instructions, instructions...) }
}

// WithExpectedOutput describes the shape of a good answer.
func WithExpectedOutput(s string) AgentOption {
	return func(a *Agent) { a.expectedOutput = s }
}

// WithMarkdown asks the model to format answers as markdown.
func WithMarkdown() AgentOption {
	return func(a *Agent) { a.markdown = true }
}

// WithDatetimeContext adds the current date and time to the instructions.
func WithDatetimeContext() AgentOption {
	return func(a *Agent) { a.contextProviders = append(a.contextProviders, DatetimeProvider{}) }
}

// WithTools adds tools to the agent's default tool set.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithToolkits adds every tool of each toolkit.
func WithToolkits(kits ...*Toolkit) AgentOption {
	return func(a *Agent) { a.toolkits = append(a.toolkits, kits...) }
}

// WithDefaultOptions sets default [ChatOptions] for all requests.
func WithDefaultOptions(opts *ChatOptions) AgentOption {
	return func(a *Agent) { a.defaultOptions = MergeChatOptions(a.defaultOptions, opts) }
}

// WithModel overrides the client's default model for this agent.
func WithModel(modelID string) AgentOption {
	return WithDefaultOptions(&ChatOptions{ModelID: modelID})
}

// WithOutputSchema makes the agent answer with JSON matching T. The decoded
// value is available through [DecodeOutput].
func WithOutputSchema[T any]() AgentOption {
	name := reflect.TypeFor[T]().Name()
	if name == "" {
		name = "output"
	}
	return func(a *Agent) {
		a.outputSchema = &ResponseFormat{Name: name, Schema: GenerateSchema[T](), Strict: true}
		a.decodeOutput = func(text string) (any, error) {
			v, err := decodeJSON[T](text)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
}

// WithMessageStoreFactory sets a factory for the message stores of sessions
// created with [Agent.NewSession].
func WithMessageStoreFactory(f func() MessageStore) AgentOption {
	return func(a *Agent) { a.messageStoreFactory = f }
}

// WithContextProvider attaches [ContextProvider]s for dynamic context
// injection. Providers run in the order they are added.
func WithContextProvider(cps ...ContextProvider) AgentOption {
	return func(a *Agent) { a.contextProviders = append(a.contextProviders, cps...) }
}

// WithAgentMiddleware adds [AgentMiddleware] to the agent pipeline.
func WithAgentMiddleware(mws ...AgentMiddleware) AgentOption {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

// WithChatMiddleware adds [ChatMiddleware] around every model call of a
// non-streaming run.
func WithChatMiddleware(mws ...ChatMiddleware) AgentOption {
	return func(a *Agent) { a.chatMiddleware = append(a.chatMiddleware, mws...) }
}

// WithFunctionMiddleware adds [FunctionMiddleware] to the tool invocation pipeline.
func WithFunctionMiddleware(mws ...FunctionMiddleware) AgentOption {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// WithInvocationConfig overrides the default [InvocationConfig] for the
// function calling loop.
func WithInvocationConfig(cfg InvocationConfig) AgentOption {
	return func(a *Agent) { a.invocationConfig = cfg }
}

// NewAgent creates an Agent with the given [ChatClient] and options.
func NewAgent(client ChatClient, opts ...AgentOption) *Agent {
	a := &Agent{
		id:               uuid.NewString(),
		client:           client,
		invocationConfig: DefaultInvocationConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Role returns the agent's team role.
func (a *Agent) Role() string { return a.role }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// Instructions returns the composed system prompt.
func (a *Agent) Instructions() string { return a.systemPrompt() }

// ModelID returns the model the agent talks to, when known.
func (a *Agent) ModelID() string {
	if a.defaultOptions != nil && a.defaultOptions.ModelID != "" {
		return a.defaultOptions.ModelID
	}
	if md, ok := a.client.(ModelDescriber); ok {
		return md.ModelID()
	}
	return ""
}

// Tools returns the agent's static tool set, toolkits included.
func (a *Agent) Tools() []Tool {
	tools := append([]Tool(nil), a.tools...)
	for _, k := range a.toolkits {
		tools = mergeTools(tools, k.Tools)
	}
	return tools
}

// Run sends messages to the agent and returns a complete response.
func (a *Agent) Run(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponse, error) {
	cfg := ResolveRunOptions(opts...)

	handler := a.buildHandler(cfg)
	wrapped := chain(handler, a.agentMiddleware)

	req := &AgentRequest{
		Messages:  messages,
		Session:   cfg.Session,
		Options:   cfg.Options,
		AgentID:   a.id,
		AgentName: a.name,
	}

	return wrapped(ctx, req)
}

// NewSession creates a new [Session] backed by the agent's message store factory.
func (a *Agent) NewSession(opts ...SessionOption) *Session {
	var store MessageStore
	if a.messageStoreFactory != nil {
		store = a.messageStoreFactory()
	} else {
		store = NewInMemoryStore()
	}
	s := NewSession(append([]SessionOption{WithSessionStore(store)}, opts...)...)
	if err := a.contextProviders.SessionCreated(context.Background(), s.ID()); err != nil {
		slog.Warn("context provider session hook failed", "agent_id", a.id, "error", err)
	}
	return s
}

// runState is everything prepared before the first model call of a run.
type runState struct {
	rc      *RunContext
	session *Session
	// store is the session's message store; nil for nested runs.
	store    MessageStore
	opts     *ChatOptions
	messages []Message
	request  []Message
	started  time.Time
}

func (a *Agent) systemPrompt() string {
	var parts []string
	if a.description != "" {
		parts = append(parts, a.description)
	}
	if a.role != "" {
		parts = append(parts, "Your role: "+a.role)
	}
	parts = append(parts, a.instructions...)
	for _, k := range a.toolkits {
		if k.Instructions != "" {
			parts = append(parts, k.Instructions)
		}
	}
	if a.expectedOutput != "" {
		parts = append(parts, "The expected output is: "+a.expectedOutput)
	}
	if a.markdown && a.outputSchema == nil {
		parts = append(parts, "Use markdown to format your answers.")
	}
	return strings.Join(parts, "\n")
}

func (a *Agent) prepareChatOptions(cfg *RunConfig) *ChatOptions {
	opts := MergeChatOptions(a.defaultOptions, cfg.Options)
	opts.Tools = mergeTools(mergeTools(opts.Tools, a.Tools()), cfg.Tools)
	opts.Instructions = joinInstructions(a.systemPrompt(), opts.Instructions)
	if a.outputSchema != nil && opts.ResponseFormat == nil {
		opts.ResponseFormat = a.outputSchema
	}
	return opts
}

// prepareRun resolves the session, stores the run context in ctx, and builds
// the conversation sent to the model: stored history, the new messages, and
// whatever the context providers contribute.
func (a *Agent) prepareRun(ctx context.Context, req *AgentRequest, cfg *RunConfig) (context.Context, *runState, error) {
	if req.Session != nil {
		cfg.Session = req.Session
	}
	session, created := cfg.SessionFor()
	if created {
		if err := a.contextProviders.SessionCreated(ctx, session.ID()); err != nil {
			slog.WarnContext(ctx, "context provider session hook failed", "agent_id", a.id, "error", err)
		}
	}

	rc := &RunContext{
		RunID:     uuid.NewString(),
		SessionID: session.ID(),
		UserID:    session.UserID(),
		AgentID:   a.id,
		AgentName: a.name,
		Session:   session,
	}
	ctx = WithRunContext(ctx, rc)

	if req.Options != nil {
		cfg.Options = req.Options
	}
	opts := a.prepareChatOptions(cfg)

	var store MessageStore
	if !cfg.nested {
		store = session.Store()
	}

	var all []Message
	if store != nil {
		history, err := store.ListMessages(ctx)
		if err != nil {
			return ctx, nil, fmt.Errorf("%w: load session history: %w", ErrSession, err)
		}
		all = append(all, history...)
	}
	all = append(all, req.Messages...)

	if len(a.contextProviders) > 0 {
		invCtx, err := a.contextProviders.Invoking(ctx, all)
		if err != nil {
			return ctx, nil, fmt.Errorf("%w: context provider: %w", ErrExecution, err)
		}
		opts.Instructions = joinInstructions(opts.Instructions, invCtx.Instructions)
		if len(invCtx.Messages) > 0 {
			all = append(append([]Message(nil), invCtx.Messages...), all...)
		}
		opts.Tools = mergeTools(opts.Tools, invCtx.Tools)
	}

	all = PrependInstructions(all, opts.Instructions)

	return ctx, &runState{
		rc:       rc,
		session:  session,
		store:    store,
		opts:     opts,
		messages: all,
		request:  req.Messages,
		started:  time.Now(),
	}, nil
}

func (a *Agent) buildHandler(cfg *RunConfig) AgentHandler {
	return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
		ctx, st, err := a.prepareRun(ctx, req, cfg)
		if err != nil {
			return nil, err
		}

		slog.DebugContext(ctx, "agent run",
			"agent_id", a.id,
			"agent_name", a.name,
			"run_id", st.rc.RunID,
			"message_count", len(st.messages),
			"tool_count", len(st.opts.Tools),
		)

		chat := ChainChatMiddleware(a.client.Response, a.chatMiddleware...)

		var chatResp *ChatResponse
		if len(st.opts.Tools) > 0 {
			chatResp, err = invokeFunctions(ctx, chat, st.messages, st.opts, a.invocationConfig, a.functionMiddleware)
		} else {
			chatResp, err = chat(ctx, st.messages, st.opts)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}

		return a.finishRun(ctx, st, chatResp), nil
	}
}

// finishRun turns the final chat response into the agent response and runs
// the post-run hooks: structured output decoding, session persistence and
// the context providers' Invoked callbacks.
func (a *Agent) finishRun(ctx context.Context, st *runState, chatResp *ChatResponse) *AgentResponse {
	resp := &AgentResponse{
		Messages:   chatResp.Messages,
		ResponseID: chatResp.ResponseID,
		RunID:      st.rc.RunID,
		SessionID:  st.rc.SessionID,
		AgentID:    a.id,
		AgentName:  a.name,
		Usage:      chatResp.Usage,
		Extra:      chatResp.Extra,
		Raw:        chatResp.Raw,
	}
	for i := range resp.Messages {
		if resp.Messages[i].Role == RoleAssistant && resp.Messages[i].AuthorName == "" {
			resp.Messages[i].AuthorName = a.name
		}
	}
	resp.Metrics = RunMetrics{
		Usage:      resp.Usage,
		Duration:   time.Since(st.started),
		ModelCalls: countRole(resp.Messages, RoleAssistant),
		ToolCalls:  len(resp.ToolResults()),
	}

	if a.decodeOutput != nil {
		v, err := a.decodeOutput(resp.Text())
		if err != nil {
			slog.WarnContext(ctx, "structured output did not decode", "agent_id", a.id, "error", err)
		} else {
			resp.Value = v
		}
	}

	if store := st.store; store != nil {
		if err := store.AddMessages(ctx, st.request); err != nil {
			slog.WarnContext(ctx, "failed to update session", "error", err)
		} else if err := store.AddMessages(ctx, resp.Messages); err != nil {
			slog.WarnContext(ctx, "failed to update session", "error", err)
		}
	}

	if err := a.contextProviders.Invoked(ctx, st.request, resp); err != nil {
		slog.WarnContext(ctx, "context provider invoked hook failed", "error", err)
	}
	return resp
}

func countRole(msgs []Message, role Role) int {
	n := 0
	for _, m := range msgs {
		if m.Role == role {
			n++
		}
	}
	return n
}
