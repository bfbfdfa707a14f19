package agentframework

import (
	"context"
	"time"
)

// ContextProvider injects dynamic context into each agent invocation.
// Implementations can supply additional instructions, messages, or tools
// based on runtime state (knowledge retrieval, user memories, history).
// The current [RunContext] is available from ctx.
type ContextProvider interface {
	// Invoking is called before each agent run. The returned InvocationContext
	// is merged into the request (instructions concatenated, messages prepended,
	// tools added).
	Invoking(ctx context.Context, messages []Message) (*InvocationContext, error)

	// Invoked is called after each successful run with the request messages
	// and the response.
	Invoked(ctx context.Context, request []Message, response *AgentResponse) error

	// SessionCreated is called when a new session is created.
	SessionCreated(ctx context.Context, sessionID string) error
}

// InvocationContext holds the dynamic context returned by a [ContextProvider].
type InvocationContext struct {
	// Instructions to append to the system prompt.
	Instructions string

	// Messages to prepend to the conversation.
	Messages []Message

	// Tools to add to the available tool set.
	Tools []Tool
}

// NoOpContextProvider is a [ContextProvider] that does nothing.
// Embed it to provide default implementations for unused hooks.
type NoOpContextProvider struct{}

func (NoOpContextProvider) Invoking(_ context.Context, _ []Message) (*InvocationContext, error) {
	return &InvocationContext{}, nil
}

func (NoOpContextProvider) Invoked(_ context.Context, _ []Message, _ *AgentResponse) error {
	return nil
}

func (NoOpContextProvider) SessionCreated(_ context.Context, _ string) error {
	return nil
}

// ContextProviders composes several providers. Invoking results are merged in
// order: instructions are joined, messages keep provider order, tools are
// merged by name.
type ContextProviders []ContextProvider

func (ps ContextProviders) Invoking(ctx context.Context, messages []Message) (*InvocationContext, error) {
	out := &InvocationContext{}
	for _, p := range ps {
		ic, err := p.Invoking(ctx, messages)
		if err != nil {
			return nil, err
		}
		if ic == nil {
			continue
		}
		out.Instructions = joinInstructions(out.Instructions, ic.Instructions)
		out.Messages = append(out.Messages, ic.Messages...)
		out.Tools = mergeTools(out.Tools, ic.Tools)
	}
	return out, nil
}

func (ps ContextProviders) Invoked(ctx context.Context, request []Message, response *AgentResponse) error {
	for _, p := range ps {
		if err := p.Invoked(ctx, request, response); err != nil {
			return err
		}
	}
	return nil
}

func (ps ContextProviders) SessionCreated(ctx context.Context, sessionID string) error {
	for _, p := range ps {
		if err := p.SessionCreated(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}

// DatetimeProvider adds the current date and time to the instructions.
type DatetimeProvider struct {
	NoOpContextProvider

	// Now defaults to time.Now.
	Now func() time.Time
	// Location defaults to the local time zone.
	Location *time.Location
}

func (p DatetimeProvider) Invoking(_ context.Context, _ []Message) (*InvocationContext, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	if p.Location != nil {
		t = t.In(p.Location)
	}
	return &InvocationContext{
		Instructions: "The current time is " + t.Format("2006-01-02 15:04:05 MST") + ".",
	}, nil
}
