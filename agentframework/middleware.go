package agentframework

import (
	"context"
	"encoding/json"
)

// AgentHandler is the function signature for processing an agent run.
type AgentHandler func(ctx context.Context, req *AgentRequest) (*AgentResponse, error)

// AgentRequest carries the inputs for an agent run through the middleware pipeline.
// AgentID and AgentName identify the agent for metrics and logs.
type AgentRequest struct {
	Messages  []Message
	Session   *Session
	Options   *ChatOptions
	AgentID   string
	AgentName string
}

// AgentMiddleware wraps an [AgentHandler]. It calls next to continue the
// run or returns early to short-circuit it.
type AgentMiddleware func(next AgentHandler) AgentHandler

// ChatHandler sends one model request.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

// ChatMiddleware wraps every model request the agent makes, including the
// follow-up requests of the tool loop.
type ChatMiddleware func(next ChatHandler) ChatHandler

// FunctionHandler is the function signature for invoking a tool.
type FunctionHandler func(ctx context.Context, tool Tool, args json.RawMessage) (any, error)

// FunctionMiddleware wraps each tool invocation.
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

// chain wraps h so that mws[0] runs first.
func chain[H any, M ~func(H) H](h H, mws []M) H {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ChainChatMiddleware wraps a provider's request handler; the first
// middleware is the outermost.
func ChainChatMiddleware(handler ChatHandler, mws ...ChatMiddleware) ChatHandler {
	return chain(handler, mws)
}
