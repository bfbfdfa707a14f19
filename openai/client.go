package openai

import (
	"context"
	"errors"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Client implements [agentframework.ChatClient] on top of go-openai's Chat
// Completions client. Use [New] to create one.
type Client struct {
	api     *goopenai.Client
	model   string
	handler af.ChatHandler
}

// Verify interface compliance at compile time.
var (
	_ af.ChatClient     = (*Client)(nil)
	_ af.ModelDescriber = (*Client)(nil)
)

// New creates an OpenAI [Client] with the given API key and options.
//
//	client := openai.New(os.Getenv("GOOGLE_API_KEY"),
//	    openai.WithGeminiCompat(),
//	    openai.WithModel("gemini-3-flash-preview"),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	c := &Client{
		api:   goopenai.NewClientWithConfig(newAPIConfig(apiKey, cfg)),
		model: cfg.model,
	}
	c.handler = af.ChainChatMiddleware(c.coreResponse, cfg.chatMiddleware...)
	return c
}

// ModelID returns the default model (or Azure deployment) of the client.
func (c *Client) ModelID() string { return c.model }

// Response sends a non-streaming chat completion request and returns the
// complete response.
func (c *Client) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	req := buildRequest(messages, opts, c.model)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return parseChatResponse(&resp), nil
}

// StreamResponse sends a streaming chat completion request and returns a
// [ResponseStream] of incremental updates. Usage arrives with the last chunk.
func (c *Client) StreamResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	req := buildRequest(messages, opts, c.model)
	req.Stream = true
	req.StreamOptions = &goopenai.StreamOptions{IncludeUsage: true}

	src, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	stream := af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- af.ChatResponseUpdate) error {
		defer src.Close()
		var acc toolCallAccumulator
		for {
			chunk, err := src.Recv()
			if errors.Is(err, io.EOF) {
				if rest := acc.flush(); len(rest) > 0 {
					return send(ctx, ch, af.ChatResponseUpdate{Role: af.RoleAssistant, Contents: rest})
				}
				return nil
			}
			if err != nil {
				return mapError(err)
			}
			if err := send(ctx, ch, *parseChunk(&chunk, &acc)); err != nil {
				return err
			}
		}
	})

	return stream, nil
}

func send(ctx context.Context, ch chan<- af.ChatResponseUpdate, u af.ChatResponseUpdate) error {
	select {
	case ch <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
