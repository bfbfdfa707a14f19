package gemini

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// Client implements [agentframework.ChatClient] using the Gemini
// generateContent API. Use [New] to create one.
type Client struct {
	tp      transport
	model   string
	cfg     *clientConfig
	handler af.ChatHandler
}

// Verify interface compliance at compile time.
var (
	_ af.ChatClient     = (*Client)(nil)
	_ af.ModelDescriber = (*Client)(nil)
)

// New creates a Gemini [Client] with the given API key and options.
//
//	client := gemini.New(os.Getenv("GOOGLE_API_KEY"),
//	    gemini.WithModel("gemini-3-flash-preview"),
//	    gemini.WithSearch(),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	c := &Client{
		tp:    newHTTPTransport(apiKey, cfg),
		model: cfg.model,
		cfg:   cfg,
	}
	c.handler = af.ChainChatMiddleware(c.coreResponse, cfg.chatMiddleware...)
	return c
}

// newWithTransport creates a Client with a custom transport (for testing).
func newWithTransport(tp transport, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	c := &Client{tp: tp, model: cfg.model, cfg: cfg}
	c.handler = af.ChainChatMiddleware(c.coreResponse, cfg.chatMiddleware...)
	return c
}

// ModelID returns the default model of the client.
func (c *Client) ModelID() string {
	if c.model == "" {
		return DefaultModel
	}
	return c.model
}

// Response sends a generateContent request and returns the complete response.
func (c *Client) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	req, model := c.buildRequest(messages, opts)

	resp, err := c.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   modelPath(model) + ":generateContent",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", af.ErrService, err)
	}

	raw, err := unmarshalResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", af.ErrInvalidResponse, err)
	}

	result, err := parseChatResponse(raw)
	if err != nil {
		return nil, err
	}
	if result.ModelID == "" {
		result.ModelID = model
	}
	return result, nil
}

// StreamResponse sends a streamGenerateContent request and returns a
// [ResponseStream] that yields incremental updates via server-sent events.
func (c *Client) StreamResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	req, model := c.buildRequest(messages, opts)

	resp, err := c.tp.do(ctx, &apiRequest{
		method: http.MethodPost,
		path:   modelPath(model) + ":streamGenerateContent",
		query:  url.Values{"alt": {"sse"}},
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	stream := af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- af.ChatResponseUpdate) error {
		defer resp.Body.Close()
		return parseSSEStream(ctx, resp.Body, ch)
	})

	return stream, nil
}

// parseSSEStream reads Gemini server-sent events from r and sends parsed
// updates to ch. It returns when the stream is exhausted, the context is
// cancelled, or an error occurs.
func parseSSEStream(ctx context.Context, r io.Reader, ch chan<- af.ChatResponseUpdate) error {
	scanner := bufio.NewScanner(r)
	// Inline image and audio chunks are large.
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		raw, err := unmarshalResponse([]byte(data))
		if err != nil {
			// Skip malformed chunks rather than aborting.
			continue
		}

		update, err := parseChunk(raw)
		if err != nil {
			return err
		}

		select {
		case ch <- *update:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read SSE stream: %v", af.ErrService, err)
	}
	return nil
}

// modelPath returns the resource path for a model id, accepting both
// "gemini-x" and "models/gemini-x".
func modelPath(model string) string {
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}
