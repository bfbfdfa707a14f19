package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// CacheConfig describes a cached content entry.
type CacheConfig struct {
	Model             string
	DisplayName       string
	SystemInstruction string
	// Contents are cached as conversation turns, e.g. a user message with
	// an uploaded file.
	Contents []af.Message
	TTL      time.Duration
}

// CachedContent is a cache resource. Name has the form "cachedContents/{id}".
type CachedContent struct {
	Name          string `json:"name"`
	DisplayName   string `json:"displayName,omitempty"`
	Model         string `json:"model,omitempty"`
	CreateTime    string `json:"createTime,omitempty"`
	ExpireTime    string `json:"expireTime,omitempty"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type cachedContentRequest struct {
	Model             string    `json:"model"`
	DisplayName       string    `json:"displayName,omitempty"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents,omitempty"`
	TTL               string    `json:"ttl,omitempty"`
}

// CreateCache stores content server-side so later requests can reference it
// through [WithCachedContent] instead of resending it.
func (c *Client) CreateCache(ctx context.Context, cc CacheConfig) (*CachedContent, error) {
	model := cc.Model
	if model == "" {
		model = c.ModelID()
	}
	req := cachedContentRequest{
		Model:       modelPath(model),
		DisplayName: cc.DisplayName,
	}
	if cc.SystemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: cc.SystemInstruction}}}
	}
	for i := range cc.Contents {
		req.Contents = appendContent(req.Contents, convertMessage(&cc.Contents[i]))
	}
	if cc.TTL > 0 {
		req.TTL = fmt.Sprintf("%ds", int(cc.TTL.Seconds()))
	}

	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodPost, path: "cachedContents", body: req})
	if err != nil {
		return nil, err
	}
	var out CachedContent
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCache returns a cached content entry.
func (c *Client) GetCache(ctx context.Context, name string) (*CachedContent, error) {
	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodGet, path: resourceName("cachedContents", name)})
	if err != nil {
		return nil, err
	}
	var out CachedContent
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCache removes a cached content entry before its TTL expires.
func (c *Client) DeleteCache(ctx context.Context, name string) error {
	resp, err := c.tp.do(ctx, &apiRequest{method: http.MethodDelete, path: resourceName("cachedContents", name)})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WithCache returns a copy of the client that answers against the named
// cache. Use it to create agents over an entry made with [Client.CreateCache].
func (c *Client) WithCache(name string) *Client {
	cfg := *c.cfg
	cfg.cachedContent = name
	cp := &Client{tp: c.tp, model: c.model, cfg: &cfg}
	cp.handler = af.ChainChatMiddleware(cp.coreResponse, cfg.chatMiddleware...)
	return cp
}
