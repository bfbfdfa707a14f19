package gemini

import (
	"net/http"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// clientConfig holds resolved configuration for the Gemini client.
type clientConfig struct {
	baseURL         string
	httpClient      *http.Client
	model           string
	search          bool
	grounding       *float64
	urlContext      bool
	thinkingBudget  *int
	includeThoughts bool
	modalities      []string
	voice           string
	cachedContent   string
	fileSearch      []string
	maxTries        uint
	chatMiddleware  []af.ChatMiddleware
}

// Option configures a Gemini [Client].
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL (default https://generativelanguage.googleapis.com/v1beta).
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithModel sets the default model for requests.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithSearch enables the built-in Google Search tool.
func WithSearch() Option {
	return func(c *clientConfig) { c.search = true }
}

// WithGrounding enables search grounding with dynamic retrieval. The model
// only searches when its confidence that search helps exceeds threshold.
// Gemini 2.x and later models ignore the threshold and use Google Search.
func WithGrounding(threshold float64) Option {
	return func(c *clientConfig) { c.grounding = &threshold }
}

// WithURLContext lets the model fetch URLs mentioned in the prompt.
func WithURLContext() Option {
	return func(c *clientConfig) { c.urlContext = true }
}

// WithThinking sets the thinking token budget and whether thought summaries
// are returned.
func WithThinking(budget int, includeThoughts bool) Option {
	return func(c *clientConfig) {
		c.thinkingBudget = &budget
		c.includeThoughts = includeThoughts
	}
}

// WithResponseModalities selects the output modalities, e.g. "TEXT", "IMAGE"
// or "AUDIO".
func WithResponseModalities(modalities ...string) Option {
	return func(c *clientConfig) { c.modalities = modalities }
}

// WithVoice selects a prebuilt voice for audio output.
func WithVoice(name string) Option {
	return func(c *clientConfig) { c.voice = name }
}

// WithCachedContent answers every request against a cached content entry
// created with [Client.CreateCache].
func WithCachedContent(name string) Option {
	return func(c *clientConfig) { c.cachedContent = name }
}

// WithFileSearchStores enables the file search tool over the given stores.
func WithFileSearchStores(names ...string) Option {
	return func(c *clientConfig) { c.fileSearch = append(c.fileSearch, names...) }
}

// WithRetry sets how many times a request is attempted when the service is
// rate limited or unavailable. 1 disables retries. Default 3.
func WithRetry(maxTries uint) Option {
	return func(c *clientConfig) { c.maxTries = maxTries }
}

// WithChatMiddleware adds middleware to the chat pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithChatMiddleware(mw ...af.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}
