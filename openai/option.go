package openai

import (
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// GeminiCompatBaseURL is Gemini's OpenAI-compatible endpoint.
const GeminiCompatBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// clientConfig holds resolved configuration for the OpenAI client.
type clientConfig struct {
	baseURL         string
	organization    string
	httpClient      *http.Client
	headers         map[string]string
	model           string
	azureEndpoint   string
	azureAPIVersion string
	azureCredential azcore.TokenCredential
	chatMiddleware  []af.ChatMiddleware
}

// Option configures an OpenAI [Client].
type Option func(*clientConfig)

// WithBaseURL overrides the API base URL (e.g., for proxies or other
// OpenAI-compatible services).
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithGeminiCompat points the client at Gemini's OpenAI-compatible endpoint.
// The API key is a Google AI Studio key.
func WithGeminiCompat() Option {
	return func(c *clientConfig) { c.baseURL = GeminiCompatBaseURL }
}

// WithOrganization sets the OpenAI organization header.
func WithOrganization(org string) Option {
	return func(c *clientConfig) { c.organization = org }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.headers = headers }
}

// WithModel sets the default model for requests. On Azure this is the
// deployment name.
func WithModel(model string) Option {
	return func(c *clientConfig) { c.model = model }
}

// WithAzure targets an Azure OpenAI resource endpoint. The API key passed
// to [New] is sent as the api-key header unless [WithAzureCredential] is set.
func WithAzure(endpoint, apiVersion string) Option {
	return func(c *clientConfig) {
		c.azureEndpoint = endpoint
		c.azureAPIVersion = apiVersion
	}
}

// WithAzureCredential enables Microsoft Entra ID token authentication using
// the provided credential. Tokens are obtained and refreshed per request.
func WithAzureCredential(cred azcore.TokenCredential) Option {
	return func(c *clientConfig) { c.azureCredential = cred }
}

// WithChatMiddleware adds middleware to the chat pipeline.
// Middleware is applied in the order provided (first = outermost).
func WithChatMiddleware(mw ...af.ChatMiddleware) Option {
	return func(c *clientConfig) { c.chatMiddleware = append(c.chatMiddleware, mw...) }
}
