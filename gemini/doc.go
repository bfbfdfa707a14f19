// Package gemini provides a [ChatClient] implementation for the Gemini
// generateContent REST API, plus the Files, Caches, File Search and
// embedding endpoints the cookbook programs use.
//
// Create a client and pass it to [agentframework.NewAgent]:
//
//	client := gemini.New(os.Getenv("GOOGLE_API_KEY"),
//	    gemini.WithModel("gemini-3-flash-preview"),
//	)
//
//	agent := agentframework.NewAgent(client)
//
// The client supports synchronous and streaming responses, function
// calling, structured JSON output, native tools (Google Search, URL
// context, file search), thinking, and image or audio output.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithModel]: set the default model
//   - [WithBaseURL]: override the API endpoint
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithSearch], [WithGrounding], [WithURLContext], [WithFileSearchStores]: native tools
//   - [WithThinking]: thinking budget and thought summaries
//   - [WithResponseModalities], [WithVoice]: image and speech output
//   - [WithCachedContent]: answer against a cache created with [Client.CreateCache]
//   - [WithRetry]: attempts for rate-limited or unavailable responses
//
// Image generation models reject system instructions, so when the
// modalities include IMAGE the instructions are prepended to the first
// user turn instead.
//
// # Errors
//
// Failed calls return an [agentframework.ServiceError] wrapping one of
// ErrInvalidRequest, ErrAuth, ErrModelNotFound, ErrRateLimited,
// ErrContentFilter or ErrService. Rate-limited and 5xx responses are
// retried with exponential backoff, honoring the delay the service
// suggests.
//
// # Testing
//
// The client uses an unexported transport interface internally.
// For testing, provide a mock http.Client via [WithHTTPClient]
// with a custom RoundTripper.
package gemini
