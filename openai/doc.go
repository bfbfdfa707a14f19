// Package openai provides a [ChatClient] implementation for OpenAI-compatible
// Chat Completions endpoints, built on github.com/sashabaranov/go-openai.
//
// The same client reaches OpenAI, Azure OpenAI and Gemini's
// OpenAI-compatible endpoint:
//
//	client := openai.New(os.Getenv("GOOGLE_API_KEY"),
//	    openai.WithGeminiCompat(),
//	    openai.WithModel("gemini-3-flash-preview"),
//	)
//
//	agent := agentframework.NewAgent(client)
//
// The client supports synchronous and streaming responses (with usage),
// tool/function calling, and JSON-schema response formats.
//
// # Configuration
//
// Use functional options to configure the client:
//
//   - [WithModel]: set the default model (Azure: the deployment name)
//   - [WithBaseURL], [WithGeminiCompat]: override the API endpoint
//   - [WithAzure]: target an Azure OpenAI resource
//   - [WithAzureCredential]: authenticate with an azidentity credential
//   - [WithOrganization]: set the OpenAI organization header
//   - [WithHTTPClient]: provide a custom http.Client
//   - [WithHeaders]: add custom headers to every request
//
// # Testing
//
// Provide a mock http.Client via [WithHTTPClient] with a custom
// RoundTripper.
package openai
