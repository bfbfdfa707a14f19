package openai

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	goopenai "github.com/sashabaranov/go-openai"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

const (
	defaultAzureAPIVersion = "2024-10-21"
	cognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
)

// newAPIConfig translates client options into a go-openai configuration.
func newAPIConfig(apiKey string, cfg *clientConfig) goopenai.ClientConfig {
	var conf goopenai.ClientConfig
	if cfg.azureEndpoint != "" {
		conf = goopenai.DefaultAzureConfig(apiKey, cfg.azureEndpoint)
		conf.APIVersion = defaultAzureAPIVersion
		if cfg.azureAPIVersion != "" {
			conf.APIVersion = cfg.azureAPIVersion
		}
		// Deployment names are used verbatim.
		conf.AzureModelMapperFunc = func(model string) string { return model }
		if cfg.azureCredential != nil {
			conf.APIType = goopenai.APITypeAzureAD
		}
	} else {
		conf = goopenai.DefaultConfig(apiKey)
		if cfg.baseURL != "" {
			conf.BaseURL = cfg.baseURL
		}
	}
	if cfg.organization != "" {
		conf.OrgID = cfg.organization
	}

	base := cfg.httpClient
	if base == nil {
		base = http.DefaultClient
	}
	conf.HTTPClient = &doer{
		client:     base,
		headers:    cfg.headers,
		credential: cfg.azureCredential,
	}
	return conf
}

// doer is the HTTP client handed to go-openai. It adds custom headers and,
// with a credential, replaces the bearer token with a fresh Entra ID token.
type doer struct {
	client     *http.Client
	headers    map[string]string
	credential azcore.TokenCredential
}

func (d *doer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if d.credential != nil {
		slog.DebugContext(ctx, "acquiring Azure AD token for Cognitive Services")
		token, err := d.credential.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{cognitiveServicesScope},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: get azure token: %v", af.ErrAuth, err)
		}
		req.Header.Set("Authorization", "Bearer "+token.Token)
		req.Header.Del("api-key")
	}
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	return d.client.Do(req)
}

// mapError converts go-openai errors into framework errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	svcErr := &af.ServiceError{Message: err.Error()}
	switch {
	case errors.As(err, &apiErr):
		svcErr.StatusCode = apiErr.HTTPStatusCode
		svcErr.Message = apiErr.Message
		if code, ok := apiErr.Code.(string); ok {
			svcErr.Code = code
		}
	case errors.As(err, &reqErr):
		svcErr.StatusCode = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("%w: %v", af.ErrService, err)
	}

	switch {
	case svcErr.Code == "content_filter":
		svcErr.Err = af.ErrContentFilter
	case svcErr.StatusCode == 401 || svcErr.StatusCode == 403:
		svcErr.Err = af.ErrAuth
	case svcErr.StatusCode == 404:
		svcErr.Err = af.ErrModelNotFound
	case svcErr.StatusCode == 429:
		svcErr.Err = af.ErrRateLimited
	case svcErr.StatusCode == 400:
		svcErr.Err = af.ErrInvalidRequest
	default:
		svcErr.Err = af.ErrService
	}
	return svcErr
}
