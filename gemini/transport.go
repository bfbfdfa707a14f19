package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

const (
	defaultBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultMaxTries = 3
	maxRetryDelay   = time.Minute
)

// apiRequest describes one call to the REST API. Path is relative to the
// base URL unless it is absolute (resumable upload sessions).
type apiRequest struct {
	method  string
	path    string
	query   url.Values
	body    any
	raw     []byte
	headers map[string]string
	upload  bool
}

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, r *apiRequest) (*http.Response, error)
}

// httpTransport is the default transport using net/http.
type httpTransport struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	maxTries uint
}

func newHTTPTransport(apiKey string, cfg *clientConfig) *httpTransport {
	t := &httpTransport{
		client:   cfg.httpClient,
		baseURL:  strings.TrimSuffix(cfg.baseURL, "/"),
		apiKey:   apiKey,
		maxTries: cfg.maxTries,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	if t.maxTries == 0 {
		t.maxTries = defaultMaxTries
	}
	return t
}

// endpoint resolves r to a full URL. Upload requests go through the
// /upload prefix of the same API version.
func (t *httpTransport) endpoint(r *apiRequest) (string, error) {
	if strings.HasPrefix(r.path, "http://") || strings.HasPrefix(r.path, "https://") {
		return r.path, nil
	}
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if r.upload {
		u.Path = "/upload" + u.Path
	}
	u.Path += "/" + strings.TrimPrefix(r.path, "/")
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	return u.String(), nil
}

func (t *httpTransport) do(ctx context.Context, r *apiRequest) (*http.Response, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY", af.ErrMissingCredential)
	}

	payload := r.raw
	if payload == nil && r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	target, err := t.endpoint(r)
	if err != nil {
		return nil, err
	}

	delay := &hintedBackOff{BackOff: backoff.NewExponentialBackOff()}
	attempt := 0
	op := func() (*http.Response, error) {
		attempt++
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if r.raw == nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("x-goog-api-key", t.apiKey)
		for k, v := range r.headers {
			req.Header.Set(k, v)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		if resp.StatusCode < 400 {
			return resp, nil
		}

		defer resp.Body.Close()
		svcErr := parseErrorResponse(resp)
		if !svcErr.Retryable() {
			return nil, backoff.Permanent(svcErr)
		}
		delay.hint = svcErr.RetryDelay(maxRetryDelay)
		slog.WarnContext(ctx, "gemini request failed, retrying",
			"status", resp.StatusCode, "attempt", attempt, "path", r.path)
		return nil, svcErr
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(delay),
		backoff.WithMaxTries(t.maxTries),
	)
}

// hintedBackOff uses the server-provided delay once when set, then falls
// back to exponential backoff.
type hintedBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	if h.hint > 0 {
		d := h.hint
		h.hint = 0
		return d
	}
	return h.BackOff.NextBackOff()
}

// parseErrorResponse reads an error response body and returns a typed error.
func parseErrorResponse(resp *http.Response) *af.ServiceError {
	body, _ := io.ReadAll(resp.Body)

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Error.Message
	if msg == "" {
		msg = string(body)
	}

	svcErr := &af.ServiceError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		Code:       apiErr.Error.Status,
	}

	reason := ""
	for _, d := range apiErr.Error.Details {
		if d.Reason != "" {
			reason = d.Reason
		}
		if d.RetryDelay != "" {
			if dur, err := time.ParseDuration(d.RetryDelay); err == nil {
				svcErr.RetryAfter = int(dur.Seconds())
			}
		}
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			svcErr.RetryAfter = secs
		}
	}

	switch {
	case resp.StatusCode == 429 || apiErr.Error.Status == "RESOURCE_EXHAUSTED":
		svcErr.Err = af.ErrRateLimited
	case resp.StatusCode == 401 || resp.StatusCode == 403 || reason == "API_KEY_INVALID":
		svcErr.Err = af.ErrAuth
	case resp.StatusCode == 404:
		svcErr.Err = af.ErrModelNotFound
	case resp.StatusCode == 400:
		svcErr.Err = af.ErrInvalidRequest
	default:
		svcErr.Err = af.ErrService
	}

	return svcErr
}

// decode reads a JSON response body into v and closes it.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode response: %v", af.ErrInvalidResponse, err)
	}
	return nil
}
