package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// HTTPClient performs downloads.
var HTTPClient = &http.Client{Timeout: 5 * time.Minute}

// maxTries bounds download attempts.
const maxTries = 3

// Download fetches url, retrying network errors, 429 and 5xx responses. It
// returns the body and the response media type.
func Download(ctx context.Context, url string) ([]byte, string, error) {
	type result struct {
		body []byte
		typ  string
	}
	op := func() (result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return result{}, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "gemini-agents/1.0")
		resp, err := HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return result{}, backoff.Permanent(ctx.Err())
			}
			return result{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			err := fmt.Errorf("download %s: %s", url, resp.Status)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return result{}, err
			}
			return result{}, backoff.Permanent(err)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return result{}, err
		}
		typ := resp.Header.Get("Content-Type")
		if i := strings.Index(typ, ";"); i > 0 {
			typ = typ[:i]
		}
		return result{body: body, typ: strings.TrimSpace(typ)}, nil
	}

	notify := func(err error, d time.Duration) {
		slog.WarnContext(ctx, "download failed, retrying", "url", url, "error", err, "backoff", d)
	}
	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, "", err
	}
	return res.body, res.typ, nil
}

// Fetch downloads url into inline data. mediaType defaults to the server's
// Content-Type, then to the sniffed type of the body.
func Fetch(ctx context.Context, url, mediaType string) (*af.DataContent, error) {
	body, typ, err := Download(ctx, url)
	if err != nil {
		return nil, err
	}
	if mediaType == "" {
		mediaType = typ
	}
	if mediaType == "" || mediaType == "application/octet-stream" || mediaType == "binary/octet-stream" {
		mediaType = Detect(body, url)
	}
	return &af.DataContent{Data: body, MediaType: normalizeType(mediaType), Name: filepath.Base(url)}, nil
}

// DownloadFile saves url to path unless path already exists. It returns
// path.
func DownloadFile(ctx context.Context, url, path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	body, _, err := Download(ctx, url)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
