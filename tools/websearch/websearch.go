// Package websearch searches the web through DuckDuckGo's HTML endpoint and
// exposes the results to agents as the web_search and search_news tools.
package websearch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/html"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// DefaultBaseURL is DuckDuckGo's JavaScript-free search page.
const DefaultBaseURL = "https://html.duckduckgo.com/html/"

// DefaultMaxResults caps results when a call does not ask for a number.
const DefaultMaxResults = 5

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"href"`
	Snippet string `json:"body"`
}

// Client queries DuckDuckGo.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxResults int
	maxTries   uint
	region     string
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the search endpoint.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

// WithMaxResults sets the default number of results.
func WithMaxResults(n int) Option { return func(c *Client) { c.maxResults = n } }

// WithRegion sets the DuckDuckGo region, such as "us-en".
func WithRegion(r string) Option { return func(c *Client) { c.region = r } }

// WithMaxTries sets how many times a throttled request is attempted.
func WithMaxTries(n uint) Option { return func(c *Client) { c.maxTries = n } }

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		maxResults: DefaultMaxResults,
		maxTries:   3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search returns web results for query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return c.search(ctx, query, "", maxResults)
}

// News returns results from the past week for query.
func (c *Client) News(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return c.search(ctx, query+" news", "w", maxResults)
}

func (c *Client) search(ctx context.Context, query, dateFilter string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("websearch: empty query")
	}
	if maxResults <= 0 {
		maxResults = c.maxResults
	}
	form := url.Values{"q": {query}}
	if dateFilter != "" {
		form.Set("df", dateFilter)
	}
	if c.region != "" {
		form.Set("kl", c.region)
	}

	op := func() ([]Result, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; gemini-agents/1.0)")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		// DuckDuckGo answers 202 with an empty page when it throttles.
		case resp.StatusCode == http.StatusAccepted, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("websearch: %s", resp.Status)
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(fmt.Errorf("websearch: %s", resp.Status))
		}
		results, err := Parse(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return results, nil
	}

	results, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			slog.WarnContext(ctx, "web search throttled, retrying", "error", err, "backoff", d)
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Parse extracts the organic results from a DuckDuckGo HTML page. Ads are
// skipped.
func Parse(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("websearch: parse results: %w", err)
	}
	var (
		results []Result
		isAd    bool
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				href := resolve(attr(n, "href"))
				isAd = strings.Contains(href, "duckduckgo.com/y.js")
				if !isAd {
					results = append(results, Result{Title: text(n), URL: href})
				}
				return
			case hasClass(n, "result__snippet"):
				if !isAd && len(results) > 0 {
					results[len(results)-1].Snippet = text(n)
				}
				return
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return results, nil
}

// resolve unwraps DuckDuckGo's redirect links.
func resolve(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && u.Path == "/l/" {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

type searchArgs struct {
	Query      string `json:"query" jsonschema:"description=The search query,required"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results,minimum=1,maximum=20"`
}

// Toolkit returns the web_search and search_news tools.
func (c *Client) Toolkit() *af.Toolkit {
	k := af.NewToolkit("websearch",
		af.NewTypedTool("web_search", "Search the web and return titles, links and snippets.",
			func(ctx context.Context, a searchArgs) (any, error) {
				return c.Search(ctx, a.Query, a.MaxResults)
			}),
		af.NewTypedTool("search_news", "Search recent news articles.",
			func(ctx context.Context, a searchArgs) (any, error) {
				return c.News(ctx, a.Query, a.MaxResults)
			}),
	)
	k.Instructions = "Use web_search for general lookups and search_news for recent events. Cite the links you use."
	return k
}
