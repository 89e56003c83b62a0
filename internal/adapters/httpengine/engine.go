// Package httpengine adapts a generic JSON-over-HTTP search API to the
// engine contract. Most upstream engines expose some variant of
// GET /search?q=...&limit=... returning a hit list; the field mapping
// is configurable per engine.
package httpengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mstrand/wavesearch/internal/search"
)

// Config describes one upstream API. QueryParam and LimitParam default
// to "q" and "limit".
type Config struct {
	BaseURL    string
	Path       string
	QueryParam string
	LimitParam string
	Headers    map[string]string
	Timeout    time.Duration
}

type Engine struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Engine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpengine: base url is required")
	}
	if cfg.QueryParam == "" {
		cfg.QueryParam = "q"
	}
	if cfg.LimitParam == "" {
		cfg.LimitParam = "limit"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type apiHit struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Published string `json:"published,omitempty"`
}

type apiResponse struct {
	Hits []apiHit `json:"hits"`
}

func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	params := url.Values{}
	params.Set(e.cfg.QueryParam, query)
	params.Set(e.cfg.LimitParam, strconv.Itoa(maxResults))

	reqURL := e.cfg.BaseURL + e.cfg.Path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range e.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]search.Result, 0, len(parsed.Hits))
	for _, hit := range parsed.Hits {
		r := search.Result{
			URL:     hit.URL,
			Title:   hit.Title,
			Snippet: hit.Snippet,
		}
		if hit.Published != "" {
			if ts, parseErr := time.Parse(time.RFC3339, hit.Published); parseErr == nil {
				r.Published = &ts
			}
		}
		results = append(results, r)
	}
	return results, nil
}
