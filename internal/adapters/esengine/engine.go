// Package esengine exposes a local Elasticsearch index (for example a
// crawled archive) as one engine in the cascade.
package esengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/mstrand/wavesearch/internal/search"
)

type Config struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

type Engine struct {
	client *elasticsearch.TypedClient
	index  string
}

func New(cfg Config) (*Engine, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("esengine: index name is required")
	}
	return &Engine{client: client, index: cfg.IndexName}, nil
}

// document is the indexed page shape this adapter expects.
type document struct {
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	Published *time.Time `json:"published,omitempty"`
}

func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	res, err := e.client.Search().
		Index(e.index).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  query,
				Fields: []string{"title^2.0", "snippet"},
			},
		}).
		Size(maxResults).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	results := make([]search.Result, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc document
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, fmt.Errorf("decode hit: %w", err)
		}
		results = append(results, search.Result{
			URL:       doc.URL,
			Title:     doc.Title,
			Snippet:   doc.Snippet,
			Published: doc.Published,
		})
	}
	return results, nil
}
