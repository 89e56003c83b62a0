// Package memengine is a deterministic in-memory engine over a fixed
// document set, used by the CLI demo and as a reference implementation
// of the engine contract.
package memengine

import (
	"context"
	"strings"

	"github.com/mstrand/wavesearch/internal/search"
	"github.com/mstrand/wavesearch/pkg/stringsutil"
)

// Document is one entry of the fixture corpus.
type Document struct {
	URL     string `yaml:"url"`
	Title   string `yaml:"title"`
	Snippet string `yaml:"snippet"`
}

type Engine struct {
	docs []Document
}

func New(docs []Document) *Engine {
	return &Engine{docs: docs}
}

// Search returns documents whose title or snippet contains any query
// term, in corpus order, capped at maxResults.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := stringsutil.Tokenize(query)
	var results []search.Result
	for _, doc := range e.docs {
		if len(results) >= maxResults {
			break
		}
		if !matches(doc, terms) {
			continue
		}
		results = append(results, search.Result{
			URL:     doc.URL,
			Title:   doc.Title,
			Snippet: doc.Snippet,
		})
	}
	return results, nil
}

func matches(doc Document, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := strings.ToLower(doc.Title + " " + doc.Snippet)
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
