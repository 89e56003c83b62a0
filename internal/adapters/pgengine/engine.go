// Package pgengine exposes a Postgres full-text index over a pages table
// as one engine in the cascade.
package pgengine

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mstrand/wavesearch/internal/search"
)

type Config struct {
	ConnStr string
}

type Engine struct {
	db *pgxpool.Pool
}

// New connects and pings eagerly so misconfiguration surfaces at startup.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Engine{db: pool}, nil
}

func (e *Engine) Close() {
	e.db.Close()
}

const searchSQL = `
	SELECT url, title, snippet, published,
		ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS rank
	FROM pages
	WHERE search_vector @@ websearch_to_tsquery('english', $1)
	ORDER BY rank DESC, url
	LIMIT $2
`

func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	rows, err := e.db.Query(ctx, searchSQL, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer rows.Close()

	var results []search.Result
	for rows.Next() {
		var (
			r         search.Result
			published *time.Time
			rank      float64
		)
		if err := rows.Scan(&r.URL, &r.Title, &r.Snippet, &published, &rank); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Published = published
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}
