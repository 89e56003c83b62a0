// Package pipeline composes routing, cascade execution and ranking into
// a single search call with per-stage timings.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/uuid"
	"github.com/mstrand/wavesearch/internal/cascade"
	"github.com/mstrand/wavesearch/internal/ranker"
	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/router"
	"github.com/mstrand/wavesearch/internal/search"
)

// IntentExplicit marks searches where the caller supplied the engine
// list and routing was bypassed entirely.
const IntentExplicit = "explicit"

const routeCacheSize = 256

// Timings reports wall-clock duration per pipeline stage.
type Timings struct {
	Routing   time.Duration `json:"routing_ms"`
	Execution time.Duration `json:"execution_ms"`
	Ranking   time.Duration `json:"ranking_ms"`
	Total     time.Duration `json:"total_ms"`
}

// MarshalJSON emits every stage in milliseconds, matching the _ms
// field names.
func (t Timings) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Routing   int64 `json:"routing_ms"`
		Execution int64 `json:"execution_ms"`
		Ranking   int64 `json:"ranking_ms"`
		Total     int64 `json:"total_ms"`
	}{
		Routing:   t.Routing.Milliseconds(),
		Execution: t.Execution.Milliseconds(),
		Ranking:   t.Ranking.Milliseconds(),
		Total:     t.Total.Milliseconds(),
	})
}

// Response is the batch search outcome. EnginesFailed being non-empty
// alongside a non-empty EnginesSucceeded means a partial result, which is
// informational, not an error.
type Response struct {
	SearchID         uuid.UUID              `json:"search_id"`
	Query            string                 `json:"query"`
	Intent           string                 `json:"intent"`
	Recommendation   *search.Recommendation `json:"recommendation,omitempty"`
	Results          []search.RankedResult  `json:"results"`
	EnginesSelected  []string               `json:"engines_selected"`
	EnginesSucceeded []string               `json:"engines_succeeded"`
	EnginesFailed    []string               `json:"engines_failed"`
	Timings          Timings                `json:"timings"`
}

// StreamUpdate is one streaming emission: the cumulative result pool
// re-ranked after the given wave settled, so rank positions are stable
// and meaningful at every step. The Complete update carries the full
// final response.
type StreamUpdate struct {
	Phase   search.WavePhase      `json:"phase"`
	Results []search.RankedResult `json:"results"`
	Final   *Response             `json:"final,omitempty"`
}

// Options tune one search call.
type Options struct {
	// Engines bypasses the router when non-empty.
	Engines []string

	StopAfterWave search.WavePhase
	Progress      cascade.ProgressFunc
}

type Config struct {
	MaxEngines     int
	Mode           router.PerformanceMode
	EngineTimeout  time.Duration
	MaxPerEngine   int
	RankingWeights ranker.Weights
}

func DefaultConfig() Config {
	return Config{
		MaxEngines:     router.DefaultMaxEngines,
		Mode:           router.ModeBalanced,
		EngineTimeout:  cascade.DefaultEngineTimeout,
		MaxPerEngine:   cascade.DefaultMaxResultsPerEngine,
		RankingWeights: ranker.DefaultWeights(),
	}
}

type Pipeline struct {
	reg    *registry.Registry
	router *router.Router
	exec   *cascade.Executor
	ranker *ranker.Ranker

	// Routing is a pure function of query + registry + config, so
	// recommendations are memoized per query text.
	routeCache *lru.Cache[string, *search.Recommendation]
}

// New wires the three stages over a shared registry. An empty registry
// fails here, before any query is accepted.
func New(reg *registry.Registry, cfg Config) (*Pipeline, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("pipeline: registry is empty")
	}

	rt, err := router.New(reg, router.Config{MaxEngines: cfg.MaxEngines, Mode: cfg.Mode})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var execOpts []cascade.Option
	if cfg.EngineTimeout > 0 {
		execOpts = append(execOpts, cascade.WithEngineTimeout(cfg.EngineTimeout))
	}
	if cfg.MaxPerEngine > 0 {
		execOpts = append(execOpts, cascade.WithMaxResultsPerEngine(cfg.MaxPerEngine))
	}
	exec, err := cascade.New(reg, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	cache, err := lru.New[string, *search.Recommendation](routeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: route cache: %w", err)
	}

	return &Pipeline{
		reg:        reg,
		router:     rt,
		exec:       exec,
		ranker:     ranker.New(cfg.RankingWeights),
		routeCache: cache,
	}, nil
}

// Search runs the full pipeline: route (unless an explicit engine list
// bypasses it), execute the cascade, rank, and report stage timings.
func (p *Pipeline) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	totalStart := time.Now()
	searchID := uuid.New()

	routingStart := time.Now()
	intent, rec, engines := p.route(query, opts)
	routingElapsed := time.Since(routingStart)

	execStart := time.Now()
	execution, err := p.exec.Execute(ctx, query, engines, cascade.Options{
		StopAfterWave: opts.StopAfterWave,
		Progress:      opts.Progress,
		SearchID:      searchID,
	})
	if err != nil {
		return nil, fmt.Errorf("execute cascade: %w", err)
	}
	execElapsed := time.Since(execStart)

	rankingStart := time.Now()
	ranked := p.ranker.Rank(execution.AllResults, query, p.reg.Tiers())
	rankingElapsed := time.Since(rankingStart)

	return &Response{
		SearchID:         searchID,
		Query:            query,
		Intent:           intent,
		Recommendation:   rec,
		Results:          ranked,
		EnginesSelected:  engines,
		EnginesSucceeded: execution.EnginesSucceeded,
		EnginesFailed:    execution.EnginesFailed,
		Timings: Timings{
			Routing:   routingElapsed,
			Execution: execElapsed,
			Ranking:   rankingElapsed,
			Total:     time.Since(totalStart),
		},
	}, nil
}

// SearchStreaming emits the cumulative pool re-ranked after each wave,
// then a terminal Complete update with the full response. The channel
// closes once the cascade finishes or ctx is cancelled.
func (p *Pipeline) SearchStreaming(ctx context.Context, query string, opts Options) <-chan StreamUpdate {
	out := make(chan StreamUpdate)

	go func() {
		defer close(out)

		totalStart := time.Now()
		searchID := uuid.New()

		routingStart := time.Now()
		intent, rec, engines := p.route(query, opts)
		routingElapsed := time.Since(routingStart)

		execStart := time.Now()
		updates := p.exec.ExecuteStreaming(ctx, query, engines, cascade.Options{
			StopAfterWave: opts.StopAfterWave,
			Progress:      opts.Progress,
			SearchID:      searchID,
		})

		var pool []search.Result
		var rankingElapsed time.Duration

		for update := range updates {
			if update.Phase == search.WaveComplete {
				execElapsed := time.Since(execStart)

				rankingStart := time.Now()
				ranked := p.ranker.Rank(update.Final.AllResults, query, p.reg.Tiers())
				rankingElapsed += time.Since(rankingStart)

				final := &Response{
					SearchID:         searchID,
					Query:            query,
					Intent:           intent,
					Recommendation:   rec,
					Results:          ranked,
					EnginesSelected:  engines,
					EnginesSucceeded: update.Final.EnginesSucceeded,
					EnginesFailed:    update.Final.EnginesFailed,
					Timings: Timings{
						Routing:   routingElapsed,
						Execution: execElapsed,
						Ranking:   rankingElapsed,
						Total:     time.Since(totalStart),
					},
				}
				select {
				case out <- StreamUpdate{Phase: search.WaveComplete, Results: ranked, Final: final}:
				case <-ctx.Done():
				}
				return
			}

			pool = append(pool, update.Results...)
			rankingStart := time.Now()
			ranked := p.ranker.Rank(pool, query, p.reg.Tiers())
			rankingElapsed += time.Since(rankingStart)

			select {
			case out <- StreamUpdate{Phase: update.Phase, Results: ranked}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// route resolves the engine set: an explicit list bypasses the router and
// produces no recommendation, otherwise routing runs through the memo cache.
func (p *Pipeline) route(query string, opts Options) (intent string, rec *search.Recommendation, engines []string) {
	if len(opts.Engines) > 0 {
		return IntentExplicit, nil, opts.Engines
	}
	if cached, ok := p.routeCache.Get(query); ok {
		return cached.Intent, cached, cached.Engines
	}
	rec = p.router.Route(query)
	p.routeCache.Add(query, rec)
	return rec.Intent, rec, rec.Engines
}
