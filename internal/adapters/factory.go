package adapters

import (
	"context"
	"fmt"

	"github.com/mstrand/wavesearch/internal/adapters/esengine"
	"github.com/mstrand/wavesearch/internal/adapters/httpengine"
	"github.com/mstrand/wavesearch/internal/adapters/memengine"
	"github.com/mstrand/wavesearch/internal/adapters/pgengine"
	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/search"
)

// Build constructs the registry from config. The returned cleanup closes
// every connection-holding adapter; call it on shutdown. Construction is
// all-or-nothing: one broken engine fails the whole startup.
func Build(ctx context.Context, cfg *Config) (*registry.Registry, func(), error) {
	reg := registry.New()
	var cleanups []func()

	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}

	for _, engCfg := range cfg.Engines {
		eng, closer, err := buildEngine(ctx, engCfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("build engine %q: %w", engCfg.Code, err)
		}
		if closer != nil {
			cleanups = append(cleanups, closer)
		}

		desc := registry.Descriptor{
			Code: engCfg.Code,
			Name: engCfg.Name,
			Tier: search.Tier(engCfg.Tier),
		}
		if err := reg.Register(desc, eng); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return reg, cleanup, nil
}

func buildEngine(ctx context.Context, cfg EngineConfig) (registry.Engine, func(), error) {
	switch cfg.Kind {
	case KindHTTP:
		eng, err := httpengine.New(httpengine.Config{
			BaseURL:    cfg.HTTP.BaseURL,
			Path:       cfg.HTTP.Path,
			QueryParam: cfg.HTTP.QueryParam,
			LimitParam: cfg.HTTP.LimitParam,
			Headers:    cfg.HTTP.Headers,
			Timeout:    cfg.HTTP.Timeout(),
		})
		return eng, nil, err

	case KindElasticsearch:
		eng, err := esengine.New(esengine.Config{
			Addresses: cfg.Elasticsearch.Addresses,
			IndexName: cfg.Elasticsearch.Index,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		})
		return eng, nil, err

	case KindPostgres:
		eng, err := pgengine.New(ctx, pgengine.Config{ConnStr: cfg.Postgres.ConnStr})
		if err != nil {
			return nil, nil, err
		}
		return eng, eng.Close, nil

	case KindMemory:
		return memengine.New(cfg.Memory.Documents), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported kind %q", cfg.Kind)
	}
}
