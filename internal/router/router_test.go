package router_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/router"
	"github.com/mstrand/wavesearch/internal/search"
)

type nopEngine struct{}

func (nopEngine) Search(context.Context, string, int) ([]search.Result, error) {
	return nil, nil
}

func buildRegistry(t *testing.T, tiers map[string]search.Tier) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for code, tier := range tiers {
		require.NoError(t, reg.Register(registry.Descriptor{Code: code, Name: code, Tier: tier}, nopEngine{}))
	}
	return reg
}

func fullRegistry(t *testing.T) *registry.Registry {
	return buildRegistry(t, map[string]search.Tier{
		"L1": search.TierLightning,
		"L2": search.TierLightning,
		"F1": search.TierFast,
		"S1": search.TierStandard,
		"S2": search.TierStandard,
		"W1": search.TierSlow,
		"V1": search.TierVerySlow,
	})
}

func TestNew(t *testing.T) {
	t.Run("empty registry fails", func(t *testing.T) {
		_, err := router.New(registry.New(), router.Config{})
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("nil registry fails", func(t *testing.T) {
		_, err := router.New(nil, router.Config{})
		assert.Error(t, err)
	})
}

func TestRoute(t *testing.T) {
	t.Run("speed mode selects only lightning and fast", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{Mode: router.ModeSpeed})
		require.NoError(t, err)

		rec := r.Route("anything at all")
		assert.ElementsMatch(t, []string{"L1", "L2", "F1"}, rec.Engines)
		assert.Empty(t, rec.TierBreakdown[search.TierStandard])
		assert.Empty(t, rec.TierBreakdown[search.TierSlow])
	})

	t.Run("comprehensive mode includes slow tiers", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{Mode: router.ModeComprehensive})
		require.NoError(t, err)

		rec := r.Route("anything at all")
		assert.Contains(t, rec.Engines, "W1")
		assert.Contains(t, rec.Engines, "V1")
	})

	t.Run("balanced mode excludes slow for simple queries", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{Mode: router.ModeBalanced})
		require.NoError(t, err)

		rec := r.Route("cats")
		assert.NotContains(t, rec.Engines, "W1")
		assert.NotContains(t, rec.Engines, "V1")
		assert.Contains(t, rec.Engines, "S1")
	})

	t.Run("balanced mode adds slow tier for complex queries", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{Mode: router.ModeBalanced})
		require.NoError(t, err)

		rec := r.Route(`John Smith site:example.com in Berlin latest news 2024`)
		assert.GreaterOrEqual(t, rec.Complexity, 0.6)
		assert.Contains(t, rec.Engines, "W1")
		assert.NotContains(t, rec.Engines, "V1")
	})

	t.Run("maxEngines truncates slowest first", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{Mode: router.ModeComprehensive, MaxEngines: 3})
		require.NoError(t, err)

		rec := r.Route("anything")
		require.Len(t, rec.Engines, 3)
		// Selection fills fastest tiers first, so truncation keeps them.
		assert.ElementsMatch(t, []string{"L1", "L2", "F1"}, rec.Engines)
	})

	t.Run("no matching tier falls back to whole registry", func(t *testing.T) {
		slowOnly := buildRegistry(t, map[string]search.Tier{
			"W1": search.TierSlow,
			"V1": search.TierVerySlow,
		})
		r, err := router.New(slowOnly, router.Config{Mode: router.ModeSpeed})
		require.NoError(t, err)

		rec := r.Route("anything")
		assert.NotEmpty(t, rec.Engines)
	})

	t.Run("unmatched query still yields valid recommendation", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{})
		require.NoError(t, err)

		rec := r.Route("")
		assert.NotEmpty(t, rec.Engines)
		assert.Equal(t, "general", rec.Intent)
		assert.NotEmpty(t, rec.Explanation)
	})

	t.Run("estimated time reflects tier composition", func(t *testing.T) {
		fast := buildRegistry(t, map[string]search.Tier{"L1": search.TierLightning})
		deep := buildRegistry(t, map[string]search.Tier{
			"L1": search.TierLightning,
			"V1": search.TierVerySlow,
		})

		rFast, err := router.New(fast, router.Config{Mode: router.ModeComprehensive})
		require.NoError(t, err)
		rDeep, err := router.New(deep, router.Config{Mode: router.ModeComprehensive})
		require.NoError(t, err)

		assert.Greater(t, rDeep.Route("q").EstimatedTime, rFast.Route("q").EstimatedTime)
	})

	t.Run("routing is deterministic", func(t *testing.T) {
		r, err := router.New(fullRegistry(t), router.Config{})
		require.NoError(t, err)

		first := r.Route("deterministic query")
		second := r.Route("deterministic query")
		assert.Equal(t, first, second)
	})
}
