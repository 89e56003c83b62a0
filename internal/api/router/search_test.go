package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstrand/wavesearch/internal/adapters/memengine"
	"github.com/mstrand/wavesearch/internal/api/router"
	"github.com/mstrand/wavesearch/internal/apperr"
	"github.com/mstrand/wavesearch/internal/pipeline"
	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/search"
)

func testServer(t *testing.T) *echo.Echo {
	t.Helper()

	corpus := []memengine.Document{
		{URL: "https://docs/1", Title: "go concurrency", Snippet: "goroutines"},
		{URL: "https://docs/2", Title: "go testing", Snippet: "test packages"},
	}

	reg := registry.New()
	require.NoError(t, reg.Register(
		registry.Descriptor{Code: "M1", Name: "Corpus A", Tier: search.TierLightning},
		memengine.New(corpus),
	))
	require.NoError(t, reg.Register(
		registry.Descriptor{Code: "M2", Name: "Corpus B", Tier: search.TierStandard},
		memengine.New(corpus),
	))

	pipe, err := pipeline.New(reg, pipeline.DefaultConfig())
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	router.NewSearchRouter(e, pipe).Bind()
	return e
}

func TestSearchHandler(t *testing.T) {
	t.Run("returns ranked results", func(t *testing.T) {
		e := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/search?query=go", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp pipeline.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Results, 2)
		assert.ElementsMatch(t, []string{"M1", "M2"}, resp.EnginesSucceeded)
		require.NotEmpty(t, resp.Results)
		assert.Equal(t, 1, resp.Results[0].Rank)
	})

	t.Run("missing query is a validation error", func(t *testing.T) {
		e := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "query parameter is required")
	})

	t.Run("explicit engines bypass routing", func(t *testing.T) {
		e := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/search?query=go&engines=M1", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp pipeline.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "explicit", resp.Intent)
		assert.Equal(t, []string{"M1"}, resp.EnginesSelected)
	})

	t.Run("invalid stop_after rejected", func(t *testing.T) {
		e := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/search?query=go&stop_after=9", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStreamHandler(t *testing.T) {
	t.Run("emits wave events and a complete sentinel", func(t *testing.T) {
		e := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/search/stream?query=go", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/event-stream")

		body := rec.Body.String()
		assert.Contains(t, body, "event: wave_1")
		assert.Contains(t, body, "event: wave_2")
		assert.True(t, strings.Contains(body, "event: complete"))
	})
}
