package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mstrand/wavesearch/internal/apperr"
	"github.com/mstrand/wavesearch/internal/pipeline"
	"github.com/mstrand/wavesearch/internal/search"
	"github.com/mstrand/wavesearch/pkg/stringsutil"
)

type SearchRouter struct {
	e    *echo.Echo
	pipe *pipeline.Pipeline
}

func NewSearchRouter(e *echo.Echo, pipe *pipeline.Pipeline) *SearchRouter {
	return &SearchRouter{
		e:    e,
		pipe: pipe,
	}
}

func (r *SearchRouter) Bind() {
	r.e.GET("/search", r.searchHandler)
	r.e.GET("/search/stream", r.streamHandler)
}

// searchHandler godoc
// @Summary Federated search
// @Description Routes the query to a subset of engines, executes them in waves and returns confidence-ranked results.
// @Param query query string true "Free-text query"
// @Param engines query string false "Comma-separated engine codes, bypasses routing"
// @Param stop_after query int false "Stop after wave 1-3"
// @Produce json
// @Success 200 {object} pipeline.Response
// @Router /search [get]
func (r *SearchRouter) searchHandler(c echo.Context) error {
	opts, err := parseOptions(c)
	if err != nil {
		return err
	}

	resp, err := r.pipe.Search(c.Request().Context(), c.QueryParam("query"), opts)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// streamHandler godoc
// @Summary Streaming federated search
// @Description Emits Server-Sent Events: one per settled wave with the cumulative re-ranked pool, then a final complete event.
// @Param query query string true "Free-text query"
// @Param engines query string false "Comma-separated engine codes, bypasses routing"
// @Param stop_after query int false "Stop after wave 1-3"
// @Produce text/event-stream
// @Success 200
// @Router /search/stream [get]
func (r *SearchRouter) streamHandler(c echo.Context) error {
	opts, err := parseOptions(c)
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for update := range r.pipe.SearchStreaming(ctx, c.QueryParam("query"), opts) {
		payload, marshalErr := json.Marshal(update)
		if marshalErr != nil {
			return fmt.Errorf("encode stream update: %w", marshalErr)
		}
		if _, writeErr := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", update.Phase, payload); writeErr != nil {
			return nil // client went away
		}
		res.Flush()
	}
	return nil
}

func parseOptions(c echo.Context) (pipeline.Options, error) {
	var opts pipeline.Options

	if c.QueryParam("query") == "" {
		return opts, apperr.NewValidation("query parameter is required")
	}

	if enginesParam := c.QueryParam("engines"); enginesParam != "" {
		codes := strings.Split(enginesParam, ",")
		for i, code := range codes {
			codes[i] = strings.TrimSpace(code)
		}
		opts.Engines = stringsutil.RemoveEmptyStrings(codes)
	}

	if stopParam := c.QueryParam("stop_after"); stopParam != "" {
		wave, err := strconv.Atoi(stopParam)
		if err != nil || wave < int(search.Wave1) || wave > int(search.Wave3) {
			return opts, apperr.NewValidation("stop_after must be 1, 2 or 3")
		}
		opts.StopAfterWave = search.WavePhase(wave)
	}

	return opts, nil
}
