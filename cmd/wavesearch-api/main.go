// Package main WaveSearch API
// @title WaveSearch API
// @version 1.0
// @description A federated search aggregator that routes queries across engines, executes them in latency waves and returns confidence-ranked results
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.email support@wavesearch.dev
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/mstrand/wavesearch/internal/adapters"
	"github.com/mstrand/wavesearch/internal/api/router"
	"github.com/mstrand/wavesearch/internal/api/server"
	"github.com/mstrand/wavesearch/internal/pipeline"
	pkgserver "github.com/mstrand/wavesearch/pkg/server"
)

func main() {
	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	healthChecker := pkgserver.NewOkHealthChecker()

	s := server.New(sCfg, healthChecker).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/healthz").
		SetupOpenApi("/swagger/*")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "WaveSearch API is running")
	})

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
		return
	}

	reg, cleanup, err := adapters.Build(s.Context(), cfg.Engines)
	if err != nil {
		slog.Error("Failed to build engine registry", "error", err)
		os.Exit(1)
		return
	}

	pipe, err := pipeline.New(reg, cfg.Pipeline)
	if err != nil {
		slog.Error("Failed to build search pipeline", "error", err)
		cleanup()
		os.Exit(1)
		return
	}

	searchRouter := router.NewSearchRouter(s.Echo, pipe)
	searchRouter.Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
		cleanup()
	}()

	err = s.Start()
	if err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}
