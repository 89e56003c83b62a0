package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/mstrand/wavesearch/internal/apperr"
	mw "github.com/mstrand/wavesearch/pkg/middleware"
	pkgserver "github.com/mstrand/wavesearch/pkg/server"
)

const GracefulShutdownTimeout = 10 * time.Second

type Server struct {
	Echo *echo.Echo

	cfg           *Config
	healthChecker pkgserver.HealthChecker
	ctx           context.Context
	stop          context.CancelFunc
}

func New(cfg *Config, healthChecker pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.DisableHTTP2 = !cfg.UseHttp2

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	return &Server{
		Echo:          e,
		cfg:           cfg,
		healthChecker: healthChecker,
		ctx:           ctx,
		stop:          stop,
	}
}

func (s *Server) SetupMiddlewares() *Server {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	return s
}

func (s *Server) SetupErrorHandler() *Server {
	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	return s
}

func (s *Server) SetupHealthChecks(path string) *Server {
	s.Echo.GET(path, func(c echo.Context) error {
		if !s.healthChecker.Healthy(c.Request().Context()) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

func (s *Server) SetupOpenApi(path string) *Server {
	s.Echo.GET(path, echoSwagger.WrapHandler)
	return s
}

// Context is cancelled when the process receives an interrupt.
func (s *Server) Context() context.Context {
	return s.ctx
}

func (s *Server) ShutdownSignal() <-chan struct{} {
	return s.ctx.Done()
}

// Start serves until interrupted, then shuts down gracefully.
func (s *Server) Start() error {
	defer s.stop()

	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Echo.Logger.Fatal("shutting down the server")
		}
	}()

	<-s.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.Echo.Logger.Error(err)
		return err
	}
	return nil
}
