// Package server wires the HTTP surface: auth-gated ingest, query, sources,
// and partitions routes plus an unauthenticated liveness probe.
package server

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/slogger-dev/slogger/internal/auth"
	"github.com/slogger-dev/slogger/internal/config"
	"github.com/slogger-dev/slogger/internal/configfile"
	"github.com/slogger-dev/slogger/internal/handler"
	"github.com/slogger-dev/slogger/internal/ingest"
	"github.com/slogger-dev/slogger/internal/partition"
	"github.com/slogger-dev/slogger/internal/query"
	"github.com/slogger-dev/slogger/internal/response"
	"github.com/slogger-dev/slogger/internal/timeextract"
)

// Server holds the Echo app and its dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
}

// New builds the Echo server and registers routes. nrApp may be nil; when
// set, every request runs inside a New Relic transaction.
func New(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger, nrApp *newrelic.Application) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(middleware.ContextTimeout(time.Duration(cfg.RequestTimeout) * time.Second))
	if nrApp != nil {
		e.Use(transactionMiddleware(nrApp))
	}

	manager := partition.NewManager(pool)
	pipeline := ingest.NewPipeline(pool, manager, timePathsFromFile(cfg.ConfigPath))
	engine := query.NewEngine(pool)

	h := &handler.LogsHandler{
		Pipeline:   pipeline,
		Engine:     engine,
		Partitions: manager,
	}

	keyring := &auth.Keyring{Path: cfg.ConfigPath}
	api := e.Group("/api", auth.Middleware(keyring))
	api.POST("/logs/:source", h.Ingest)
	api.GET("/logs", h.Query)
	api.GET("/sources", h.Sources)
	api.GET("/partitions", h.ListPartitions)

	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return response.InternalError(c, "database unreachable")
		}
		return response.OK(c, map[string]string{"status": "ok"})
	})

	return &Server{Echo: e, Config: cfg}
}

// Start runs the HTTP server. Blocks until the context is cancelled or the
// server fails; on cancel, Shutdown drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Echo.Shutdown(shutdownCtx)
	}()
	return s.Echo.Start(":" + s.Config.Port)
}

// timePathsFromFile re-reads the config document per call so time_paths
// edits take effect without a restart.
func timePathsFromFile(path string) ingest.TimePaths {
	return func() []string {
		cfg, err := configfile.Read(path)
		if err != nil {
			return timeextract.DefaultPaths
		}
		return cfg.TimePaths
	}
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := logger.Info()
			if v.Error != nil {
				evt = logger.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// transactionMiddleware runs each request in a New Relic web transaction and
// puts the transaction on the request context so nrpgx5 can attach database
// segments.
func transactionMiddleware(app *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := app.StartTransaction(c.Request().Method + " " + c.Path())
			defer txn.End()

			txn.SetWebRequestHTTP(c.Request())
			c.Response().Writer = txn.SetWebResponse(c.Response().Writer)
			c.SetRequest(c.Request().WithContext(newrelic.NewContext(c.Request().Context(), txn)))

			err := next(c)
			if err != nil {
				txn.NoticeError(err)
			}
			return err
		}
	}
}
