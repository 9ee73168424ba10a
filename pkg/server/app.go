package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"HydroPull/internal/usecase"
	"HydroPull/pkg/cache"
	"HydroPull/pkg/config"
	xhttp "HydroPull/pkg/http"
	xlogger "HydroPull/pkg/logger"
)

// App encapsulates the application lifecycle: one generation cycle on
// startup, and optionally an HTTP server exposing the results.
type App struct {
	cfg        *config.Config
	logger     *xlogger.Logger
	gen        *usecase.Generator
	handler    xhttp.Handler
	cache      cache.Service
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	gen *usecase.Generator,
	handler xhttp.Handler,
	c cache.Service,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		gen:     gen,
		handler: handler,
		cache:   c,
	}
}

// Run starts the application. In one-shot mode (server disabled) it
// generates the charts and exits; otherwise it keeps serving until
// interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := a.gen.Run(ctx)
	if err != nil {
		a.logger.Error("initial generation failed", xlogger.Error(err))
		if !a.cfg.Server.Enabled {
			return err
		}
	} else {
		a.logger.Info("charts written",
			xlogger.String("dir", a.cfg.Output.Dir),
			xlogger.Int("charts", len(res.Charts)))
	}

	if !a.cfg.Server.Enabled {
		return a.shutdown(ctx)
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("http server started", xlogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", xlogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", xlogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
