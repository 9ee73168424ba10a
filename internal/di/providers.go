package di

import (
	"fmt"

	"HydroPull/internal/handler/api"
	"HydroPull/internal/render"
	"HydroPull/internal/service/hydromet"
	"HydroPull/internal/usecase"
	"HydroPull/pkg/cache"
	"HydroPull/pkg/config"
	xhttp "HydroPull/pkg/http"
	xlogger "HydroPull/pkg/logger"
	"HydroPull/pkg/metrics"
	"HydroPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache creates the response cache: layered Redis+memory when Redis
// is configured, plain in-memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideRenderer creates the chart renderer.
func ProvideRenderer(cfg *config.Config) *render.Renderer {
	return render.New(cfg.Output.Width, cfg.Output.Height)
}

// ProvideHydrometClient creates the hydromet API client.
func ProvideHydrometClient(cfg *config.Config, l *xlogger.Logger, m *metrics.Recorder, c cache.Service) *hydromet.Client {
	return hydromet.New(cfg, l, m, c)
}

// ProvideGenerator creates the chart generation pipeline.
func ProvideGenerator(cfg *config.Config, client *hydromet.Client, r *render.Renderer, l *xlogger.Logger, m *metrics.Recorder) *usecase.Generator {
	return usecase.NewGenerator(cfg, client, r, l, m)
}

// ProvideHandler creates the HTTP handler surface.
func ProvideHandler(l *xlogger.Logger, gen *usecase.Generator, cfg *config.Config) xhttp.Handler {
	return api.NewChartsHandler(l, gen, cfg)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *xlogger.Logger,
	gen *usecase.Generator,
	handler xhttp.Handler,
	c cache.Service,
) *server.App {
	return server.New(cfg, l, gen, handler, c)
}
