package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"HydroPull/internal/domain/models"
	"HydroPull/internal/geo"
	"HydroPull/internal/render"
	"HydroPull/internal/service/hydromet"
	"HydroPull/pkg/config"
	xlogger "HydroPull/pkg/logger"
	"HydroPull/pkg/metrics"
)

// ErrGenerationRunning is returned when a generation cycle is already in flight.
var ErrGenerationRunning = errors.New("generation already running")

// Result captures one completed generation cycle.
type Result struct {
	Charts      []string               `json:"charts"`
	Skipped     int                    `json:"skipped"`
	Aggregates  []models.ZoneAggregate `json:"aggregates"`
	Evolution   models.SystemEvolution `json:"evolution"`
	GeneratedAt time.Time              `json:"generated_at"`
	Duration    time.Duration          `json:"duration"`
}

// Generator runs the full pipeline: pull every series from the hydromet
// API, reconcile historical and forecast runs, aggregate across zones and
// write the chart inventory to the output directory.
type Generator struct {
	client   *hydromet.Client
	renderer *render.Renderer
	logger   *xlogger.Logger
	metrics  *metrics.Recorder

	outDir      string
	workers     int
	sampleWells []string

	mu      sync.Mutex
	running bool
	last    *Result
}

func NewGenerator(cfg *config.Config, client *hydromet.Client, renderer *render.Renderer, l *xlogger.Logger, m *metrics.Recorder) *Generator {
	workers := cfg.Fetch.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Generator{
		client:      client,
		renderer:    renderer,
		logger:      l,
		metrics:     m,
		outDir:      cfg.Output.Dir,
		workers:     workers,
		sampleWells: cfg.Output.SampleWells,
	}
}

// Last returns the most recent completed result, or nil before the first run.
func (g *Generator) Last() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Running reports whether a cycle is in flight.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Trigger starts a generation cycle in the background. It refuses to stack
// concurrent cycles.
func (g *Generator) Trigger(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return ErrGenerationRunning
	}
	g.running = true
	g.mu.Unlock()

	// The cycle outlives the request that started it.
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer func() {
			g.mu.Lock()
			g.running = false
			g.mu.Unlock()
		}()
		if _, err := g.run(ctx); err != nil {
			g.logger.Error("generation failed", xlogger.Error(err))
		}
	}()
	return nil
}

// Run executes one synchronous generation cycle.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return nil, ErrGenerationRunning
	}
	g.running = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
	}()
	return g.run(ctx)
}

func (g *Generator) run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	headZones, err := g.client.HeadZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list head zones: %w", err)
	}
	balanceZones, err := g.client.BalanceZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list balance zones: %w", err)
	}
	wells, forecastWells, err := g.wellLists(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{GeneratedAt: start}

	g.headCharts(ctx, headZones, res)
	reconciled := g.balanceCharts(ctx, balanceZones, res)
	g.zoneCharts(reconciled, res)
	histories, infos := g.wellCharts(ctx, wells, forecastWells, res)
	g.mapChart(ctx, res, histories, infos)

	sort.Strings(res.Charts)
	res.Duration = time.Since(start)
	g.metrics.RecordDuration("generate", res.Duration.Seconds())
	g.logger.Info("generation finished",
		xlogger.Int("charts", len(res.Charts)),
		xlogger.Int("skipped", res.Skipped),
		xlogger.Duration("took", res.Duration))

	g.mu.Lock()
	g.last = res
	g.mu.Unlock()
	return res, nil
}

func (g *Generator) wellLists(ctx context.Context) ([]string, []string, error) {
	if len(g.sampleWells) > 0 {
		return g.sampleWells, g.sampleWells, nil
	}
	wells, err := g.client.Wells(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list wells: %w", err)
	}
	forecastWells, err := g.client.ForecastWells(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list forecast wells: %w", err)
	}
	return wells, forecastWells, nil
}

func (g *Generator) headCharts(ctx context.Context, zones []string, res *Result) {
	kinds := []hydromet.HeadKind{hydromet.HeadAbsolute, hydromet.HeadDelta}
	titles := map[hydromet.HeadKind]string{
		hydromet.HeadAbsolute: "Absolute Head",
		hydromet.HeadDelta:    "Head Delta",
	}
	suffix := map[hydromet.HeadKind]string{
		hydromet.HeadAbsolute: "head_absolute",
		hydromet.HeadDelta:    "head_delta",
	}

	g.forEach(ctx, zones, func(ctx context.Context, zone string) {
		for _, kind := range kinds {
			hist := g.client.HeadHistorical(ctx, zone, kind)
			fc := g.client.HeadForecast(ctx, zone, kind)
			rs := Reconcile(hist, fc)
			rs.ID = zone
			if rs.Empty() {
				g.skip(res, "head", zone)
				continue
			}
			if kind == hydromet.HeadAbsolute {
				g.recordLast(zone, rs)
			}
			png, err := g.renderer.HeadChart(zone, titles[kind], rs)
			g.writeChart(res, slug(zone)+"_"+suffix[kind]+".png", png, err)
		}
	})
}

// balanceCharts renders the per-zone balance charts and returns the
// reconciled balance series keyed by zone for the aggregate stage.
func (g *Generator) balanceCharts(ctx context.Context, zones []string, res *Result) map[string]models.ReconciledSeries {
	reconciled := make(map[string]models.ReconciledSeries, len(zones))
	var mu sync.Mutex

	g.forEach(ctx, zones, func(ctx context.Context, zone string) {
		hist := g.client.BalanceHistorical(ctx, zone)
		fc := g.client.BalanceForecast(ctx, zone)
		rs := Reconcile(hist, fc)
		rs.ID = zone
		if rs.Empty() {
			g.skip(res, "balance", zone)
			return
		}

		mu.Lock()
		reconciled[zone] = rs
		mu.Unlock()

		components := map[models.FieldName]string{
			models.FieldStepIn:   "balance_step_in",
			models.FieldStepOut:  "balance_step_out",
			models.FieldStepRate: "balance_step_rate",
		}
		for _, field := range []models.FieldName{models.FieldStepIn, models.FieldStepOut, models.FieldStepRate} {
			png, err := g.renderer.BalanceComponentBars(zone, field, rs)
			g.writeChart(res, slug(zone)+"_"+components[field]+".png", png, err)
		}
		png, err := g.renderer.BalanceCombined(zone, rs)
		g.writeChart(res, slug(zone)+"_balance_combined.png", png, err)
	})
	return reconciled
}

func (g *Generator) zoneCharts(reconciled map[string]models.ReconciledSeries, res *Result) {
	aggs := AggregateZones(reconciled)
	evo := SystemEvolution(reconciled)
	res.Aggregates = aggs
	res.Evolution = evo

	png, err := g.renderer.ZonesComponentsComparison(aggs)
	g.writeChart(res, "zones_components_comparison.png", png, err)

	png, err = g.renderer.ZonesNetBalance(aggs)
	g.writeChart(res, "zones_net_balance.png", png, err)

	png, err = g.renderer.SystemEvolutionChart(evo)
	g.writeChart(res, "system_balance_evolution.png", png, err)
}

func (g *Generator) wellCharts(ctx context.Context, wells, forecastWells []string, res *Result) (map[string][]models.Observation, map[string]models.WellInfo) {
	var mu sync.Mutex
	histories := make(map[string][]models.Observation)
	forecasts := make(map[string][]models.Observation)
	infos := make(map[string]models.WellInfo)

	g.forEach(ctx, wells, func(ctx context.Context, well string) {
		obs, info := g.client.WellData(ctx, well)
		if len(obs) == 0 {
			g.skip(res, "well", well)
			return
		}
		obs = models.SortObservations(obs)
		mu.Lock()
		histories[well] = obs
		infos[well] = info
		mu.Unlock()
		png, err := g.renderer.WellHistory(well, obs)
		g.writeChart(res, slug(well)+"_history.png", png, err)
	})

	g.forEach(ctx, forecastWells, func(ctx context.Context, well string) {
		obs, _ := g.client.WellForecast(ctx, well)
		if len(obs) == 0 {
			g.skip(res, "well_forecast", well)
			return
		}
		obs = models.SortObservations(obs)
		mu.Lock()
		forecasts[well] = obs
		mu.Unlock()
		png, err := g.renderer.WellForecast(well, obs)
		g.writeChart(res, slug(well)+"_forecast.png", png, err)
	})

	png, err := g.renderer.WellsComparison("Well Level History", "Depth to water (m)", sortedKeys(histories), histories)
	g.writeChart(res, "wells_comparison.png", png, err)

	png, err = g.renderer.WellsComparison("Well Level Forecasts", "Level change (m)", sortedKeys(forecasts), forecasts)
	g.writeChart(res, "forecasts_comparison.png", png, err)

	return histories, infos
}

func (g *Generator) mapChart(ctx context.Context, res *Result, histories map[string][]models.Observation, infos map[string]models.WellInfo) {
	levels := g.client.WellLevelsGeoJSON(ctx)
	zones := g.client.ZonesGeoJSON(ctx)
	if len(levels) == 0 && len(zones) == 0 {
		g.skip(res, "map", "layers")
		return
	}

	var points []models.WellPoint
	if len(levels) > 0 {
		var err error
		points, err = geo.ParseWellPoints(levels)
		if err != nil {
			g.logger.Warn("well layer unusable", xlogger.Error(err))
		}
	}
	var outlines []models.ZoneOutline
	if len(zones) > 0 {
		var err error
		outlines, err = geo.ParseZoneOutlines(zones)
		if err != nil {
			g.logger.Warn("zone layer unusable", xlogger.Error(err))
		}
	}
	classifyPoints(points, histories, infos)

	png, err := g.renderer.PercentileMap(points, outlines)
	g.writeChart(res, "wells_percentile_map.png", png, err)
}

// classifyPoints fills in missing percentile classes by locating the well
// whose reported position matches the map point and bucketing its latest
// level against its own history.
func classifyPoints(points []models.WellPoint, histories map[string][]models.Observation, infos map[string]models.WellInfo) {
	const eps = 1e-4

	for i, p := range points {
		if p.Class != "" {
			continue
		}
		for well, info := range infos {
			if math.Abs(info.Longitude-p.Lon) > eps || math.Abs(info.Latitude-p.Lat) > eps {
				continue
			}
			if cls, ok := models.ClassifyPercentile(histories[well]); ok {
				points[i].Class = cls
			}
			break
		}
	}
}

// forEach fans items out to a bounded pool and waits for all of them.
func (g *Generator) forEach(ctx context.Context, items []string, fn func(context.Context, string)) {
	sem := make(chan struct{}, g.workers)
	var wg sync.WaitGroup
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(item string) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(ctx, item)
		}(item)
	}
	wg.Wait()
}

func (g *Generator) writeChart(res *Result, name string, png []byte, err error) {
	if err != nil {
		if errors.Is(err, render.ErrNoData) {
			g.skip(res, "chart", name)
			return
		}
		g.logger.Error("render failed", xlogger.String("chart", name), xlogger.Error(err))
		g.countSkip(res)
		return
	}
	if err := os.WriteFile(filepath.Join(g.outDir, name), png, 0o644); err != nil {
		g.logger.Error("write failed", xlogger.String("chart", name), xlogger.Error(err))
		g.countSkip(res)
		return
	}
	g.metrics.RecordChart(name)
	g.mu.Lock()
	res.Charts = append(res.Charts, name)
	g.mu.Unlock()
}

func (g *Generator) skip(res *Result, kind, id string) {
	g.metrics.RecordSkipped(kind)
	g.logger.Warn("nothing to draw", xlogger.String("kind", kind), xlogger.String("id", id))
	g.countSkip(res)
}

func (g *Generator) countSkip(res *Result) {
	g.mu.Lock()
	res.Skipped++
	g.mu.Unlock()
}

func (g *Generator) recordLast(zone string, rs models.ReconciledSeries) {
	all := rs.All()
	for i := len(all) - 1; i >= 0; i-- {
		if v, ok := all[i].Field(models.FieldValue); ok {
			g.metrics.RecordLastObservation(zone, v)
			return
		}
	}
}

func sortedKeys(m map[string][]models.Observation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// slug makes a series identifier safe to use in a file name.
func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		default:
			return r
		}
	}, s)
}
