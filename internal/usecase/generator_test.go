package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HydroPull/internal/domain/models"
	"HydroPull/internal/render"
	"HydroPull/internal/service/hydromet"
	"HydroPull/pkg/config"
	xlogger "HydroPull/pkg/logger"
	"HydroPull/pkg/metrics"
)

// One recorder per test binary: the collectors register globally.
var testMetrics = metrics.New()

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

const headSeries = `{"data":[
  {"date":"2020-01","value":10.0},
  {"date":"2020-02","value":11.0}
]}`

const headForecast = `{"data":[
  {"date":"2020-03","value":12.0},
  {"date":"2020-04","value":13.0}
]}`

const balanceSeries = `{"data":[
  {"date":"2020-01","value_step_in":10.0,"value_step_out":5.0,"value_step_rate":2.0},
  {"date":"2020-02","value_step_in":20.0,"value_step_out":5.0,"value_step_rate":2.0}
]}`

const balanceForecast = `{"data":[
  {"date":"2020-03","value_step_in":14.0,"value_step_out":6.0,"value_step_rate":2.0}
]}`

const wellData = `{
  "data":[{"date":"2020-01","value":25.0},{"date":"2020-02","value":24.5}],
  "info":{"punto_monitoreo":"Pozo_3","latitude":-27.37,"longitude":-69.5,"tipo_nivel":"profundidad"}
}`

const wellForecastData = `{
  "data":[{"date":"2020-03","value":-0.2},{"date":"2020-04","value":0.1}],
  "info":{"punto_monitoreo":"Pozo_3"}
}`

const wellLayerJSON = `{
  "type":"FeatureCollection",
  "features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-69.5,-27.37]},"properties":{"clasificacion_percentil":"<P33"}}]
}`

const zoneLayerJSON = `{
  "type":"FeatureCollection",
  "features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[450000,6972000],[460000,6972000],[460000,6982000],[450000,6972000]]]},"properties":{"zona":"Zona 1"}}]
}`

func apiMux() *http.ServeMux {
	mux := http.NewServeMux()
	reply := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
	}
	reply("/api/v1/metamodelos/zonas", `["Zona 1"]`)
	reply("/api/v1/metamodelos/balance/zones", `["Zona 1"]`)
	reply("/api/v1/plataforma-pozos/listado-pozos", `{"pozos":["Pozo_3"]}`)
	reply("/api/v1/salida/pronostico-pozos/listado", `["Pozo_3"]`)
	reply("/api/v1/metamodelos/metamodelo-mensual-head-absoluto-historico", headSeries)
	reply("/api/v1/metamodelos/metamodelo-mensual-head-absoluto-modelacion", headForecast)
	reply("/api/v1/metamodelos/metamodelo-mensual-head-delta-historico", headSeries)
	reply("/api/v1/metamodelos/metamodelo-mensual-head-delta-modelacion", headForecast)
	reply("/api/v1/metamodelos/balance/metamodelo-mensual-balance-historico", balanceSeries)
	reply("/api/v1/metamodelos/balance/metamodelo-mensual-balance-modelacion", balanceForecast)
	reply("/api/v1/plataforma-pozos/pozos-data/Pozo_3", wellData)
	reply("/api/v1/salida/pronostico-pozos-data/Pozo_3", wellForecastData)
	reply("/api/v1/plataforma-pozos/pozos-nivel-geojson", wellLayerJSON)
	reply("/api/v1/metamodelos/metamodelos-zonas-geojson", zoneLayerJSON)
	return mux
}

func testGenerator(t *testing.T, handler http.Handler) (*Generator, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.API.MetamodelURL = srv.URL + "/api/v1/metamodelos"
	cfg.API.BalanceURL = srv.URL + "/api/v1/metamodelos/balance"
	cfg.API.WellsURL = srv.URL + "/api/v1/plataforma-pozos"
	cfg.API.ForecastURL = srv.URL + "/api/v1/salida/pronostico-pozos"
	cfg.API.Timeout = 5 * time.Second
	cfg.Output.Dir = dir
	cfg.Fetch.Workers = 2

	client := hydromet.New(cfg, nil, nil, nil)
	g := NewGenerator(cfg, client, render.New(600, 300), testLogger(t), testMetrics)
	return g, dir
}

func TestGeneratorRun(t *testing.T) {
	g, dir := testGenerator(t, apiMux())

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"Zona_1_head_absolute.png",
		"Zona_1_head_delta.png",
		"Zona_1_balance_step_in.png",
		"Zona_1_balance_step_out.png",
		"Zona_1_balance_step_rate.png",
		"Zona_1_balance_combined.png",
		"zones_components_comparison.png",
		"zones_net_balance.png",
		"system_balance_evolution.png",
		"Pozo_3_history.png",
		"Pozo_3_forecast.png",
		"wells_comparison.png",
		"forecasts_comparison.png",
		"wells_percentile_map.png",
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing chart %s: %v", name, err)
		}
	}
	if len(res.Charts) != len(want) {
		t.Errorf("charts = %d, want %d", len(res.Charts), len(want))
	}

	if len(res.Aggregates) != 1 {
		t.Fatalf("aggregates = %d, want 1", len(res.Aggregates))
	}
	agg := res.Aggregates[0]
	if agg.Zone != "Zona 1" {
		t.Errorf("zone %q", agg.Zone)
	}
	if agg.NetBalance == nil {
		t.Fatal("net balance missing")
	}
	// mean(in) - mean(out): (10+20+14)/3 - (5+5+6)/3
	wantNet := 44.0/3 - 16.0/3
	if diff := *agg.NetBalance - wantNet; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("net balance %v, want %v", *agg.NetBalance, wantNet)
	}

	if len(res.Evolution.Historical) != 2 || len(res.Evolution.Forecast) != 1 {
		t.Errorf("evolution split %d/%d, want 2/1", len(res.Evolution.Historical), len(res.Evolution.Forecast))
	}
	if g.Last() != res {
		t.Error("Last() does not return the run result")
	}
}

func TestGeneratorListingFailureIsFatal(t *testing.T) {
	g, _ := testGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	if _, err := g.Run(context.Background()); err == nil {
		t.Fatal("expected error when listings are unavailable")
	}
}

func TestGeneratorEmptyZoneSkipped(t *testing.T) {
	mux := apiMux()

	// A second zone with no data anywhere must not produce charts.
	g, dir := testGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/metamodelos/zonas":
			w.Write([]byte(`["Zona 1","Zona Vacia"]`))
		case "/api/v1/metamodelos/metamodelo-mensual-head-absoluto-historico",
			"/api/v1/metamodelos/metamodelo-mensual-head-absoluto-modelacion",
			"/api/v1/metamodelos/metamodelo-mensual-head-delta-historico",
			"/api/v1/metamodelos/metamodelo-mensual-head-delta-modelacion":
			if r.URL.Query().Get("zona") == "Zona Vacia" {
				w.Write([]byte(`{"data":[]}`))
				return
			}
			mux.ServeHTTP(w, r)
		default:
			mux.ServeHTTP(w, r)
		}
	}))

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Zona_Vacia_head_absolute.png")); err == nil {
		t.Error("empty zone produced a chart")
	}
	if res.Skipped == 0 {
		t.Error("expected skips for the empty zone")
	}
}

func TestClassifyPointsFallback(t *testing.T) {
	histories := map[string][]models.Observation{
		"Pozo_3": {
			{Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Value: models.Float64(10)},
			{Timestamp: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), Value: models.Float64(20)},
			{Timestamp: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), Value: models.Float64(30)},
			{Timestamp: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), Value: models.Float64(5)},
		},
	}
	infos := map[string]models.WellInfo{
		"Pozo_3": {MonitoringPoint: "Pozo_3", Latitude: -27.37, Longitude: -69.5},
	}
	// First point matches Pozo_3 and its latest value is the lowest; second
	// has no matching well; third is already classified.
	points := []models.WellPoint{
		{Lon: -69.5, Lat: -27.37},
		{Lon: -70.0, Lat: -28.0},
		{Lon: -69.5, Lat: -27.37, Class: models.PercentileHigh},
	}

	classifyPoints(points, histories, infos)

	if points[0].Class != models.PercentileLow {
		t.Errorf("class %q, want %q", points[0].Class, models.PercentileLow)
	}
	if points[1].Class != "" {
		t.Errorf("unmatched point classified as %q", points[1].Class)
	}
	if points[2].Class != models.PercentileHigh {
		t.Errorf("existing class overwritten: %q", points[2].Class)
	}
}

func TestGeneratorRefusesConcurrentRuns(t *testing.T) {
	g, _ := testGenerator(t, apiMux())
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	if _, err := g.Run(context.Background()); !errors.Is(err, ErrGenerationRunning) {
		t.Fatalf("err = %v, want ErrGenerationRunning", err)
	}
	if err := g.Trigger(context.Background()); !errors.Is(err, ErrGenerationRunning) {
		t.Fatalf("trigger err = %v, want ErrGenerationRunning", err)
	}
}
