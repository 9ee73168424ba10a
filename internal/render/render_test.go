package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"HydroPull/internal/domain/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func month(i int) time.Time {
	return time.Date(2020, time.Month(i), 1, 0, 0, 0, 0, time.UTC)
}

func obs(i int, value, in, out, rate float64) models.Observation {
	return models.Observation{
		Timestamp: month(i),
		Value:     models.Float64(value),
		StepIn:    models.Float64(in),
		StepOut:   models.Float64(out),
		StepRate:  models.Float64(rate),
	}
}

func sampleReconciled() models.ReconciledSeries {
	transition := month(3)
	return models.ReconciledSeries{
		ID:         "Zona 1",
		Historical: []models.Observation{obs(1, 10, 5, 3, 2), obs(2, 11, 6, 4, 2), obs(3, 12, 7, 5, 2)},
		ForecastTail: []models.Observation{
			obs(4, 13, 8, 6, 2), obs(5, 14, 9, 7, 2),
		},
		Transition: &transition,
	}
}

func checkPNG(t *testing.T, png []byte, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestHeadChart(t *testing.T) {
	r := New(800, 400)
	png, err := r.HeadChart("Zona 1", "Absolute Head", sampleReconciled())
	checkPNG(t, png, err)
}

func TestHeadChartNoData(t *testing.T) {
	r := New(800, 400)
	if _, err := r.HeadChart("Zona 1", "Absolute Head", models.ReconciledSeries{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestBalanceCharts(t *testing.T) {
	r := New(800, 400)
	rs := sampleReconciled()

	png, err := r.BalanceComponentBars("Zona 1", models.FieldStepIn, rs)
	checkPNG(t, png, err)

	png, err = r.BalanceCombined("Zona 1", rs)
	checkPNG(t, png, err)
}

func TestZoneCharts(t *testing.T) {
	r := New(800, 400)
	net := -2.5
	aggs := []models.ZoneAggregate{
		{
			Zone:  "Zona 1",
			Count: 5,
			Means: map[models.FieldName]float64{
				models.FieldStepIn:   7.0,
				models.FieldStepOut:  5.0,
				models.FieldStepRate: 2.0,
			},
			NetBalance: models.Float64(2.0),
		},
		{
			Zone:       "Zona 2",
			Count:      3,
			Means:      map[models.FieldName]float64{models.FieldStepIn: 1.0, models.FieldStepOut: 3.5, models.FieldStepRate: 0.5},
			NetBalance: &net,
		},
	}

	png, err := r.ZonesComponentsComparison(aggs)
	checkPNG(t, png, err)

	png, err = r.ZonesNetBalance(aggs)
	checkPNG(t, png, err)
}

func TestSystemEvolutionChart(t *testing.T) {
	r := New(800, 400)
	transition := month(3)
	evo := models.SystemEvolution{
		Historical: []models.BalancePoint{
			{Timestamp: month(1), Net: 2}, {Timestamp: month(2), Net: -1}, {Timestamp: month(3), Net: 0.5},
		},
		Forecast: []models.BalancePoint{
			{Timestamp: month(4), Net: -0.5}, {Timestamp: month(5), Net: 1.5},
		},
		Transition: &transition,
	}
	png, err := r.SystemEvolutionChart(evo)
	checkPNG(t, png, err)
}

func TestWellCharts(t *testing.T) {
	r := New(800, 400)
	history := []models.Observation{obs(1, 25.0, 0, 0, 0), obs(2, 24.3, 0, 0, 0), obs(3, 26.1, 0, 0, 0)}

	png, err := r.WellHistory("Pozo_3", history)
	checkPNG(t, png, err)

	png, err = r.WellForecast("Pozo_3", history)
	checkPNG(t, png, err)

	data := map[string][]models.Observation{
		"Pozo_3":  history,
		"Pozo_16": {obs(1, 12.0, 0, 0, 0), obs(2, 12.4, 0, 0, 0)},
	}
	png, err = r.WellsComparison("Well Levels", "Depth to water (m)", []string{"Pozo_16", "Pozo_3"}, data)
	checkPNG(t, png, err)
}

func TestWellsComparisonNoData(t *testing.T) {
	r := New(800, 400)
	if _, err := r.WellsComparison("Well Levels", "m", nil, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestPercentileMap(t *testing.T) {
	r := New(800, 400)
	points := []models.WellPoint{
		{Lon: -69.5, Lat: -27.3, Class: models.PercentileLow},
		{Lon: -69.6, Lat: -27.4, Class: models.PercentileHigh},
		{Lon: -69.7, Lat: -27.5},
	}
	outlines := []models.ZoneOutline{
		{Name: "Zona 1", Lons: []float64{-69.8, -69.4, -69.4, -69.8}, Lats: []float64{-27.6, -27.6, -27.2, -27.2}},
	}
	png, err := r.PercentileMap(points, outlines)
	checkPNG(t, png, err)
}

func TestRenderDeterministic(t *testing.T) {
	r := New(800, 400)
	rs := sampleReconciled()
	a, err := r.BalanceCombined("Zona 1", rs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.BalanceCombined("Zona 1", rs)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("repeated renders differ")
	}
}
