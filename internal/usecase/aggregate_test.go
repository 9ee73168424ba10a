package usecase

import (
	"math"
	"testing"

	"HydroPull/internal/domain/models"
)

func TestAggregateZonesNetBalance(t *testing.T) {
	// step_in = [10, 20], step_out = [5, 5] -> 15 - 5 = 10
	zones := map[string]models.ReconciledSeries{
		"nucleo": Reconcile([]models.Observation{
			balanceAt("2020-01-01", 10, 5),
			balanceAt("2020-02-01", 20, 5),
		}, nil),
	}

	aggs := AggregateZones(zones)

	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	agg := aggs[0]
	if agg.NetBalance == nil {
		t.Fatalf("expected net balance")
	}
	if math.Abs(*agg.NetBalance-10) > 1e-9 {
		t.Fatalf("net balance %v, want 10", *agg.NetBalance)
	}
	if math.Abs(agg.Means[models.FieldStepIn]-15) > 1e-9 {
		t.Fatalf("step_in mean %v, want 15", agg.Means[models.FieldStepIn])
	}
}

func TestAggregateZonesSpansForecastTail(t *testing.T) {
	hist := []models.Observation{balanceAt("2020-01-01", 100, 40)}
	fc := []models.Observation{
		balanceAt("2020-01-01", 999, 999), // at transition: dropped
		balanceAt("2020-02-01", 50, 10),
	}
	zones := map[string]models.ReconciledSeries{
		"norte": Reconcile(hist, fc),
	}

	aggs := AggregateZones(zones)

	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate")
	}
	// mean over [100, 50] and [40, 10]; the boundary point must not pollute it
	if got := aggs[0].Means[models.FieldStepIn]; math.Abs(got-75) > 1e-9 {
		t.Fatalf("step_in mean %v, want 75", got)
	}
	if got := *aggs[0].NetBalance; math.Abs(got-50) > 1e-9 {
		t.Fatalf("net balance %v, want 50", got)
	}
}

func TestAggregateZonesExcludesEmpty(t *testing.T) {
	zones := map[string]models.ReconciledSeries{
		"vacia": Reconcile(nil, nil),
		"datos": Reconcile([]models.Observation{obsAt("2020-01-01", 7)}, nil),
	}

	aggs := AggregateZones(zones)

	if len(aggs) != 1 {
		t.Fatalf("empty zone must be excluded, got %d aggregates", len(aggs))
	}
	if aggs[0].Zone != "datos" {
		t.Fatalf("unexpected zone %s", aggs[0].Zone)
	}
}

func TestAggregateZonesMissingFieldAbsentNotZero(t *testing.T) {
	zones := map[string]models.ReconciledSeries{
		"cabecera": Reconcile([]models.Observation{obsAt("2020-01-01", 12.5)}, nil),
	}

	aggs := AggregateZones(zones)

	if _, ok := aggs[0].Means[models.FieldStepIn]; ok {
		t.Fatalf("step_in should be absent, not zero")
	}
	if aggs[0].NetBalance != nil {
		t.Fatalf("net balance should be unset without both components")
	}
}

func TestAggregateZonesDeterministicOrder(t *testing.T) {
	zones := map[string]models.ReconciledSeries{
		"c": Reconcile([]models.Observation{obsAt("2020-01-01", 1)}, nil),
		"a": Reconcile([]models.Observation{obsAt("2020-01-01", 1)}, nil),
		"b": Reconcile([]models.Observation{obsAt("2020-01-01", 1)}, nil),
	}

	aggs := AggregateZones(zones)

	want := []string{"a", "b", "c"}
	for i, w := range want {
		if aggs[i].Zone != w {
			t.Fatalf("order %v, want %v at %d", aggs[i].Zone, w, i)
		}
	}
}

func TestSystemEvolutionSumsAcrossZones(t *testing.T) {
	zones := map[string]models.ReconciledSeries{
		"norte": Reconcile([]models.Observation{
			balanceAt("2020-01-01", 100, 40),
			balanceAt("2020-02-01", 110, 50),
		}, []models.Observation{
			balanceAt("2020-03-01", 120, 60),
		}),
		"sur": Reconcile([]models.Observation{
			balanceAt("2020-01-01", 10, 5),
		}, []models.Observation{
			balanceAt("2020-02-01", 20, 10),
		}),
	}

	evo := SystemEvolution(zones)

	// historical: 2020-01 = (100-40)+(10-5) = 65, 2020-02 = 60
	if len(evo.Historical) != 2 {
		t.Fatalf("historical length %d", len(evo.Historical))
	}
	if math.Abs(evo.Historical[0].Net-65) > 1e-9 {
		t.Fatalf("2020-01 net %v, want 65", evo.Historical[0].Net)
	}
	if math.Abs(evo.Historical[1].Net-60) > 1e-9 {
		t.Fatalf("2020-02 net %v, want 60", evo.Historical[1].Net)
	}

	// forecast: sur's 2020-02 point (its transition is 2020-01) plus norte's 2020-03
	if len(evo.Forecast) != 2 {
		t.Fatalf("forecast length %d", len(evo.Forecast))
	}
	if !evo.Forecast[0].Timestamp.Before(evo.Forecast[1].Timestamp) {
		t.Fatalf("forecast not sorted")
	}

	// earliest transition across zones is sur's 2020-01-01
	if evo.Transition == nil || !evo.Transition.Equal(mustDate("2020-01-01")) {
		t.Fatalf("transition %v", evo.Transition)
	}
}

func TestSystemEvolutionSkipsPartialRecords(t *testing.T) {
	zones := map[string]models.ReconciledSeries{
		"norte": Reconcile([]models.Observation{
			{Timestamp: mustDate("2020-01-01"), StepIn: models.Float64(100)}, // no step_out
			balanceAt("2020-02-01", 50, 20),
		}, nil),
	}

	evo := SystemEvolution(zones)

	if len(evo.Historical) != 1 {
		t.Fatalf("expected 1 point, got %d", len(evo.Historical))
	}
	if math.Abs(evo.Historical[0].Net-30) > 1e-9 {
		t.Fatalf("net %v, want 30", evo.Historical[0].Net)
	}
}
