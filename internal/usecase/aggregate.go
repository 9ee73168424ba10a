package usecase

import (
	"sort"
	"time"

	"HydroPull/internal/domain/models"
)

// AggregateZones computes per-field means for every zone over the
// concatenation of its historical and forecast-tail observations.
//
// Zones with zero usable observations are excluded from the result entirely;
// they never show up as zero placeholders. Fields no observation carried are
// absent from Means. NetBalance is mean(step_in) - mean(step_out) and is set
// only when both components appeared at least once.
//
// Output is sorted by zone name so chart and file ordering is deterministic.
func AggregateZones(zones map[string]models.ReconciledSeries) []models.ZoneAggregate {
	out := make([]models.ZoneAggregate, 0, len(zones))

	for zone, rec := range zones {
		obs := rec.All()
		usable := 0
		for _, o := range obs {
			if !o.Empty() {
				usable++
			}
		}
		if usable == 0 {
			continue
		}

		agg := models.ZoneAggregate{
			Zone:  zone,
			Count: usable,
			Means: make(map[models.FieldName]float64),
		}
		for _, field := range models.KnownFields {
			if s := models.FieldStats(obs, field); s.Count > 0 {
				agg.Means[field] = s.Mean
			}
		}

		in, hasIn := agg.Means[models.FieldStepIn]
		outMean, hasOut := agg.Means[models.FieldStepOut]
		if hasIn && hasOut {
			agg.NetBalance = models.Float64(in - outMean)
		}

		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out
}

// SystemEvolution consolidates all zones into one net-balance time series.
// For each exact timestamp, step_in - step_out is summed across every zone
// that reported both fields at that instant; historical and forecast-tail
// points are accumulated separately. The transition is the earliest one any
// zone carries.
func SystemEvolution(zones map[string]models.ReconciledSeries) models.SystemEvolution {
	histSums := make(map[time.Time]float64)
	fcSums := make(map[time.Time]float64)

	var transition *time.Time
	for _, rec := range zones {
		if rec.Transition != nil && (transition == nil || rec.Transition.Before(*transition)) {
			t := *rec.Transition
			transition = &t
		}
		accumulateNet(histSums, rec.Historical)
		accumulateNet(fcSums, rec.ForecastTail)
	}

	return models.SystemEvolution{
		Historical: sortedPoints(histSums),
		Forecast:   sortedPoints(fcSums),
		Transition: transition,
	}
}

func accumulateNet(sums map[time.Time]float64, obs []models.Observation) {
	for _, o := range obs {
		in, okIn := o.Field(models.FieldStepIn)
		out, okOut := o.Field(models.FieldStepOut)
		if !okIn || !okOut {
			continue
		}
		sums[o.Timestamp] += in - out
	}
}

func sortedPoints(sums map[time.Time]float64) []models.BalancePoint {
	points := make([]models.BalancePoint, 0, len(sums))
	for ts, net := range sums {
		points = append(points, models.BalancePoint{Timestamp: ts, Net: net})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}
