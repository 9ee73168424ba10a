package models

import "sort"

// SeriesStats summarizes one field of a series.
type SeriesStats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// FieldStats computes mean/min/max of one field across observations, skipping
// records where the field is absent. Count is zero when no record carried it.
func FieldStats(obs []Observation, field FieldName) SeriesStats {
	var s SeriesStats
	sum := 0.0
	for _, o := range obs {
		v, ok := o.Field(field)
		if !ok {
			continue
		}
		if s.Count == 0 || v < s.Min {
			s.Min = v
		}
		if s.Count == 0 || v > s.Max {
			s.Max = v
		}
		sum += v
		s.Count++
	}
	if s.Count > 0 {
		s.Mean = sum / float64(s.Count)
	}
	return s
}

// ClassifyPercentile buckets the latest value of a well's history against the
// distribution of its own past values. Needs at least two usable values;
// returns ("", false) otherwise.
func ClassifyPercentile(obs []Observation) (PercentileClass, bool) {
	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		if v, ok := o.Field(FieldValue); ok {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return "", false
	}

	latest := values[len(values)-1]
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	switch {
	case latest < quantile(sorted, 0.33):
		return PercentileLow, true
	case latest < quantile(sorted, 0.66):
		return PercentileMidLow, true
	case latest < quantile(sorted, 0.99):
		return PercentileMidHigh, true
	default:
		return PercentileHigh, true
	}
}

// quantile interpolates linearly between closest ranks. Input must be sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
