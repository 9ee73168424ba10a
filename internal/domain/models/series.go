package models

import (
	"sort"
	"time"
)

// SeriesKind distinguishes the two sources a logical series can come from.
type SeriesKind string

const (
	// KindHistorical marks observations produced by the MODFLOW groundwater model.
	KindHistorical SeriesKind = "historical"
	// KindForecast marks observations produced by the metamodel surrogate.
	KindForecast SeriesKind = "forecast"
)

// FieldName identifies a numeric field an observation may carry.
type FieldName string

const (
	FieldValue    FieldName = "value"
	FieldStepIn   FieldName = "value_step_in"
	FieldStepOut  FieldName = "value_step_out"
	FieldStepRate FieldName = "value_step_rate"
)

// KnownFields lists every field the API emits, in reporting order.
var KnownFields = []FieldName{FieldValue, FieldStepIn, FieldStepOut, FieldStepRate}

// Observation is a single dated record. Every numeric field is optional;
// a record is usable as long as at least one field parsed at the boundary.
type Observation struct {
	Timestamp time.Time
	Value     *float64
	StepIn    *float64
	StepOut   *float64
	StepRate  *float64
}

// Field returns the named field and whether it is present.
func (o Observation) Field(name FieldName) (float64, bool) {
	var p *float64
	switch name {
	case FieldValue:
		p = o.Value
	case FieldStepIn:
		p = o.StepIn
	case FieldStepOut:
		p = o.StepOut
	case FieldStepRate:
		p = o.StepRate
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Empty reports whether the observation carries no numeric field at all.
func (o Observation) Empty() bool {
	return o.Value == nil && o.StepIn == nil && o.StepOut == nil && o.StepRate == nil
}

// Series is an ordered sequence of observations for one logical identifier.
type Series struct {
	ID   string
	Kind SeriesKind
	Obs  []Observation
}

// SortObservations stable-sorts observations ascending by timestamp.
// Ties keep their original order.
func SortObservations(obs []Observation) []Observation {
	out := make([]Observation, len(obs))
	copy(out, obs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ReconciledSeries pairs a historical series with the forecast points that
// extend past it. Historical is kept intact; ForecastTail holds only forecast
// observations strictly after the transition. Transition is nil when there is
// no historical data.
type ReconciledSeries struct {
	ID           string
	Historical   []Observation
	ForecastTail []Observation
	Transition   *time.Time
}

// Empty reports whether the reconciled series holds no observations at all.
func (r ReconciledSeries) Empty() bool {
	return len(r.Historical) == 0 && len(r.ForecastTail) == 0
}

// All returns historical followed by the forecast tail. The result is a fresh
// slice; the receiver is never mutated.
func (r ReconciledSeries) All() []Observation {
	out := make([]Observation, 0, len(r.Historical)+len(r.ForecastTail))
	out = append(out, r.Historical...)
	out = append(out, r.ForecastTail...)
	return out
}

// Float64 is a convenience for building optional fields in literals and tests.
func Float64(v float64) *float64 { return &v }
