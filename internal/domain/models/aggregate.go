package models

import "time"

// ZoneAggregate holds per-field means for one zone over the concatenation of
// historical and forecast-tail observations. Fields with no observations are
// simply absent from Means. NetBalance is set only when both step_in and
// step_out appeared at least once.
type ZoneAggregate struct {
	Zone       string                `json:"zone"`
	Count      int                   `json:"count"`
	Means      map[FieldName]float64 `json:"means"`
	NetBalance *float64              `json:"net_balance,omitempty"`
}

// BalancePoint is one timestamp of the consolidated system balance.
type BalancePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Net       float64   `json:"net"`
}

// SystemEvolution is the system-wide net balance over time: per-timestamp sums
// of step_in - step_out across zones, split by source, plus the earliest
// transition across all zones.
type SystemEvolution struct {
	Historical []BalancePoint `json:"historical"`
	Forecast   []BalancePoint `json:"forecast"`
	Transition *time.Time     `json:"transition,omitempty"`
}
