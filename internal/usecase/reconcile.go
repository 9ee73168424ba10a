package usecase

import (
	"time"

	"HydroPull/internal/domain/models"
)

// Reconcile merges a historical (MODFLOW) series with a forecast (metamodel)
// series for the same logical identifier.
//
// Both inputs are stable-sorted ascending by timestamp. The transition is the
// last historical timestamp; forecast observations at or before it are
// discarded so the handoff point is never counted twice. With no historical
// data there is no transition and the whole forecast is kept.
func Reconcile(historical, forecast []models.Observation) models.ReconciledSeries {
	hist := models.SortObservations(historical)
	fc := models.SortObservations(forecast)

	var transition *time.Time
	if len(hist) > 0 {
		t := hist[len(hist)-1].Timestamp
		transition = &t
	}

	tail := fc
	if transition != nil {
		tail = make([]models.Observation, 0, len(fc))
		for _, o := range fc {
			if o.Timestamp.After(*transition) {
				tail = append(tail, o)
			}
		}
	}

	return models.ReconciledSeries{
		Historical:   hist,
		ForecastTail: tail,
		Transition:   transition,
	}
}
