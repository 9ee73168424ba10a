package render

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"HydroPull/internal/domain/models"
)

// HeadChart plots a zone's hydraulic head: the historical run in gray, the
// forecast tail in blue, and a dashed marker at the transition.
func (r *Renderer) HeadChart(zone, title string, rs models.ReconciledSeries) ([]byte, error) {
	hx, hy := fieldSeries(rs.Historical, models.FieldValue)
	fx, fy := fieldSeries(rs.ForecastTail, models.FieldValue)
	if len(hx) == 0 && len(fx) == 0 {
		return nil, ErrNoData
	}

	var series []chart.Series
	if len(hx) > 0 {
		series = append(series, timeSeries("Historical", hx, hy, lineStyle(colorHistorical)))
	}
	if len(fx) > 0 {
		series = append(series, timeSeries("Forecast", fx, fy, lineStyle(colorForecast)))
	}
	if rs.Transition != nil {
		lo, hi, ok := valueRange(hy, fy)
		if ok {
			series = append(series, transitionMarker(*rs.Transition, lo, hi))
		}
	}

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s - %s", zone, title),
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: "Head (m)"},
		Series: series,
	}
	return renderChart(ch)
}
