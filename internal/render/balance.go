package render

import (
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"HydroPull/internal/domain/models"
	"HydroPull/pkg/util"
)

func componentColor(field models.FieldName) drawing.Color {
	switch field {
	case models.FieldStepIn:
		return colorInflow
	case models.FieldStepOut:
		return colorOutflow
	default:
		return colorRate
	}
}

func componentLabel(field models.FieldName) string {
	switch field {
	case models.FieldStepIn:
		return "Inflow"
	case models.FieldStepOut:
		return "Outflow"
	default:
		return "Rate"
	}
}

// BalanceComponentBars draws one balance component of a zone as monthly
// bars. Forecast months are drawn with a translucent fill so the boundary
// stays visible.
func (r *Renderer) BalanceComponentBars(zone string, field models.FieldName, rs models.ReconciledSeries) ([]byte, error) {
	col := componentColor(field)
	var bars []chart.Value
	add := func(obs []models.Observation, fill drawing.Color) {
		for _, o := range obs {
			v, ok := o.Field(field)
			if !ok {
				continue
			}
			bars = append(bars, chart.Value{
				Label: util.FormatMonth(o.Timestamp),
				Value: v,
				Style: chart.Style{FillColor: fill, StrokeColor: col, StrokeWidth: 1},
			})
		}
	}
	add(rs.Historical, col)
	add(rs.ForecastTail, col.WithAlpha(110))
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	ch := chart.BarChart{
		Title:    fmt.Sprintf("%s - %s", zone, componentLabel(field)),
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth(r.Width, len(bars)),
		YAxis:    chart.YAxis{Name: "Volume (m3/month)"},
		Bars:     bars,
	}
	return renderBars(ch)
}

// BalanceCombined overlays the three balance components of one zone as
// lines over the full reconciled span.
func (r *Renderer) BalanceCombined(zone string, rs models.ReconciledSeries) ([]byte, error) {
	all := rs.All()
	var series []chart.Series
	var ranges [][]float64
	for _, field := range []models.FieldName{models.FieldStepIn, models.FieldStepOut, models.FieldStepRate} {
		xs, ys := fieldSeries(all, field)
		if len(xs) == 0 {
			continue
		}
		series = append(series, timeSeries(componentLabel(field), xs, ys, lineStyle(componentColor(field))))
		ranges = append(ranges, ys)
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}
	if rs.Transition != nil {
		if lo, hi, ok := valueRange(ranges...); ok {
			series = append(series, transitionMarker(*rs.Transition, lo, hi))
		}
	}

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s - Balance Components", zone),
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: "Volume (m3/month)"},
		Series: series,
	}
	return renderChart(ch)
}

// ZonesComponentsComparison shows the mean of each balance component side
// by side for every zone.
func (r *Renderer) ZonesComponentsComparison(aggs []models.ZoneAggregate) ([]byte, error) {
	var bars []chart.Value
	for _, agg := range aggs {
		for _, field := range []models.FieldName{models.FieldStepIn, models.FieldStepOut, models.FieldStepRate} {
			mean, ok := agg.Means[field]
			if !ok {
				continue
			}
			label := ""
			if field == models.FieldStepOut {
				label = agg.Zone
			}
			bars = append(bars, chart.Value{
				Label: label,
				Value: mean,
				Style: chart.Style{FillColor: componentColor(field), StrokeColor: componentColor(field)},
			})
		}
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	ch := chart.BarChart{
		Title:    "Mean Balance Components by Zone",
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth(r.Width, len(bars)),
		YAxis:    chart.YAxis{Name: "Volume (m3/month)"},
		Bars:     bars,
	}
	return renderBars(ch)
}

// ZonesNetBalance shows each zone's mean net balance, green for recharge
// and red for depletion.
func (r *Renderer) ZonesNetBalance(aggs []models.ZoneAggregate) ([]byte, error) {
	var bars []chart.Value
	for _, agg := range aggs {
		if agg.NetBalance == nil {
			continue
		}
		col := colorPositive
		if *agg.NetBalance < 0 {
			col = colorNegative
		}
		bars = append(bars, chart.Value{
			Label: agg.Zone,
			Value: *agg.NetBalance,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	ch := chart.BarChart{
		Title:    "Mean Net Balance by Zone",
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: barWidth(r.Width, len(bars)),
		YAxis:    chart.YAxis{Name: "Net volume (m3/month)"},
		Bars:     bars,
	}
	return renderBars(ch)
}

// SystemEvolutionChart plots the basin-wide net balance through time, with
// the forecast portion dashed and a zero reference.
func (r *Renderer) SystemEvolutionChart(evo models.SystemEvolution) ([]byte, error) {
	hx, hy := balanceSeries(evo.Historical)
	fx, fy := balanceSeries(evo.Forecast)
	if len(hx) == 0 && len(fx) == 0 {
		return nil, ErrNoData
	}

	var series []chart.Series
	if len(hx) > 0 {
		series = append(series, timeSeries("Historical", hx, hy, lineStyle(colorInflow)))
	}
	if len(fx) > 0 {
		series = append(series, timeSeries("Forecast", fx, fy, dashedStyle(colorEvolution)))
	}
	if from, to, ok := timeSpan(hx, fx); ok {
		series = append(series, horizontalLine("Equilibrium", 0, from, to, chart.Style{StrokeColor: colorReference, StrokeWidth: 1}))
	}
	if evo.Transition != nil {
		if lo, hi, ok := valueRange(hy, fy, []float64{0}); ok {
			series = append(series, transitionMarker(*evo.Transition, lo, hi))
		}
	}

	ch := chart.Chart{
		Title:  "System Net Balance Evolution",
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: "Net volume (m3/month)"},
		Series: series,
	}
	return renderChart(ch)
}

func balanceSeries(points []models.BalancePoint) ([]time.Time, []float64) {
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Timestamp
		ys[i] = p.Net
	}
	return xs, ys
}

// barWidth spreads the bars across roughly three quarters of the canvas.
func barWidth(width, count int) int {
	if count == 0 {
		return 10
	}
	w := (width * 3 / 4) / count
	if w < 4 {
		w = 4
	}
	if w > 60 {
		w = 60
	}
	return w
}
