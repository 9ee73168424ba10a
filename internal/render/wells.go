package render

import (
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"HydroPull/internal/domain/models"
)

// WellHistory plots a well's measured level with mean, min and max
// reference lines from its own record.
func (r *Renderer) WellHistory(well string, obs []models.Observation) ([]byte, error) {
	xs, ys := fieldSeries(obs, models.FieldValue)
	if len(xs) == 0 {
		return nil, ErrNoData
	}

	series := []chart.Series{
		timeSeries("Level", xs, ys, lineStyle(colorForecast)),
	}
	stats := models.FieldStats(obs, models.FieldValue)
	from, to, _ := timeSpan(xs)
	series = append(series,
		horizontalLine(fmt.Sprintf("Mean %.2f", stats.Mean), stats.Mean, from, to, dashedStyle(colorReference)),
		horizontalLine(fmt.Sprintf("Min %.2f", stats.Min), stats.Min, from, to, dashedStyle(colorNegative)),
		horizontalLine(fmt.Sprintf("Max %.2f", stats.Max), stats.Max, from, to, dashedStyle(colorPositive)),
	)

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s - Level History", well),
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: "Depth to water (m)"},
		Series: series,
	}
	return renderChart(ch)
}

// WellForecast plots a well's forecast deltas with the zero line and the
// forecast mean for orientation.
func (r *Renderer) WellForecast(well string, obs []models.Observation) ([]byte, error) {
	xs, ys := fieldSeries(obs, models.FieldValue)
	if len(xs) == 0 {
		return nil, ErrNoData
	}

	from, to, _ := timeSpan(xs)
	stats := models.FieldStats(obs, models.FieldValue)
	series := []chart.Series{
		timeSeries("Forecast", xs, ys, lineStyle(colorForecast)),
		horizontalLine("Zero", 0, from, to, chart.Style{StrokeColor: colorReference, StrokeWidth: 1}),
		horizontalLine(fmt.Sprintf("Mean %.2f", stats.Mean), stats.Mean, from, to, dashedStyle(colorRate)),
	}
	series = append(series, extremeMarkers(xs, ys, stats)...)

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s - Level Forecast", well),
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: "Level change (m)"},
		Series: series,
	}
	return renderChart(ch)
}

// extremeMarkers places a dot on the lowest and highest forecast values.
func extremeMarkers(xs []time.Time, ys []float64, stats models.SeriesStats) []chart.Series {
	var markers []chart.Series
	for i, v := range ys {
		if v == stats.Min {
			markers = append(markers, chart.TimeSeries{
				Name:    fmt.Sprintf("Min %.2f", v),
				XValues: []time.Time{xs[i]},
				YValues: []float64{v},
				Style:   dotStyle(colorNegative),
			})
			break
		}
	}
	for i, v := range ys {
		if v == stats.Max {
			markers = append(markers, chart.TimeSeries{
				Name:    fmt.Sprintf("Max %.2f", v),
				XValues: []time.Time{xs[i]},
				YValues: []float64{v},
				Style:   dotStyle(colorPositive),
			})
			break
		}
	}
	return markers
}

// WellsComparison overlays several wells' series on one chart. The caller
// passes the names in the order the palette should cycle through so
// repeated renders stay identical.
func (r *Renderer) WellsComparison(title, yAxis string, names []string, data map[string][]models.Observation) ([]byte, error) {
	var series []chart.Series
	i := 0
	for _, name := range names {
		xs, ys := fieldSeries(data[name], models.FieldValue)
		if len(xs) == 0 {
			continue
		}
		col := wellPalette[i%len(wellPalette)]
		series = append(series, timeSeries(name, xs, ys, lineStyle(col)))
		i++
	}
	if len(series) == 0 {
		return nil, ErrNoData
	}

	ch := chart.Chart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		YAxis:  chart.YAxis{Name: yAxis},
		Series: series,
	}
	return renderChart(ch)
}
