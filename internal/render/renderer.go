package render

import (
	"bytes"
	"errors"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"HydroPull/internal/domain/models"
)

// ErrNoData means a chart had nothing to draw and no image was produced.
var ErrNoData = errors.New("render: no data")

var (
	colorHistorical = drawing.ColorFromHex("808080")
	colorForecast   = drawing.ColorFromHex("1E90FF")
	colorInflow     = drawing.ColorFromHex("2E86AB")
	colorOutflow    = drawing.ColorFromHex("DD1C1A")
	colorRate       = drawing.ColorFromHex("06A77D")
	colorEvolution  = drawing.ColorFromHex("F24236")
	colorPositive   = drawing.ColorFromHex("2A9D38")
	colorNegative   = drawing.ColorFromHex("C8102E")
	colorReference  = drawing.ColorFromHex("6C757D")

	// wellPalette cycles across multi-well comparison series.
	wellPalette = []drawing.Color{
		drawing.ColorFromHex("1F77B4"),
		drawing.ColorFromHex("FF7F0E"),
		drawing.ColorFromHex("2CA02C"),
		drawing.ColorFromHex("D62728"),
		drawing.ColorFromHex("9467BD"),
		drawing.ColorFromHex("8C564B"),
		drawing.ColorFromHex("E377C2"),
		drawing.ColorFromHex("17BECF"),
	}

	classColors = map[models.PercentileClass]drawing.Color{
		models.PercentileLow:     drawing.ColorFromHex("C8102E"),
		models.PercentileMidLow:  drawing.ColorFromHex("FF7F0E"),
		models.PercentileMidHigh: drawing.ColorFromHex("2CA02C"),
		models.PercentileHigh:    drawing.ColorFromHex("1F77B4"),
	}
)

// Renderer draws the chart inventory as PNG images at a fixed canvas size.
type Renderer struct {
	Width  int
	Height int
}

func New(width, height int) *Renderer {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 600
	}
	return &Renderer{Width: width, Height: height}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 2}
}

func dashedStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 2, StrokeDashArray: []float64{5, 5}}
}

func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeWidth: 0, DotWidth: 5, DotColor: col}
}

// fieldSeries extracts the timestamps and values of one field, skipping
// observations where the field is absent.
func fieldSeries(obs []models.Observation, field models.FieldName) ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for _, o := range obs {
		if v, ok := o.Field(field); ok {
			xs = append(xs, o.Timestamp)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// padSingle duplicates a one-point series so the chart library can stroke it.
func padSingle(xs []time.Time, ys []float64) ([]time.Time, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []time.Time{xs[0], xs[0].Add(24 * time.Hour)}, []float64{ys[0], ys[0]}
}

func timeSeries(name string, xs []time.Time, ys []float64, style chart.Style) chart.TimeSeries {
	xs, ys = padSingle(xs, ys)
	return chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}

// transitionMarker is a dashed vertical segment at the historical/forecast
// boundary, spanning the value range of the plotted series.
func transitionMarker(at time.Time, yMin, yMax float64) chart.TimeSeries {
	if yMin == yMax {
		yMin, yMax = yMin-1, yMax+1
	}
	return chart.TimeSeries{
		Name:    "Transition",
		XValues: []time.Time{at, at},
		YValues: []float64{yMin, yMax},
		Style:   chart.Style{StrokeColor: colorReference, StrokeWidth: 1, StrokeDashArray: []float64{4, 4}},
	}
}

func valueRange(seriesValues ...[]float64) (float64, float64, bool) {
	first := true
	var lo, hi float64
	for _, ys := range seriesValues {
		for _, v := range ys {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi, !first
}

func timeSpan(seriesTimes ...[]time.Time) (time.Time, time.Time, bool) {
	first := true
	var lo, hi time.Time
	for _, xs := range seriesTimes {
		for _, t := range xs {
			if first {
				lo, hi = t, t
				first = false
				continue
			}
			if t.Before(lo) {
				lo = t
			}
			if t.After(hi) {
				hi = t
			}
		}
	}
	return lo, hi, !first
}

func renderChart(ch chart.Chart) ([]byte, error) {
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderBars(ch chart.BarChart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// horizontalLine draws a constant reference value across the chart span.
func horizontalLine(name string, value float64, from, to time.Time, style chart.Style) chart.TimeSeries {
	return chart.TimeSeries{
		Name:    name,
		XValues: []time.Time{from, to},
		YValues: []float64{value, value},
		Style:   style,
	}
}
