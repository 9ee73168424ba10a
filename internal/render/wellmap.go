package render

import (
	"github.com/wcharczuk/go-chart/v2"

	"HydroPull/internal/domain/models"
)

var classOrder = []models.PercentileClass{
	models.PercentileLow,
	models.PercentileMidLow,
	models.PercentileMidHigh,
	models.PercentileHigh,
}

// PercentileMap draws monitoring wells over the aquifer-zone outlines in
// geographic coordinates, one scatter series per percentile class.
func (r *Renderer) PercentileMap(points []models.WellPoint, outlines []models.ZoneOutline) ([]byte, error) {
	if len(points) == 0 && len(outlines) == 0 {
		return nil, ErrNoData
	}

	var series []chart.Series
	for _, o := range outlines {
		if len(o.Lons) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			XValues: o.Lons,
			YValues: o.Lats,
			Style:   chart.Style{StrokeColor: colorReference, StrokeWidth: 1},
		})
	}

	byClass := make(map[models.PercentileClass][]models.WellPoint)
	var unclassified []models.WellPoint
	for _, p := range points {
		if p.Class == "" {
			unclassified = append(unclassified, p)
			continue
		}
		byClass[p.Class] = append(byClass[p.Class], p)
	}
	for _, cls := range classOrder {
		pts := byClass[cls]
		if len(pts) == 0 {
			continue
		}
		series = append(series, scatterSeries(string(cls), pts, dotStyle(classColors[cls])))
	}
	if len(unclassified) > 0 {
		series = append(series, scatterSeries("Unclassified", unclassified, dotStyle(colorHistorical)))
	}

	ch := chart.Chart{
		Title:  "Wells by Level Percentile",
		Width:  r.Width,
		Height: r.Height,
		XAxis:  chart.XAxis{Name: "Longitude"},
		YAxis:  chart.YAxis{Name: "Latitude"},
		Series: series,
	}
	return renderChart(ch)
}

func scatterSeries(name string, pts []models.WellPoint, style chart.Style) chart.ContinuousSeries {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Lon
		ys[i] = p.Lat
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}
