package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"HydroPull/internal/domain/models"
)

// utmZone is the UTM grid zone the monitoring network's layers are published
// in (EPSG:32719, southern hemisphere).
const utmZone = 19

// ParseWellPoints decodes the well-level GeoJSON layer into map points.
// Features without a point geometry are skipped; the percentile class is
// taken from the feature properties when present.
func ParseWellPoints(data []byte) ([]models.WellPoint, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode well layer: %w", err)
	}

	points := make([]models.WellPoint, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		wp := models.WellPoint{Lon: pt.Lon(), Lat: pt.Lat()}
		if cls, ok := f.Properties["clasificacion_percentil"].(string); ok {
			wp.Class = models.PercentileClass(cls)
		}
		points = append(points, wp)
	}
	return points, nil
}

// ParseZoneOutlines decodes the aquifer-zone GeoJSON layer into geographic
// rings. Zone geometries arrive as UTM 19S polygons; each exterior ring is
// reprojected to lon/lat. MultiPolygons contribute one outline per part,
// all carrying the zone name.
func ParseZoneOutlines(data []byte) ([]models.ZoneOutline, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode zone layer: %w", err)
	}

	var outlines []models.ZoneOutline
	for _, f := range fc.Features {
		name, _ := f.Properties["zona"].(string)
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if o, ok := outlineFromRing(name, g); ok {
				outlines = append(outlines, o)
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				if o, ok := outlineFromRing(name, poly); ok {
					outlines = append(outlines, o)
				}
			}
		}
	}
	return outlines, nil
}

func outlineFromRing(name string, poly orb.Polygon) (models.ZoneOutline, bool) {
	if len(poly) == 0 || len(poly[0]) == 0 {
		return models.ZoneOutline{}, false
	}
	ring := poly[0]
	o := models.ZoneOutline{
		Name: name,
		Lons: make([]float64, len(ring)),
		Lats: make([]float64, len(ring)),
	}
	for i, p := range ring {
		lon, lat := UTMToGeographic(p[0], p[1], utmZone, true)
		o.Lons[i] = lon
		o.Lats[i] = lat
	}
	return o, true
}
