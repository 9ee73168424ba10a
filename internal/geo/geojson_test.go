package geo

import (
	"math"
	"testing"
)

const wellLayer = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-69.5, -27.37]},
      "properties": {"clasificacion_percentil": "<P33"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-69.6, -27.40]},
      "properties": {}
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[-69.5, -27.37], [-69.6, -27.40]]},
      "properties": {"clasificacion_percentil": ">P99"}
    }
  ]
}`

const zoneLayer = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[450000, 6972000], [460000, 6972000], [460000, 6982000], [450000, 6972000]]]
      },
      "properties": {"zona": "Zona 1"}
    },
    {
      "type": "Feature",
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[380000, 6950000], [390000, 6950000], [380000, 6950000]]],
          [[[520000, 7100000], [530000, 7100000], [520000, 7100000]]]
        ]
      },
      "properties": {"zona": "Zona 2"}
    }
  ]
}`

func TestParseWellPoints(t *testing.T) {
	points, err := ParseWellPoints([]byte(wellLayer))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Class != "<P33" {
		t.Errorf("class %q", points[0].Class)
	}
	if points[0].Lon != -69.5 || points[0].Lat != -27.37 {
		t.Errorf("coords %v %v", points[0].Lon, points[0].Lat)
	}
	if points[1].Class != "" {
		t.Errorf("class %q, want empty", points[1].Class)
	}
}

func TestParseWellPointsBadPayload(t *testing.T) {
	if _, err := ParseWellPoints([]byte("not geojson")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseZoneOutlines(t *testing.T) {
	outlines, err := ParseZoneOutlines([]byte(zoneLayer))
	if err != nil {
		t.Fatal(err)
	}
	if len(outlines) != 3 {
		t.Fatalf("got %d outlines, want 3", len(outlines))
	}
	if outlines[0].Name != "Zona 1" || outlines[1].Name != "Zona 2" || outlines[2].Name != "Zona 2" {
		t.Fatalf("names %q %q %q", outlines[0].Name, outlines[1].Name, outlines[2].Name)
	}
	if len(outlines[0].Lons) != 4 {
		t.Fatalf("got %d vertices, want 4", len(outlines[0].Lons))
	}
	// First vertex reprojects into the Atacama basin.
	if math.Abs(outlines[0].Lats[0]-(-27.3743455)) > 1e-4 {
		t.Errorf("lat %v", outlines[0].Lats[0])
	}
	if math.Abs(outlines[0].Lons[0]-(-69.5056364)) > 1e-4 {
		t.Errorf("lon %v", outlines[0].Lons[0])
	}
}
