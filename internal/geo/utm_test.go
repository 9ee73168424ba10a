package geo

import (
	"math"
	"testing"
)

func TestUTMToGeographicOrigin(t *testing.T) {
	// Equator on the central meridian of zone 19.
	lon, lat := UTMToGeographic(500000, 10000000, 19, true)
	if math.Abs(lat) > 1e-9 {
		t.Fatalf("lat %v, want 0", lat)
	}
	if math.Abs(lon+69) > 1e-9 {
		t.Fatalf("lon %v, want -69", lon)
	}
}

func TestUTMToGeographicAtacama(t *testing.T) {
	lon, lat := UTMToGeographic(450000, 6972000, 19, true)
	if math.Abs(lat-(-27.3743455)) > 1e-4 {
		t.Fatalf("lat %v", lat)
	}
	if math.Abs(lon-(-69.5056364)) > 1e-4 {
		t.Fatalf("lon %v", lon)
	}
}

func TestUTMRoundTrip(t *testing.T) {
	points := [][2]float64{
		{450000, 6972000},
		{380000, 6950000},
		{520000, 7100000},
	}
	for _, p := range points {
		lon, lat := UTMToGeographic(p[0], p[1], 19, true)
		e, n := GeographicToUTM(lon, lat, 19, true)
		if math.Abs(e-p[0]) > 0.01 {
			t.Errorf("easting %v -> %v", p[0], e)
		}
		if math.Abs(n-p[1]) > 0.01 {
			t.Errorf("northing %v -> %v", p[1], n)
		}
	}
}
