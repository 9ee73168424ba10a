package geo

import "math"

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563

	utmScale        = 0.9996
	utmFalseEasting = 500000.0
	utmFalseNorth   = 10000000.0
)

// UTMToGeographic converts UTM coordinates to geographic (lon, lat) degrees.
// The aquifer-zone polygons come in EPSG:32719 (zone 19S); wells are already
// geographic, so only the inverse direction is needed at the boundary.
func UTMToGeographic(easting, northing float64, zone int, south bool) (lon, lat float64) {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	lon0 := float64(zone)*6 - 183 // central meridian, degrees

	y := northing
	if south {
		y -= utmFalseNorth
	}

	m := y / utmScale
	mu := m / (wgs84A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := math.Tan(phi1) * math.Tan(phi1)
	n1 := wgs84A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := wgs84A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - utmFalseEasting) / (n1 * utmScale)

	latRad := phi1 - (n1*math.Tan(phi1)/r1)*
		(d*d/2-
			(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
			(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lonRad := (d -
		(1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi1

	lat = latRad * 180 / math.Pi
	lon = lon0 + lonRad*180/math.Pi
	return lon, lat
}

// GeographicToUTM converts geographic degrees to UTM. Kept for round-trip
// verification of the inverse.
func GeographicToUTM(lon, lat float64, zone int, south bool) (easting, northing float64) {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	lon0 := (float64(zone)*6 - 183) * math.Pi / 180

	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	n := wgs84A / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := math.Tan(phi) * math.Tan(phi)
	c := ep2 * cosPhi * cosPhi
	a := cosPhi * (lambda - lon0)

	m := wgs84A * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*phi -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*phi) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*phi) -
		(35*e2*e2*e2/3072)*math.Sin(6*phi))

	easting = utmFalseEasting + utmScale*n*(a+
		(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120)

	northing = utmScale * (m + n*math.Tan(phi)*
		(a*a/2+
			(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
			(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	if south {
		northing += utmFalseNorth
	}
	return easting, northing
}
