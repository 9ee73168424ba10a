package models

// WellInfo is the metadata block the wells API returns alongside level data.
type WellInfo struct {
	MonitoringPoint string  `json:"punto_monitoreo"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	LevelType       string  `json:"tipo_nivel"`
}

// PercentileClass buckets a well's current level against its historical
// distribution.
type PercentileClass string

const (
	PercentileLow     PercentileClass = "<P33"
	PercentileMidLow  PercentileClass = "P33-P66"
	PercentileMidHigh PercentileClass = "P66-P99"
	PercentileHigh    PercentileClass = ">P99"
)

// WellPoint is a monitoring well position with its percentile classification,
// as reported by the level GeoJSON endpoint.
type WellPoint struct {
	Lon   float64
	Lat   float64
	Class PercentileClass
}

// ZoneOutline is one aquifer zone ring in geographic coordinates.
type ZoneOutline struct {
	Name string
	Lons []float64
	Lats []float64
}
