package multimodal

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

type DistanceMetric uint16

const (
	// Coordinates are WGS84 longitude/latitude
	METRIC_HAVERSINE = DistanceMetric(iota + 1)
	// Coordinates are projected and measured in meters (e.g. EPSG:31467, EPSG:3857)
	METRIC_EUCLIDEAN
)

var distanceMetricNames = [...]string{"haversine", "euclidean"}

func (iotaIdx DistanceMetric) String() string {
	if iotaIdx == 0 || int(iotaIdx) > len(distanceMetricNames) {
		return "undefined"
	}
	return distanceMetricNames[iotaIdx-1]
}

// MetricForCRS guesses distance metric by coordinate system code. Only EPSG:4326 (and its alias WGS84) is treated as geographic
func MetricForCRS(crs string) DistanceMetric {
	switch strings.ToUpper(strings.TrimSpace(crs)) {
	case "", "EPSG:4326", "WGS84":
		return METRIC_HAVERSINE
	default:
		return METRIC_EUCLIDEAN
	}
}

// Distance returns straight line distance between two points in meters
func (metric DistanceMetric) Distance(p, q orb.Point) float64 {
	switch metric {
	case METRIC_EUCLIDEAN:
		return planar.Distance(p, q)
	default:
		return geo.DistanceHaversine(p, q)
	}
}

// Length returns length of the line in meters
func (metric DistanceMetric) Length(line orb.LineString) float64 {
	switch metric {
	case METRIC_EUCLIDEAN:
		return planar.Length(line)
	default:
		return geo.LengthHaversign(line)
	}
}
