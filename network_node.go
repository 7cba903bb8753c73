package multimodal

import (
	"github.com/paulmach/orb"
)

/* Nodes stuff */

type NetworkNodeID string

type NetworkNode struct {
	ID NetworkNodeID
	// Coordinate in network's coordinate system (X == Lon, Y == Lat for EPSG:4326)
	Coord orb.Point
}
