package multimodal

/* Links stuff */
type NetworkLinkID string

type NetworkLink struct {
	ID           NetworkLinkID
	SourceNodeID NetworkNodeID
	TargetNodeID NetworkNodeID
	AllowedModes ModeSet
	LengthMeters float64
	// Vehicles per hour
	Capacity float64
	// Meters per second
	FreeSpeed float64
	Lanes     float64
	LinkType  LinkType
}

// TravelTimeSeconds returns free flow travel time. Returns -1 if free speed is unknown
func (link *NetworkLink) TravelTimeSeconds() float64 {
	if link.FreeSpeed <= 0 {
		return -1
	}
	return link.LengthMeters / link.FreeSpeed
}

func (link *NetworkLink) clone() *NetworkLink {
	cloned := *link
	cloned.AllowedModes = link.AllowedModes.Clone()
	return &cloned
}
