package multimodal

import "strings"

type LinkType uint16

const (
	LINK_MOTORWAY = LinkType(iota + 1)
	LINK_TRUNK
	LINK_PRIMARY
	LINK_SECONDARY
	LINK_TERTIARY
	LINK_RESIDENTIAL
	LINK_LIVING_STREET
	LINK_SERVICE
	LINK_TRACK
	LINK_UNCLASSIFIED
	LINK_CONNECTOR
	LINK_RAILWAY
	LINK_AEROWAY
	LINK_UNDEFINED = LinkType(0)
)

var linkTypeNames = [...]string{"undefined", "motorway", "trunk", "primary", "secondary", "tertiary", "residential", "living_street", "service", "track", "unclassified", "connector", "railway", "aeroway"}

func (iotaIdx LinkType) String() string {
	if int(iotaIdx) >= len(linkTypeNames) {
		return "undefined"
	}
	return linkTypeNames[iotaIdx]
}

// parseLinkType returns link type by its name. Unknown names give LINK_UNDEFINED
func parseLinkType(str string) LinkType {
	if found, ok := linkTypesByName[strings.ToLower(str)]; ok {
		return found
	}
	return LINK_UNDEFINED
}

// defaultLinkTypeByMode is used when engine input does not declare link type
func defaultLinkTypeByMode(modes ModeSet) LinkType {
	switch {
	case modes.Contains(MODE_AIRPLANE):
		return LINK_AEROWAY
	case modes.Contains(MODE_TRAIN):
		return LINK_RAILWAY
	default:
		return LINK_UNCLASSIFIED
	}
}

var (
	linkTypesByName = map[string]LinkType{
		"motorway":      LINK_MOTORWAY,
		"trunk":         LINK_TRUNK,
		"primary":       LINK_PRIMARY,
		"secondary":     LINK_SECONDARY,
		"tertiary":      LINK_TERTIARY,
		"residential":   LINK_RESIDENTIAL,
		"living_street": LINK_LIVING_STREET,
		"service":       LINK_SERVICE,
		"track":         LINK_TRACK,
		"unclassified":  LINK_UNCLASSIFIED,
		"connector":     LINK_CONNECTOR,
		"railway":       LINK_RAILWAY,
		"rail":          LINK_RAILWAY,
		"aeroway":       LINK_AEROWAY,
		"air":           LINK_AEROWAY,
	}
	onewayDefaultByLink = map[LinkType]bool{
		LINK_MOTORWAY:      true,
		LINK_TRUNK:         false,
		LINK_PRIMARY:       false,
		LINK_SECONDARY:     false,
		LINK_TERTIARY:      false,
		LINK_RESIDENTIAL:   false,
		LINK_LIVING_STREET: false,
		LINK_SERVICE:       false,
		LINK_TRACK:         true,
		LINK_UNCLASSIFIED:  false,
		LINK_CONNECTOR:     false,
		LINK_RAILWAY:       true,
		LINK_AEROWAY:       true,
	}
	defaultLanesByLinkType = map[LinkType]int{
		LINK_MOTORWAY:     4,
		LINK_TRUNK:        3,
		LINK_PRIMARY:      3,
		LINK_SECONDARY:    2,
		LINK_TERTIARY:     2,
		LINK_RESIDENTIAL:  1,
		LINK_SERVICE:      1,
		LINK_TRACK:        1,
		LINK_UNCLASSIFIED: 1,
		LINK_CONNECTOR:    2,
		LINK_RAILWAY:      1,
		LINK_AEROWAY:      1,
	}
	// km/h
	defaultSpeedByLinkType = map[LinkType]float64{
		LINK_MOTORWAY:      120,
		LINK_TRUNK:         100,
		LINK_PRIMARY:       80,
		LINK_SECONDARY:     60,
		LINK_TERTIARY:      40,
		LINK_RESIDENTIAL:   30,
		LINK_LIVING_STREET: 10,
		LINK_SERVICE:       30,
		LINK_TRACK:         30,
		LINK_UNCLASSIFIED:  30,
		LINK_CONNECTOR:     120,
		LINK_RAILWAY:       250,
		LINK_AEROWAY:       800,
	}
	// vehicles per hour per lane
	defaultCapacityByLinkType = map[LinkType]int{
		LINK_MOTORWAY:      2300,
		LINK_TRUNK:         2200,
		LINK_PRIMARY:       1800,
		LINK_SECONDARY:     1600,
		LINK_TERTIARY:      1200,
		LINK_RESIDENTIAL:   1000,
		LINK_LIVING_STREET: 800,
		LINK_SERVICE:       800,
		LINK_TRACK:         800,
		LINK_UNCLASSIFIED:  800,
		LINK_CONNECTOR:     9999,
		LINK_RAILWAY:       9999,
		LINK_AEROWAY:       9999,
	}
)

// applyLinkDefaults fills free speed, capacity and lanes which have not been provided (non-positive values)
func applyLinkDefaults(link *NetworkLink) {
	if link.LinkType == LINK_UNDEFINED {
		link.LinkType = defaultLinkTypeByMode(link.AllowedModes)
	}
	if link.Lanes <= 0 {
		if lanes, ok := defaultLanesByLinkType[link.LinkType]; ok {
			link.Lanes = float64(lanes)
		} else {
			link.Lanes = 1
		}
	}
	if link.FreeSpeed <= 0 {
		if speed, ok := defaultSpeedByLinkType[link.LinkType]; ok {
			link.FreeSpeed = speed / 3.6
		}
	}
	if link.Capacity <= 0 {
		if capacity, ok := defaultCapacityByLinkType[link.LinkType]; ok {
			link.Capacity = float64(capacity) * link.Lanes
		}
	}
}
