package multimodal

import "github.com/paulmach/osm"

type AccessType uint16

const (
	ACCESS_MOTOR_VEHICLE = AccessType(iota + 1)
	ACCESS_MOTORCAR
	ACCESS_OSM_ACCESS
	ACCESS_SERVICE
	ACCESS_UNDEFINED = AccessType(0)
)

var accessTypeNames = [...]string{"undefined", "motor_vehicle", "motorcar", "access", "service"}

func (iotaIdx AccessType) String() string {
	if int(iotaIdx) >= len(accessTypeNames) {
		return "undefined"
	}
	return accessTypeNames[iotaIdx]
}

var (
	// Explicit permission wins over any restriction
	carAccessInclude = map[AccessType]map[string]struct{}{
		ACCESS_MOTOR_VEHICLE: {
			"yes":         {},
			"designated":  {},
			"permissive":  {},
			"destination": {},
		},
		ACCESS_MOTORCAR: {
			"yes":         {},
			"designated":  {},
			"permissive":  {},
			"destination": {},
		},
	}

	carAccessExclude = map[AccessType]map[string]struct{}{
		ACCESS_MOTOR_VEHICLE: {
			"no": {},
		},
		ACCESS_MOTORCAR: {
			"no": {},
		},
		ACCESS_OSM_ACCESS: {
			"no":      {},
			"private": {},
		},
		ACCESS_SERVICE: {
			"parking":          {},
			"parking_aisle":    {},
			"driveway":         {},
			"private":          {},
			"emergency_access": {},
		},
	}
)

// carAllowed checks access tags of the way
func carAllowed(tags osm.Tags) bool {
	for access, values := range carAccessInclude {
		if _, ok := values[tags.Find(access.String())]; ok {
			return true
		}
	}
	for access, values := range carAccessExclude {
		if _, ok := values[tags.Find(access.String())]; ok {
			return false
		}
	}
	return true
}
