package multimodal

import (
	"github.com/pkg/errors"
)

// MergeSchedules adds every stop facility and every transit line of source into target.
//
// Routes of source must already carry transit mode. Collisions of facilities or lines give
// DuplicateIdentifierError; route stops which are unknown to both target and source give DanglingReferenceError.
// On error target is left untouched.
func MergeSchedules(target, source *TransitSchedule) error {
	for _, facility := range source.StopFacilities() {
		if _, ok := target.facilities[facility.ID]; ok {
			return duplicateErr(source.Name, ENTITY_STOP_FACILITY, string(facility.ID))
		}
	}
	for _, line := range source.Lines() {
		if _, ok := target.lines[line.ID]; ok {
			return duplicateErr(source.Name, ENTITY_TRANSIT_LINE, string(line.ID))
		}
		for _, route := range line.Routes() {
			if !IsTransitRouteMode(route.TransportMode) {
				return errors.Wrapf(ErrRouteModeUndefined, "dataset '%s': line '%s', route '%s' (mode '%s')", source.Name, line.ID, route.ID, route.TransportMode)
			}
			for _, stop := range route.Stops {
				_, inSource := source.facilities[stop.StopID]
				_, inTarget := target.facilities[stop.StopID]
				if !inSource && !inTarget {
					return danglingErr(source.Name, ENTITY_TRANSIT_ROUTE, string(route.ID), ENTITY_STOP_FACILITY, string(stop.StopID))
				}
			}
		}
	}

	for id, facility := range source.facilities {
		target.facilities[id] = facility
	}
	for id, line := range source.lines {
		target.lines[id] = line
	}
	return nil
}
