package multimodal

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
)

type (
	StopFacilityID string
	TransitLineID  string
	TransitRouteID string
	DepartureID    string
)

// TransitStopFacility is a place where passengers board and alight
type TransitStopFacility struct {
	ID    StopFacilityID
	Name  string
	Coord orb.Point
	// Network link the facility is attached to. Could be empty
	LinkID NetworkLinkID
}

// TransitRouteStop is a single stop of a route with offsets relative to departure of the route
type TransitRouteStop struct {
	StopID          StopFacilityID
	ArrivalOffset   time.Duration
	DepartureOffset time.Duration
	AwaitDeparture  bool
}

// Departure is a single trip of a route. Time is the offset since midnight of the simulated day
type Departure struct {
	ID            DepartureID
	DepartureTime time.Duration
	VehicleID     VehicleID
}

type TransitRoute struct {
	ID            TransitRouteID
	TransportMode TransportMode
	VehicleTypeID VehicleTypeID
	Stops         []TransitRouteStop
	LinkIDs       []NetworkLinkID
	Departures    []Departure
}

// TransitLine owns an ordered set of routes
type TransitLine struct {
	ID         TransitLineID
	Name       string
	routes     map[TransitRouteID]*TransitRoute
	routeOrder []TransitRouteID
}

func NewTransitLine(id TransitLineID, name string) *TransitLine {
	return &TransitLine{
		ID:     id,
		Name:   name,
		routes: make(map[TransitRouteID]*TransitRoute),
	}
}

func (line *TransitLine) AddRoute(route *TransitRoute) error {
	if _, ok := line.routes[route.ID]; ok {
		return duplicateErr(string(line.ID), ENTITY_TRANSIT_ROUTE, string(route.ID))
	}
	line.routes[route.ID] = route
	line.routeOrder = append(line.routeOrder, route.ID)
	return nil
}

func (line *TransitLine) Route(id TransitRouteID) (*TransitRoute, bool) {
	route, ok := line.routes[id]
	return route, ok
}

// Routes returns routes in order they have been added
func (line *TransitLine) Routes() []*TransitRoute {
	routes := make([]*TransitRoute, 0, len(line.routeOrder))
	for _, id := range line.routeOrder {
		routes = append(routes, line.routes[id])
	}
	return routes
}

func (line *TransitLine) RoutesNum() int {
	return len(line.routes)
}

// TransitSchedule is a set of stop facilities and transit lines
type TransitSchedule struct {
	Name       string
	facilities map[StopFacilityID]*TransitStopFacility
	lines      map[TransitLineID]*TransitLine
}

func NewTransitSchedule(name string) *TransitSchedule {
	return &TransitSchedule{
		Name:       name,
		facilities: make(map[StopFacilityID]*TransitStopFacility),
		lines:      make(map[TransitLineID]*TransitLine),
	}
}

func (schedule *TransitSchedule) AddStopFacility(facility *TransitStopFacility) error {
	if _, ok := schedule.facilities[facility.ID]; ok {
		return duplicateErr(schedule.Name, ENTITY_STOP_FACILITY, string(facility.ID))
	}
	schedule.facilities[facility.ID] = facility
	return nil
}

// AddTransitLine adds line to the schedule. Every stop of every route of the line must be known to the schedule
func (schedule *TransitSchedule) AddTransitLine(line *TransitLine) error {
	if _, ok := schedule.lines[line.ID]; ok {
		return duplicateErr(schedule.Name, ENTITY_TRANSIT_LINE, string(line.ID))
	}
	for _, route := range line.routes {
		for _, stop := range route.Stops {
			if _, ok := schedule.facilities[stop.StopID]; !ok {
				return danglingErr(schedule.Name, ENTITY_TRANSIT_ROUTE, string(route.ID), ENTITY_STOP_FACILITY, string(stop.StopID))
			}
		}
	}
	schedule.lines[line.ID] = line
	return nil
}

func (schedule *TransitSchedule) StopFacility(id StopFacilityID) (*TransitStopFacility, bool) {
	facility, ok := schedule.facilities[id]
	return facility, ok
}

func (schedule *TransitSchedule) TransitLine(id TransitLineID) (*TransitLine, bool) {
	line, ok := schedule.lines[id]
	return line, ok
}

func (schedule *TransitSchedule) StopFacilitiesNum() int {
	return len(schedule.facilities)
}

func (schedule *TransitSchedule) TransitLinesNum() int {
	return len(schedule.lines)
}

func (schedule *TransitSchedule) TransitRoutesNum() int {
	total := 0
	for _, line := range schedule.lines {
		total += len(line.routes)
	}
	return total
}

// Lines returns lines sorted by identifier
func (schedule *TransitSchedule) Lines() []*TransitLine {
	lines := make([]*TransitLine, 0, len(schedule.lines))
	for _, line := range schedule.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// StopFacilities returns facilities sorted by identifier
func (schedule *TransitSchedule) StopFacilities() []*TransitStopFacility {
	facilities := make([]*TransitStopFacility, 0, len(schedule.facilities))
	for _, facility := range schedule.facilities {
		facilities = append(facilities, facility)
	}
	sort.Slice(facilities, func(i, j int) bool {
		return facilities[i].ID < facilities[j].ID
	})
	return facilities
}

// Clone returns copy of schedule's indices. Lines and facilities are shared
func (schedule *TransitSchedule) Clone() *TransitSchedule {
	cloned := &TransitSchedule{
		Name:       schedule.Name,
		facilities: make(map[StopFacilityID]*TransitStopFacility, len(schedule.facilities)),
		lines:      make(map[TransitLineID]*TransitLine, len(schedule.lines)),
	}
	for id, facility := range schedule.facilities {
		cloned.facilities[id] = facility
	}
	for id, line := range schedule.lines {
		cloned.lines[id] = line
	}
	return cloned
}
