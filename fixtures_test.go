package multimodal

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
)

// testNetwork builds chain network 'prefix0 -> prefix1 -> ... -> prefix<n-1>' with links in both directions
func testNetwork(t *testing.T, name, prefix string, n int, modes ...TransportMode) *Network {
	t.Helper()
	net := NewNetwork(name)
	for i := 0; i < n; i++ {
		err := net.AddNode(&NetworkNode{ID: NetworkNodeID(fmt.Sprintf("%s%d", prefix, i)), Coord: orb.Point{float64(i), 0}})
		if err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i < n; i++ {
		for _, dir := range []struct {
			suffix   string
			src, dst int
		}{{"f", i - 1, i}, {"b", i, i - 1}} {
			err := net.AddLink(&NetworkLink{
				ID:           NetworkLinkID(fmt.Sprintf("%s%d_%d_%s", prefix, i-1, i, dir.suffix)),
				SourceNodeID: NetworkNodeID(fmt.Sprintf("%s%d", prefix, dir.src)),
				TargetNodeID: NetworkNodeID(fmt.Sprintf("%s%d", prefix, dir.dst)),
				AllowedModes: NewModeSet(modes...),
				LengthMeters: 1000,
				FreeSpeed:    10,
				Capacity:     1000,
				Lanes:        1,
			})
			if err != nil {
				t.Fatal(err)
			}
		}
	}
	return net
}

// testSchedule builds schedule with single line of single route over given links.
// Every link gets a stop facility, route visits all of them
func testSchedule(t *testing.T, name, prefix string, mode TransportMode, links []NetworkLinkID, vehicleType VehicleTypeID, vehicles ...VehicleID) *TransitSchedule {
	t.Helper()
	schedule := NewTransitSchedule(name)
	route := &TransitRoute{
		ID:            TransitRouteID(prefix + "route"),
		TransportMode: mode,
		VehicleTypeID: vehicleType,
		LinkIDs:       links,
	}
	for i, linkID := range links {
		stopID := StopFacilityID(fmt.Sprintf("%sstop%d", prefix, i))
		err := schedule.AddStopFacility(&TransitStopFacility{ID: stopID, Name: string(stopID), LinkID: linkID})
		if err != nil {
			t.Fatal(err)
		}
		route.Stops = append(route.Stops, TransitRouteStop{StopID: stopID})
	}
	for i, vehicleID := range vehicles {
		route.Departures = append(route.Departures, Departure{
			ID:        DepartureID(fmt.Sprintf("%sdep%d", prefix, i)),
			VehicleID: vehicleID,
		})
	}
	line := NewTransitLine(TransitLineID(prefix+"line"), prefix+"line")
	if err := line.AddRoute(route); err != nil {
		t.Fatal(err)
	}
	if err := schedule.AddTransitLine(line); err != nil {
		t.Fatal(err)
	}
	return schedule
}

// testFleet builds fleet with single vehicle type and n vehicles
func testFleet(t *testing.T, name, prefix string, n int) *VehicleFleet {
	t.Helper()
	fleet := NewVehicleFleet(name)
	typeID := VehicleTypeID(prefix + "type")
	if err := fleet.AddVehicleType(&VehicleType{ID: typeID, SeatsCapacity: 100, PCE: 1}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := fleet.AddVehicle(&Vehicle{ID: VehicleID(fmt.Sprintf("%sveh%d", prefix, i)), TypeID: typeID}); err != nil {
			t.Fatal(err)
		}
	}
	return fleet
}
