package multimodal

import (
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testNetworkXML = `<?xml version="1.0" encoding="UTF-8"?>
<network name="rail">
	<nodes>
		<node id="berlin" x="13.369" y="52.525"/>
		<node id="halle" x="11.987" y="51.477"/>
		<node id="munich" x="11.558" y="48.140"/>
	</nodes>
	<links capperiod="00:30:00">
		<link id="berlin_halle" from="berlin" to="halle" length="160000" freespeed="55.5" capacity="1000" permlanes="2" modes="train"/>
		<link id="halle_munich" from="halle" to="munich" length="420000" modes="rail"/>
	</links>
</network>
`

const testScheduleXML = `<?xml version="1.0" encoding="UTF-8"?>
<transitSchedule>
	<transitStops>
		<stopFacility id="berlin_hbf" name="Berlin Hbf" x="13.369" y="52.525" linkRefId="berlin_halle"/>
		<stopFacility id="munich_hbf" name="Muenchen Hbf" x="11.558" y="48.140" linkRefId="halle_munich"/>
	</transitStops>
	<transitLine id="ICE_1" name="ICE 1">
		<transitRoute id="ICE_1_south">
			<attributes>
				<attribute name="vehicleType" class="java.lang.String">ICE4</attribute>
			</attributes>
			<transportMode>rail</transportMode>
			<routeProfile>
				<stop refId="berlin_hbf" departureOffset="00:00:00" awaitDeparture="true"/>
				<stop refId="munich_hbf" arrivalOffset="04:05:00"/>
			</routeProfile>
			<route>
				<link refId="berlin_halle"/>
				<link refId="halle_munich"/>
			</route>
			<departures>
				<departure id="d1" departureTime="06:30:00" vehicleRefId="ice_1"/>
				<departure id="d2" departureTime="08:30:00" vehicleRefId="ice_2"/>
			</departures>
		</transitRoute>
		<transitRoute id="ICE_1_maglev">
			<transportMode>maglev</transportMode>
		</transitRoute>
	</transitLine>
</transitSchedule>
`

const testVehiclesXML = `<?xml version="1.0" encoding="UTF-8"?>
<vehicleDefinitions xmlns="http://www.matsim.org/files/dtd">
	<vehicleType id="ICE4">
		<attributes>
			<attribute name="accessTimeInSecondsPerPerson" class="java.lang.Double">0.5</attribute>
			<attribute name="egressTimeInSecondsPerPerson" class="java.lang.Double">1.5</attribute>
		</attributes>
		<description>Intercity Express</description>
		<capacity seats="830" standingRoomInPersons="100"/>
		<length meter="346.0"/>
		<maximumVelocity meterPerSecond="69.4"/>
	</vehicleType>
	<vehicle id="ice_1" type="ICE4">
		<attributes>
			<attribute name="startTime" class="java.lang.Double">23400</attribute>
		</attributes>
	</vehicle>
	<vehicle id="ice_2" type="ICE4"/>
</vehicleDefinitions>
`

func TestReadNetworkXML(t *testing.T) {
	net, err := ReadNetworkXML(strings.NewReader(testNetworkXML), "")
	if err != nil {
		t.Fatal(err)
	}
	if net.Name != "rail" {
		t.Errorf("Name must be taken from document when not provided: expected '%s', but got '%s'", "rail", net.Name)
	}
	if net.NodesNum() != 3 || net.LinksNum() != 2 {
		t.Fatalf("Network must have %d nodes and %d links, but got %d and %d", 3, 2, net.NodesNum(), net.LinksNum())
	}
	node, ok := net.Node("halle")
	if !ok || node.Coord.X() != 11.987 || node.Coord.Y() != 51.477 {
		t.Errorf("Node 'halle' must be at (11.987, 51.477), but got %v", node)
	}

	declared, _ := net.Link("berlin_halle")
	// Capacity declared per 30 minutes
	if declared.Capacity != 2000 {
		t.Errorf("Capacity must be %v, but got %v", 2000, declared.Capacity)
	}
	if declared.Lanes != 2 || declared.FreeSpeed != 55.5 {
		t.Errorf("Declared lanes and free speed must be kept, but got %v and %v", declared.Lanes, declared.FreeSpeed)
	}

	defaulted, _ := net.Link("halle_munich")
	if !defaulted.AllowedModes.Equal(NewModeSet(MODE_TRAIN)) {
		t.Errorf("Modes must be '%s', but got '%s'", NewModeSet(MODE_TRAIN), defaulted.AllowedModes)
	}
	if defaulted.LinkType != LINK_RAILWAY {
		t.Errorf("Link type must be %s, but got %s", LINK_RAILWAY, defaulted.LinkType)
	}
	if defaulted.Lanes != 1 || defaulted.Capacity != 9999 {
		t.Errorf("Lanes and capacity must be %v and %v, but got %v and %v", 1, 9999, defaulted.Lanes, defaulted.Capacity)
	}
	if math.Abs(defaulted.FreeSpeed-250/3.6) > 1e-9 {
		t.Errorf("Free speed must be %v, but got %v", 250/3.6, defaulted.FreeSpeed)
	}
}

func TestReadNetworkXMLErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"broken document", `<network><nodes>`},
		{"unknown node", `<network><nodes><node id="a"/></nodes><links><link id="l" from="a" to="b"/></links></network>`},
		{"unknown mode", `<network><nodes><node id="a"/><node id="b"/></nodes><links><link id="l" from="a" to="b" modes="hyperloop"/></links></network>`},
		{"zero capacity period", `<network><links capperiod="00:00:00"/></network>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadNetworkXML(strings.NewReader(tt.xml), "test"); err == nil {
				t.Error("Error must be returned")
			}
		})
	}
}

func TestReadScheduleXML(t *testing.T) {
	schedule, err := ReadScheduleXML(strings.NewReader(testScheduleXML), "rail")
	if err != nil {
		t.Fatal(err)
	}
	if schedule.StopFacilitiesNum() != 2 || schedule.TransitLinesNum() != 1 || schedule.TransitRoutesNum() != 2 {
		t.Fatalf("Schedule must have 2 facilities, 1 line and 2 routes, but got %d, %d and %d", schedule.StopFacilitiesNum(), schedule.TransitLinesNum(), schedule.TransitRoutesNum())
	}
	facility, _ := schedule.StopFacility("munich_hbf")
	if facility.Name != "Muenchen Hbf" || facility.LinkID != "halle_munich" {
		t.Errorf("Facility must be 'Muenchen Hbf' on link 'halle_munich', but got '%s' on '%s'", facility.Name, facility.LinkID)
	}

	line, _ := schedule.TransitLine("ICE_1")
	route, ok := line.Route("ICE_1_south")
	if !ok {
		t.Fatal("Route 'ICE_1_south' must be found")
	}
	if route.TransportMode != MODE_TRAIN {
		t.Errorf("Mode must be %s, but got %s", MODE_TRAIN, route.TransportMode)
	}
	if route.VehicleTypeID != "ICE4" {
		t.Errorf("Vehicle type must be '%s', but got '%s'", "ICE4", route.VehicleTypeID)
	}
	if len(route.Stops) != 2 || !route.Stops[0].AwaitDeparture || route.Stops[1].ArrivalOffset != 4*time.Hour+5*time.Minute {
		t.Errorf("Route profile is parsed wrong: %+v", route.Stops)
	}
	if len(route.LinkIDs) != 2 || route.LinkIDs[1] != "halle_munich" {
		t.Errorf("Route links must be [berlin_halle halle_munich], but got %v", route.LinkIDs)
	}
	if len(route.Departures) != 2 || route.Departures[1].DepartureTime != 8*time.Hour+30*time.Minute || route.Departures[1].VehicleID != "ice_2" {
		t.Errorf("Departures are parsed wrong: %+v", route.Departures)
	}

	unknown, _ := line.Route("ICE_1_maglev")
	if unknown.TransportMode != MODE_UNDEFINED {
		t.Errorf("Unknown mode must give %d, but got %s", MODE_UNDEFINED, unknown.TransportMode)
	}
}

func TestReadVehiclesXML(t *testing.T) {
	fleet, err := ReadVehiclesXML(strings.NewReader(testVehiclesXML), "rail")
	if err != nil {
		t.Fatal(err)
	}
	if fleet.VehicleTypesNum() != 1 || fleet.VehiclesNum() != 2 {
		t.Fatalf("Fleet must have %d types and %d vehicles, but got %d and %d", 1, 2, fleet.VehicleTypesNum(), fleet.VehiclesNum())
	}
	vt, _ := fleet.VehicleType("ICE4")
	if vt.Description != "Intercity Express" || vt.TotalCapacity() != 930 || vt.LengthMeters != 346 || vt.MaxVelocity != 69.4 {
		t.Errorf("Vehicle type is parsed wrong: %+v", vt)
	}
	if vt.PCE != 1 {
		t.Errorf("Default PCE must be %v, but got %v", 1, vt.PCE)
	}
	if vt.AccessTime != 500*time.Millisecond || vt.EgressTime != 1500*time.Millisecond {
		t.Errorf("Access and egress times must be %s and %s, but got %s and %s", 500*time.Millisecond, 1500*time.Millisecond, vt.AccessTime, vt.EgressTime)
	}
	vehicle, _ := fleet.Vehicle("ice_1")
	if vehicle.StartTime != 6*time.Hour+30*time.Minute {
		t.Errorf("Start time must be %s, but got %s", 6*time.Hour+30*time.Minute, vehicle.StartTime)
	}
}

func writeTestFile(t *testing.T, dir, name, content string, compressed bool) string {
	t.Helper()
	fname := filepath.Join(dir, name)
	file, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if !compressed {
		if _, err := file.WriteString(content); err != nil {
			t.Fatal(err)
		}
		return fname
	}
	gz := gzip.NewWriter(file)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestLoadModeDataset(t *testing.T) {
	dir := t.TempDir()
	networkFile := writeTestFile(t, dir, "rail_network.xml.gz", testNetworkXML, true)
	scheduleFile := writeTestFile(t, dir, "rail_schedule.xml", testScheduleXML, false)
	vehiclesFile := writeTestFile(t, dir, "rail_vehicles.xml.gz", testVehiclesXML, true)

	dataset, err := LoadModeDataset("rail", MODE_TRAIN, networkFile, scheduleFile, vehiclesFile)
	if err != nil {
		t.Fatal(err)
	}
	if dataset.Network.Name != "rail_network" {
		t.Errorf("Network name must be '%s', but got '%s'", "rail_network", dataset.Network.Name)
	}
	if dataset.Network.LinksNum() != 2 || dataset.Schedule.TransitRoutesNum() != 2 || dataset.Fleet.VehiclesNum() != 2 {
		t.Errorf("Dataset is loaded wrong: %d links, %d routes, %d vehicles", dataset.Network.LinksNum(), dataset.Schedule.TransitRoutesNum(), dataset.Fleet.VehiclesNum())
	}

	onlyNetwork, err := LoadModeDataset("rail", MODE_TRAIN, networkFile, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if onlyNetwork.Schedule != nil || onlyNetwork.Fleet != nil {
		t.Error("Empty file names must be skipped")
	}

	if _, err := LoadModeDataset("rail", MODE_TRAIN, filepath.Join(dir, "missing.xml"), "", ""); err == nil {
		t.Error("Missing file must give error")
	}
	// Plain XML file named as gzip
	broken := writeTestFile(t, dir, "broken.xml.gz", testNetworkXML, false)
	if _, err := LoadNetwork(broken); err == nil {
		t.Error("Not compressed content must give error")
	}
}

func TestDatasetName(t *testing.T) {
	tests := map[string]string{
		"data/rail_network.xml.gz": "rail_network",
		"berlin.osm.pbf":           "berlin",
		"population.csv":           "population",
		"/tmp/air.xml":             "air",
	}
	for fname, expected := range tests {
		if got := datasetName(fname); got != expected {
			t.Errorf("Dataset name of '%s' must be '%s', but got '%s'", fname, expected, got)
		}
	}
}
