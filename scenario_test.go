package multimodal

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func testDatasets(t *testing.T) (ModeDataset, ModeDataset, ModeDataset) {
	t.Helper()
	road := ModeDataset{
		Name:    "road",
		Mode:    MODE_CAR,
		Network: testNetwork(t, "road", "r", 5, MODE_CAR),
	}
	// Input datasets carry arbitrary modes: assembly re-tags them
	train := ModeDataset{
		Name:     "train",
		Mode:     MODE_TRAIN,
		Network:  testNetwork(t, "train", "t", 4, MODE_PT),
		Schedule: testSchedule(t, "train", "ice_", MODE_UNDEFINED, []NetworkLinkID{"t0_1_f", "t1_2_f", "t2_3_f"}, "ice_type", "ice_veh0", "ice_veh1"),
		Fleet:    testFleet(t, "train", "ice_", 2),
	}
	airplane := ModeDataset{
		Name:     "airplane",
		Mode:     MODE_AIRPLANE,
		Network:  testNetwork(t, "airplane", "a", 3, MODE_CAR),
		Schedule: testSchedule(t, "airplane", "lh_", MODE_PT, []NetworkLinkID{"a0_1_f", "a1_2_f"}, "lh_type", "lh_veh0"),
		Fleet:    testFleet(t, "airplane", "lh_", 1),
	}
	return road, train, airplane
}

func TestAssemble(t *testing.T) {
	road, train, airplane := testDatasets(t)
	scenario, err := Assemble(DefaultAssemblyConfig(), road, train, airplane)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(scenario.RunID); err != nil {
		t.Errorf("Run id must be UUID, but got '%s'", scenario.RunID)
	}

	stats := scenario.Stats()
	expected := ScenarioStats{
		Nodes:          5 + 4 + 3,
		Links:          8 + 6 + 4,
		StopFacilities: 3 + 2,
		Lines:          2,
		Routes:         2,
		VehicleTypes:   2,
		Vehicles:       3,
	}
	if stats != expected {
		t.Errorf("Stats must be %+v, but got %+v", expected, stats)
	}

	for _, check := range []struct {
		linkID NetworkLinkID
		mode   TransportMode
	}{{"r0_1_f", MODE_CAR}, {"t0_1_f", MODE_TRAIN}, {"a1_2_b", MODE_AIRPLANE}} {
		link, ok := scenario.Network.Link(check.linkID)
		if !ok {
			t.Errorf("Link '%s' must be found", check.linkID)
			continue
		}
		if !link.AllowedModes.Equal(NewModeSet(check.mode)) {
			t.Errorf("Link '%s' modes must be '%s', but got '%s'", check.linkID, NewModeSet(check.mode), link.AllowedModes)
		}
	}
	for lineID, mode := range map[TransitLineID]TransportMode{"ice_line": MODE_TRAIN, "lh_line": MODE_AIRPLANE} {
		line, ok := scenario.Schedule.TransitLine(lineID)
		if !ok {
			t.Errorf("Line '%s' must be found", lineID)
			continue
		}
		for _, route := range line.Routes() {
			if route.TransportMode != mode {
				t.Errorf("Route '%s' mode must be %s, but got %s", route.ID, mode, route.TransportMode)
			}
		}
	}
	if scenario.Selector == nil {
		t.Fatal("Scenario must carry selector")
	}
	if scenario.Selector.Config().DistanceThresholdMeters != 300000 {
		t.Errorf("Threshold must be %v, but got %v", 300000, scenario.Selector.Config().DistanceThresholdMeters)
	}

	// Base is cloned
	if road.Network.NodesNum() != 5 || road.Network.LinksNum() != 8 {
		t.Errorf("Base network must stay untouched, but got %d nodes and %d links", road.Network.NodesNum(), road.Network.LinksNum())
	}
}

func TestAssembleCollision(t *testing.T) {
	road, train, airplane := testDatasets(t)
	// Airplane network reuses rail identifiers
	airplane.Network = testNetwork(t, "airplane", "t", 2, MODE_AIRPLANE)

	scenario, err := Assemble(DefaultAssemblyConfig(), road, train, airplane)
	if scenario != nil {
		t.Error("Failed assembly must not return scenario")
	}
	var dupErr *DuplicateIdentifierError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Error must be DuplicateIdentifierError, but got %v", err)
	}
	if !strings.Contains(err.Error(), "airplane") {
		t.Errorf("Error must name dataset 'airplane', but got '%s'", err.Error())
	}
	if road.Network.NodesNum() != 5 || road.Network.LinksNum() != 8 {
		t.Errorf("Base network must stay untouched, but got %d nodes and %d links", road.Network.NodesNum(), road.Network.LinksNum())
	}
}

func TestAssembleReferences(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(train *ModeDataset)
		refKind EntityKind
	}{
		{
			name: "unknown route link",
			modify: func(train *ModeDataset) {
				line, _ := train.Schedule.TransitLine("ice_line")
				route, _ := line.Route("ice_route")
				route.LinkIDs = append(route.LinkIDs, "missing_link")
			},
			refKind: ENTITY_LINK,
		},
		{
			name: "unknown departure vehicle",
			modify: func(train *ModeDataset) {
				line, _ := train.Schedule.TransitLine("ice_line")
				route, _ := line.Route("ice_route")
				route.Departures = append(route.Departures, Departure{ID: "late", VehicleID: "ghost"})
			},
			refKind: ENTITY_VEHICLE,
		},
		{
			name: "unknown vehicle type",
			modify: func(train *ModeDataset) {
				line, _ := train.Schedule.TransitLine("ice_line")
				route, _ := line.Route("ice_route")
				route.VehicleTypeID = "maglev"
			},
			refKind: ENTITY_VEHICLE_TYPE,
		},
		{
			name: "unknown facility link",
			modify: func(train *ModeDataset) {
				facility, _ := train.Schedule.StopFacility("ice_stop0")
				facility.LinkID = "missing_link"
			},
			refKind: ENTITY_LINK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			road, train, airplane := testDatasets(t)
			tt.modify(&train)
			_, err := Assemble(DefaultAssemblyConfig(), road, train, airplane)
			var danglingErr *DanglingReferenceError
			if !errors.As(err, &danglingErr) {
				t.Fatalf("Error must be DanglingReferenceError, but got %v", err)
			}
			if danglingErr.RefKind != tt.refKind {
				t.Errorf("Referenced kind must be %s, but got %s", tt.refKind, danglingErr.RefKind)
			}

			// Same input passes without reference validation
			road, train, airplane = testDatasets(t)
			tt.modify(&train)
			cfg := DefaultAssemblyConfig()
			cfg.ValidateReferences = false
			if _, err := Assemble(cfg, road, train, airplane); err != nil {
				t.Errorf("Assembly without reference validation must succeed, but got %v", err)
			}
		})
	}
}

func TestAssembleNoBaseNetwork(t *testing.T) {
	_, train, _ := testDatasets(t)
	if _, err := Assemble(DefaultAssemblyConfig(), ModeDataset{Name: "empty"}, train); err == nil {
		t.Error("Assembly without base network must fail")
	}
}
