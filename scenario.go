package multimodal

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ModeDataset is a single-mode input: network, schedule and fleet of one data source.
// Schedule and fleet could be nil (e.g. road network has no schedule)
type ModeDataset struct {
	Name     string
	Mode     TransportMode
	Network  *Network
	Schedule *TransitSchedule
	Fleet    *VehicleFleet
}

type AssemblyConfig struct {
	// Check that facilities and routes reference existing links and departures reference existing vehicles
	ValidateReferences bool
	Selector           SelectorConfig
	SelectorOptions    []func(*ModeChoiceSelector)
	Logger             *slog.Logger
}

func DefaultAssemblyConfig() AssemblyConfig {
	return AssemblyConfig{
		ValidateReferences: true,
		Selector:           DefaultSelectorConfig(),
	}
}

// Scenario is the merged, ready to route input of the external engine
type Scenario struct {
	RunID    string
	Network  *Network
	Schedule *TransitSchedule
	Fleet    *VehicleFleet
	Selector *ModeChoiceSelector
}

type ScenarioStats struct {
	Nodes          int
	Links          int
	StopFacilities int
	Lines          int
	Routes         int
	VehicleTypes   int
	Vehicles       int
}

func (stats ScenarioStats) String() string {
	return fmt.Sprintf("nodes: %d, links: %d, stop facilities: %d, lines: %d, routes: %d, vehicle types: %d, vehicles: %d",
		stats.Nodes, stats.Links, stats.StopFacilities, stats.Lines, stats.Routes, stats.VehicleTypes, stats.Vehicles)
}

func (scenario *Scenario) Stats() ScenarioStats {
	return ScenarioStats{
		Nodes:          scenario.Network.NodesNum(),
		Links:          scenario.Network.LinksNum(),
		StopFacilities: scenario.Schedule.StopFacilitiesNum(),
		Lines:          scenario.Schedule.TransitLinesNum(),
		Routes:         scenario.Schedule.TransitRoutesNum(),
		VehicleTypes:   scenario.Fleet.VehicleTypesNum(),
		Vehicles:       scenario.Fleet.VehiclesNum(),
	}
}

// Assemble merges datasets into the base one: every dataset network is tagged with its mode and merged,
// then every schedule is re-tagged and merged, then every fleet is merged.
// Base network is not tagged (road is implicit).
//
// It is all-or-nothing: base is cloned up front, so on any error base stays intact and no scenario is returned.
// Dataset networks and schedules are tagged in place.
func Assemble(cfg AssemblyConfig, base ModeDataset, datasets ...ModeDataset) (*Scenario, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	st := time.Now()
	runID := uuid.New().String()
	logger = logger.With("run_id", runID)

	if base.Network == nil {
		return nil, fmt.Errorf("Base dataset '%s' has no network", base.Name)
	}
	network := base.Network.Clone()
	schedule := NewTransitSchedule(base.Name)
	if base.Schedule != nil {
		schedule = base.Schedule.Clone()
	}
	fleet := NewVehicleFleet(base.Name)
	if base.Fleet != nil {
		fleet = base.Fleet.Clone()
	}
	logger.Info("base dataset", "dataset", base.Name, "nodes", network.NodesNum(), "links", network.LinksNum())

	for _, dataset := range datasets {
		if dataset.Network == nil {
			continue
		}
		if dataset.Mode != MODE_UNDEFINED {
			TagNetworkMode(dataset.Network, dataset.Mode)
		}
		err := MergeNetworks(network, dataset.Network)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't merge network of dataset '%s'", dataset.Name)
		}
		logger.Info("network merged", "dataset", dataset.Name, "mode", dataset.Mode.String(), "nodes", dataset.Network.NodesNum(), "links", dataset.Network.LinksNum())
	}

	for _, dataset := range datasets {
		if dataset.Schedule == nil {
			continue
		}
		if dataset.Mode != MODE_UNDEFINED {
			TagScheduleMode(dataset.Schedule, dataset.Mode)
		}
		err := MergeSchedules(schedule, dataset.Schedule)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't merge schedule of dataset '%s'", dataset.Name)
		}
		logger.Info("schedule merged", "dataset", dataset.Name, "stop_facilities", dataset.Schedule.StopFacilitiesNum(), "lines", dataset.Schedule.TransitLinesNum())
	}

	for _, dataset := range datasets {
		if dataset.Fleet == nil {
			continue
		}
		err := MergeVehicleFleets(fleet, dataset.Fleet)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't merge vehicles of dataset '%s'", dataset.Name)
		}
		logger.Info("vehicles merged", "dataset", dataset.Name, "vehicle_types", dataset.Fleet.VehicleTypesNum(), "vehicles", dataset.Fleet.VehiclesNum())
	}

	if cfg.ValidateReferences {
		err := validateReferences(network, schedule, fleet)
		if err != nil {
			return nil, errors.Wrap(err, "Merged scenario is inconsistent")
		}
	}

	selectorOptions := append([]func(*ModeChoiceSelector){WithLogger(logger)}, cfg.SelectorOptions...)
	scenario := &Scenario{
		RunID:    runID,
		Network:  network,
		Schedule: schedule,
		Fleet:    fleet,
		Selector: NewModeChoiceSelector(cfg.Selector, selectorOptions...),
	}
	logger.Info("scenario assembled", "stats", scenario.Stats().String(), "elapsed", time.Since(st))
	return scenario, nil
}

// validateReferences checks references between merged network, schedule and fleet
func validateReferences(network *Network, schedule *TransitSchedule, fleet *VehicleFleet) error {
	for _, facility := range schedule.StopFacilities() {
		if facility.LinkID == "" {
			continue
		}
		if _, ok := network.Link(facility.LinkID); !ok {
			return danglingErr(schedule.Name, ENTITY_STOP_FACILITY, string(facility.ID), ENTITY_LINK, string(facility.LinkID))
		}
	}
	for _, line := range schedule.Lines() {
		for _, route := range line.Routes() {
			for _, linkID := range route.LinkIDs {
				if _, ok := network.Link(linkID); !ok {
					return danglingErr(schedule.Name, ENTITY_TRANSIT_ROUTE, string(route.ID), ENTITY_LINK, string(linkID))
				}
			}
			if route.VehicleTypeID != "" {
				if _, ok := fleet.VehicleType(route.VehicleTypeID); !ok {
					return danglingErr(schedule.Name, ENTITY_TRANSIT_ROUTE, string(route.ID), ENTITY_VEHICLE_TYPE, string(route.VehicleTypeID))
				}
			}
			for _, departure := range route.Departures {
				if departure.VehicleID == "" {
					continue
				}
				if _, ok := fleet.Vehicle(departure.VehicleID); !ok {
					return danglingErr(schedule.Name, ENTITY_TRANSIT_ROUTE, string(route.ID), ENTITY_VEHICLE, string(departure.VehicleID))
				}
			}
		}
	}
	return nil
}
