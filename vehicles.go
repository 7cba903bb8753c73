package multimodal

import (
	"sort"
	"time"
)

type (
	VehicleTypeID string
	VehicleID     string
)

type VehicleType struct {
	ID               VehicleTypeID
	Description      string
	SeatsCapacity    int
	StandingCapacity int
	LengthMeters     float64
	// Meters per second
	MaxVelocity float64
	AccessTime  time.Duration
	EgressTime  time.Duration
	// Passenger car equivalents
	PCE float64
}

// TotalCapacity returns number of passengers vehicle of this type can carry
func (vt *VehicleType) TotalCapacity() int {
	return vt.SeatsCapacity + vt.StandingCapacity
}

type Vehicle struct {
	ID     VehicleID
	TypeID VehicleTypeID
	// Offset since midnight when vehicle enters simulation. Zero if not specified
	StartTime time.Duration
}

// VehicleFleet is a set of vehicle types and vehicle instances
type VehicleFleet struct {
	Name     string
	types    map[VehicleTypeID]*VehicleType
	vehicles map[VehicleID]*Vehicle
}

func NewVehicleFleet(name string) *VehicleFleet {
	return &VehicleFleet{
		Name:     name,
		types:    make(map[VehicleTypeID]*VehicleType),
		vehicles: make(map[VehicleID]*Vehicle),
	}
}

func (fleet *VehicleFleet) AddVehicleType(vt *VehicleType) error {
	if _, ok := fleet.types[vt.ID]; ok {
		return duplicateErr(fleet.Name, ENTITY_VEHICLE_TYPE, string(vt.ID))
	}
	fleet.types[vt.ID] = vt
	return nil
}

// AddVehicle adds vehicle to the fleet. Type of the vehicle must be known to the fleet
func (fleet *VehicleFleet) AddVehicle(vehicle *Vehicle) error {
	if _, ok := fleet.vehicles[vehicle.ID]; ok {
		return duplicateErr(fleet.Name, ENTITY_VEHICLE, string(vehicle.ID))
	}
	if _, ok := fleet.types[vehicle.TypeID]; !ok {
		return danglingErr(fleet.Name, ENTITY_VEHICLE, string(vehicle.ID), ENTITY_VEHICLE_TYPE, string(vehicle.TypeID))
	}
	fleet.vehicles[vehicle.ID] = vehicle
	return nil
}

func (fleet *VehicleFleet) VehicleType(id VehicleTypeID) (*VehicleType, bool) {
	vt, ok := fleet.types[id]
	return vt, ok
}

func (fleet *VehicleFleet) Vehicle(id VehicleID) (*Vehicle, bool) {
	vehicle, ok := fleet.vehicles[id]
	return vehicle, ok
}

func (fleet *VehicleFleet) VehicleTypesNum() int {
	return len(fleet.types)
}

func (fleet *VehicleFleet) VehiclesNum() int {
	return len(fleet.vehicles)
}

// VehicleTypes returns vehicle types sorted by identifier
func (fleet *VehicleFleet) VehicleTypes() []*VehicleType {
	types := make([]*VehicleType, 0, len(fleet.types))
	for _, vt := range fleet.types {
		types = append(types, vt)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].ID < types[j].ID
	})
	return types
}

// Vehicles returns vehicles sorted by identifier
func (fleet *VehicleFleet) Vehicles() []*Vehicle {
	vehicles := make([]*Vehicle, 0, len(fleet.vehicles))
	for _, vehicle := range fleet.vehicles {
		vehicles = append(vehicles, vehicle)
	}
	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].ID < vehicles[j].ID
	})
	return vehicles
}

func (fleet *VehicleFleet) Clone() *VehicleFleet {
	cloned := &VehicleFleet{
		Name:     fleet.Name,
		types:    make(map[VehicleTypeID]*VehicleType, len(fleet.types)),
		vehicles: make(map[VehicleID]*Vehicle, len(fleet.vehicles)),
	}
	for id, vt := range fleet.types {
		cloned.types[id] = vt
	}
	for id, vehicle := range fleet.vehicles {
		cloned.vehicles[id] = vehicle
	}
	return cloned
}
