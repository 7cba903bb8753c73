package multimodal

// MergeVehicleFleets adds vehicle types and vehicles of source into target.
//
// Every source vehicle must reference a type declared by the source itself, otherwise DanglingReferenceError
// is returned. Collisions give DuplicateIdentifierError. On error target is left untouched.
func MergeVehicleFleets(target, source *VehicleFleet) error {
	for _, vt := range source.VehicleTypes() {
		if _, ok := target.types[vt.ID]; ok {
			return duplicateErr(source.Name, ENTITY_VEHICLE_TYPE, string(vt.ID))
		}
	}
	for _, vehicle := range source.Vehicles() {
		if _, ok := target.vehicles[vehicle.ID]; ok {
			return duplicateErr(source.Name, ENTITY_VEHICLE, string(vehicle.ID))
		}
		if _, ok := source.types[vehicle.TypeID]; !ok {
			return danglingErr(source.Name, ENTITY_VEHICLE, string(vehicle.ID), ENTITY_VEHICLE_TYPE, string(vehicle.TypeID))
		}
	}

	for id, vt := range source.types {
		target.types[id] = vt
	}
	for id, vehicle := range source.vehicles {
		target.vehicles[id] = vehicle
	}
	return nil
}
