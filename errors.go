package multimodal

import (
	"fmt"

	"github.com/pkg/errors"
)

type EntityKind uint16

const (
	ENTITY_NODE = EntityKind(iota + 1)
	ENTITY_LINK
	ENTITY_STOP_FACILITY
	ENTITY_TRANSIT_LINE
	ENTITY_TRANSIT_ROUTE
	ENTITY_VEHICLE_TYPE
	ENTITY_VEHICLE
)

var entityKindNames = [...]string{"node", "link", "stop facility", "transit line", "transit route", "vehicle type", "vehicle"}

func (iotaIdx EntityKind) String() string {
	if iotaIdx == 0 || int(iotaIdx) > len(entityKindNames) {
		return "undefined"
	}
	return entityKindNames[iotaIdx-1]
}

var (
	// ErrRouteModeUndefined is returned when a transit route reaches schedule merge without declared transit mode
	ErrRouteModeUndefined = errors.New("transit route has no transit mode")
)

// DuplicateIdentifierError is returned when an identifier of a merged entity already exists in target
type DuplicateIdentifierError struct {
	Dataset string
	Kind    EntityKind
	ID      string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("dataset '%s': duplicate %s id '%s'", e.Dataset, e.Kind, e.ID)
}

// DanglingReferenceError is returned when an entity references another entity which does not exist
type DanglingReferenceError struct {
	Dataset string
	Kind    EntityKind
	ID      string
	RefKind EntityKind
	RefID   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dataset '%s': %s '%s' references unknown %s '%s'", e.Dataset, e.Kind, e.ID, e.RefKind, e.RefID)
}

// InsufficientContextError describes trip which can't be decided by the selector
type InsufficientContextError struct {
	PersonID PersonID
	Reason   string
}

func (e *InsufficientContextError) Error() string {
	return fmt.Sprintf("person '%s': insufficient trip context: %s", e.PersonID, e.Reason)
}

func duplicateErr(dataset string, kind EntityKind, id string) error {
	return errors.WithStack(&DuplicateIdentifierError{Dataset: dataset, Kind: kind, ID: id})
}

func danglingErr(dataset string, kind EntityKind, id string, refKind EntityKind, refID string) error {
	return errors.WithStack(&DanglingReferenceError{Dataset: dataset, Kind: kind, ID: id, RefKind: refKind, RefID: refID})
}
