package multimodal

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type xmlVehicleDefinitions struct {
	XMLName  xml.Name         `xml:"vehicleDefinitions"`
	Types    []xmlVehicleType `xml:"vehicleType"`
	Vehicles []xmlVehicle     `xml:"vehicle"`
}

type xmlVehicleType struct {
	ID          string `xml:"id,attr"`
	Description string `xml:"description"`
	Capacity    struct {
		Seats        int `xml:"seats,attr"`
		StandingRoom int `xml:"standingRoomInPersons,attr"`
	} `xml:"capacity"`
	Length struct {
		Meter float64 `xml:"meter,attr"`
	} `xml:"length"`
	MaximumVelocity struct {
		MeterPerSecond float64 `xml:"meterPerSecond,attr"`
	} `xml:"maximumVelocity"`
	PassengerCarEquivalents struct {
		PCE float64 `xml:"pce,attr"`
	} `xml:"passengerCarEquivalents"`
	Attributes []xmlAttribute `xml:"attributes>attribute"`
}

type xmlVehicle struct {
	ID         string         `xml:"id,attr"`
	Type       string         `xml:"type,attr"`
	Attributes []xmlAttribute `xml:"attributes>attribute"`
}

const (
	accessTimeAttribute  = "accessTimeInSecondsPerPerson"
	egressTimeAttribute  = "egressTimeInSecondsPerPerson"
	startTimeAttribute   = "startTime"
	defaultPCE           = 1.0
	defaultMaxVelocityMS = 1000.0
)

// ReadVehiclesXML reads vehicle types and vehicles in engine XML format (definitions v2)
func ReadVehiclesXML(r io.Reader, name string) (*VehicleFleet, error) {
	doc := xmlVehicleDefinitions{}
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode XML")
	}
	fleet := NewVehicleFleet(name)
	for _, xt := range doc.Types {
		vt := &VehicleType{
			ID:               VehicleTypeID(xt.ID),
			Description:      strings.TrimSpace(xt.Description),
			SeatsCapacity:    xt.Capacity.Seats,
			StandingCapacity: xt.Capacity.StandingRoom,
			LengthMeters:     xt.Length.Meter,
			MaxVelocity:      xt.MaximumVelocity.MeterPerSecond,
			PCE:              xt.PassengerCarEquivalents.PCE,
		}
		if vt.PCE <= 0 {
			vt.PCE = defaultPCE
		}
		if vt.MaxVelocity <= 0 {
			vt.MaxVelocity = defaultMaxVelocityMS
		}
		for _, attr := range xt.Attributes {
			switch attr.Name {
			case accessTimeAttribute:
				vt.AccessTime, err = parseSeconds(attr.Value)
			case egressTimeAttribute:
				vt.EgressTime, err = parseSeconds(attr.Value)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "Can't parse attribute '%s' of vehicle type '%s'", attr.Name, xt.ID)
			}
		}
		err = fleet.AddVehicleType(vt)
		if err != nil {
			return nil, err
		}
	}
	for _, xv := range doc.Vehicles {
		vehicle := &Vehicle{
			ID:     VehicleID(xv.ID),
			TypeID: VehicleTypeID(xv.Type),
		}
		for _, attr := range xv.Attributes {
			if attr.Name != startTimeAttribute {
				continue
			}
			vehicle.StartTime, err = parseSeconds(attr.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't parse start time of vehicle '%s'", xv.ID)
			}
		}
		err = fleet.AddVehicle(vehicle)
		if err != nil {
			return nil, err
		}
	}
	return fleet, nil
}

func parseSeconds(str string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
