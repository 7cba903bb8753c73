package multimodal

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type xmlTransitSchedule struct {
	XMLName xml.Name          `xml:"transitSchedule"`
	Stops   []xmlStopFacility `xml:"transitStops>stopFacility"`
	Lines   []xmlTransitLine  `xml:"transitLine"`
}

type xmlStopFacility struct {
	ID      string  `xml:"id,attr"`
	Name    string  `xml:"name,attr"`
	X       float64 `xml:"x,attr"`
	Y       float64 `xml:"y,attr"`
	LinkRef string  `xml:"linkRefId,attr"`
}

type xmlTransitLine struct {
	ID     string            `xml:"id,attr"`
	Name   string            `xml:"name,attr"`
	Routes []xmlTransitRoute `xml:"transitRoute"`
}

type xmlTransitRoute struct {
	ID            string         `xml:"id,attr"`
	TransportMode string         `xml:"transportMode"`
	Stops         []xmlRouteStop `xml:"routeProfile>stop"`
	Links         []xmlRouteLink `xml:"route>link"`
	Departures    []xmlDeparture `xml:"departures>departure"`
	Attributes    []xmlAttribute `xml:"attributes>attribute"`
}

type xmlRouteStop struct {
	RefID           string `xml:"refId,attr"`
	ArrivalOffset   string `xml:"arrivalOffset,attr"`
	DepartureOffset string `xml:"departureOffset,attr"`
	AwaitDeparture  string `xml:"awaitDeparture,attr"`
}

type xmlRouteLink struct {
	RefID string `xml:"refId,attr"`
}

type xmlDeparture struct {
	ID            string `xml:"id,attr"`
	DepartureTime string `xml:"departureTime,attr"`
	VehicleRefID  string `xml:"vehicleRefId,attr"`
}

type xmlAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Route attribute which references vehicle type of the route
const vehicleTypeAttribute = "vehicleType"

// ReadScheduleXML reads transit schedule in engine XML format.
// Unknown route transport modes are kept as MODE_UNDEFINED: schedule must be tagged before merging
func ReadScheduleXML(r io.Reader, name string) (*TransitSchedule, error) {
	doc := xmlTransitSchedule{}
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode XML")
	}
	schedule := NewTransitSchedule(name)
	for _, stop := range doc.Stops {
		err = schedule.AddStopFacility(&TransitStopFacility{
			ID:     StopFacilityID(stop.ID),
			Name:   stop.Name,
			Coord:  orb.Point{stop.X, stop.Y},
			LinkID: NetworkLinkID(stop.LinkRef),
		})
		if err != nil {
			return nil, err
		}
	}
	for _, xl := range doc.Lines {
		line := NewTransitLine(TransitLineID(xl.ID), xl.Name)
		for _, xr := range xl.Routes {
			route, err := xr.toRoute()
			if err != nil {
				return nil, errors.Wrapf(err, "Can't parse route '%s' of line '%s'", xr.ID, xl.ID)
			}
			err = line.AddRoute(route)
			if err != nil {
				return nil, err
			}
		}
		err = schedule.AddTransitLine(line)
		if err != nil {
			return nil, err
		}
	}
	return schedule, nil
}

func (xr *xmlTransitRoute) toRoute() (*TransitRoute, error) {
	mode, err := ParseTransportMode(xr.TransportMode)
	if err != nil {
		mode = MODE_UNDEFINED
	}
	route := &TransitRoute{
		ID:            TransitRouteID(xr.ID),
		TransportMode: mode,
		Stops:         make([]TransitRouteStop, 0, len(xr.Stops)),
		LinkIDs:       make([]NetworkLinkID, 0, len(xr.Links)),
		Departures:    make([]Departure, 0, len(xr.Departures)),
	}
	for _, attr := range xr.Attributes {
		if attr.Name == vehicleTypeAttribute {
			route.VehicleTypeID = VehicleTypeID(strings.TrimSpace(attr.Value))
		}
	}
	for _, stop := range xr.Stops {
		arrival, err := parseClockTime(stop.ArrivalOffset)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse arrival offset of stop '%s'", stop.RefID)
		}
		departure, err := parseClockTime(stop.DepartureOffset)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse departure offset of stop '%s'", stop.RefID)
		}
		route.Stops = append(route.Stops, TransitRouteStop{
			StopID:          StopFacilityID(stop.RefID),
			ArrivalOffset:   arrival,
			DepartureOffset: departure,
			AwaitDeparture:  strings.EqualFold(stop.AwaitDeparture, "true"),
		})
	}
	for _, link := range xr.Links {
		route.LinkIDs = append(route.LinkIDs, NetworkLinkID(link.RefID))
	}
	for _, dep := range xr.Departures {
		departureTime, err := parseClockTime(dep.DepartureTime)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse time of departure '%s'", dep.ID)
		}
		route.Departures = append(route.Departures, Departure{
			ID:            DepartureID(dep.ID),
			DepartureTime: departureTime,
			VehicleID:     VehicleID(dep.VehicleRefID),
		})
	}
	return route, nil
}
