package multimodal

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type xmlNetwork struct {
	XMLName xml.Name    `xml:"network"`
	Name    string      `xml:"name,attr"`
	Nodes   []xmlNode   `xml:"nodes>node"`
	Links   xmlLinkList `xml:"links"`
}

type xmlNode struct {
	ID string  `xml:"id,attr"`
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
}

type xmlLinkList struct {
	CapacityPeriod string    `xml:"capperiod,attr"`
	Links          []xmlLink `xml:"link"`
}

type xmlLink struct {
	ID        string  `xml:"id,attr"`
	From      string  `xml:"from,attr"`
	To        string  `xml:"to,attr"`
	Length    float64 `xml:"length,attr"`
	FreeSpeed float64 `xml:"freespeed,attr"`
	Capacity  float64 `xml:"capacity,attr"`
	PermLanes float64 `xml:"permlanes,attr"`
	Modes     string  `xml:"modes,attr"`
	Type      string  `xml:"type,attr"`
}

// ReadNetworkXML reads network in engine XML format:
//
//	<network name="...">
//		<nodes><node id="..." x="..." y="..."/></nodes>
//		<links capperiod="01:00:00"><link id="..." from="..." to="..." length="..." freespeed="..." capacity="..." permlanes="..." modes="car,pt"/></links>
//	</network>
//
// Capacity is rescaled to vehicles per hour. Missing lanes, free speed and capacity are filled by link type defaults
func ReadNetworkXML(r io.Reader, name string) (*Network, error) {
	doc := xmlNetwork{}
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode XML")
	}
	if name == "" {
		name = doc.Name
	}
	capacityScale := 1.0
	if period := strings.TrimSpace(doc.Links.CapacityPeriod); period != "" {
		duration, err := parseClockTime(period)
		if err != nil {
			return nil, errors.Wrap(err, "Can't parse capacity period")
		}
		if duration <= 0 {
			return nil, fmt.Errorf("Capacity period must be positive, but got '%s'", period)
		}
		capacityScale = 3600.0 / duration.Seconds()
	}

	net := NewNetwork(name)
	for _, node := range doc.Nodes {
		err = net.AddNode(&NetworkNode{
			ID:    NetworkNodeID(node.ID),
			Coord: orb.Point{node.X, node.Y},
		})
		if err != nil {
			return nil, err
		}
	}
	for _, xl := range doc.Links.Links {
		modes, err := ParseModeSet(xl.Modes)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse modes of link '%s'", xl.ID)
		}
		link := &NetworkLink{
			ID:           NetworkLinkID(xl.ID),
			SourceNodeID: NetworkNodeID(xl.From),
			TargetNodeID: NetworkNodeID(xl.To),
			AllowedModes: modes,
			LengthMeters: xl.Length,
			FreeSpeed:    xl.FreeSpeed,
			Capacity:     xl.Capacity * capacityScale,
			Lanes:        xl.PermLanes,
			LinkType:     parseLinkType(xl.Type),
		}
		applyLinkDefaults(link)
		err = net.AddLink(link)
		if err != nil {
			return nil, err
		}
	}
	return net, nil
}
