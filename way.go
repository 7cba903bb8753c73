package multimodal

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/paulmach/osm"
)

// roadWay is OSM highway prepared for splitting into links
type roadWay struct {
	ID         osm.WayID
	Nodes      []osm.NodeID
	highway    HighwayType
	linkType   LinkType
	oneway     bool
	isReversed bool
	// Negative values mean 'not provided'
	lanes         int
	lanesForward  int
	lanesBackward int
	// km/h
	maxSpeed float64
}

var (
	mphRegExp   = regexp.MustCompile(`^\d+\.?\d*\s*mph$`)
	speedRegExp = regexp.MustCompile(`\d+\.?\d*`)
	lanesRegExp = regexp.MustCompile(`^\d+$`)

	junctionTypes = map[string]struct{}{
		"circular":   {},
		"roundabout": {},
	}
	onewayReversible = map[string]struct{}{
		"reversible":  {},
		"alternating": {},
	}
)

const mphToKmh = 1.609344

func newRoadWay(way *osm.Way, highway HighwayType, verbose bool) *roadWay {
	prepared := &roadWay{
		ID:            way.ID,
		Nodes:         make([]osm.NodeID, 0, len(way.Nodes)),
		highway:       highway,
		linkType:      linkTypeByHighway[highway],
		lanes:         -1,
		lanesForward:  -1,
		lanesBackward: -1,
		maxSpeed:      -1,
	}
	for _, node := range way.Nodes {
		prepared.Nodes = append(prepared.Nodes, node.ID)
	}
	prepared.processOneway(way.Tags, verbose)
	prepared.processTags(way.Tags, verbose)
	return prepared
}

func (way *roadWay) processOneway(tags osm.Tags, verbose bool) {
	onewayText := tags.Find("oneway")
	switch onewayText {
	case "yes", "1", "true":
		way.oneway = true
	case "no", "0", "false":
		way.oneway = false
	case "-1":
		way.oneway = true
		way.isReversed = true
	case "":
		if _, ok := junctionTypes[tags.Find("junction")]; ok {
			way.oneway = true
		} else {
			way.oneway = onewayDefaultByLink[way.linkType]
		}
	default:
		// Time dependent direction: keep both
		if _, ok := onewayReversible[onewayText]; !ok && verbose {
			fmt.Printf("[WARNING]: Unhandled `oneway` tag value has been met: '%s'. Way ID: '%d'\n", onewayText, way.ID)
		}
		way.oneway = false
	}
}

func (way *roadWay) processTags(tags osm.Tags, verbose bool) {
	way.lanes = parseLanesTag(tags.Find("lanes"), "lanes", way.ID, verbose)
	way.lanesForward = parseLanesTag(tags.Find("lanes:forward"), "lanes:forward", way.ID, verbose)
	way.lanesBackward = parseLanesTag(tags.Find("lanes:backward"), "lanes:backward", way.ID, verbose)

	maxSpeed := tags.Find("maxspeed")
	if maxSpeed == "" {
		return
	}
	value := speedRegExp.FindString(maxSpeed)
	if value == "" {
		if verbose {
			fmt.Printf("[WARNING]: Provided `maxspeed` tag value should be a number. Got '%s'. Way ID: '%d'\n", maxSpeed, way.ID)
		}
		return
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	if mphRegExp.MatchString(maxSpeed) {
		speed *= mphToKmh
	}
	way.maxSpeed = speed
}

func parseLanesTag(text, tag string, wayID osm.WayID, verbose bool) int {
	if text == "" {
		return -1
	}
	if !lanesRegExp.MatchString(text) {
		if verbose {
			fmt.Printf("[WARNING]: Provided `%s` tag value should be an integer. Got '%s'. Way ID: '%d'\n", tag, text, wayID)
		}
		return -1
	}
	lanes, err := strconv.Atoi(text)
	if err != nil {
		return -1
	}
	return lanes
}

// directionLanes returns number of lanes for forward or backward direction. Non-positive means 'use default'
func (way *roadWay) directionLanes(forward bool) int {
	if forward && way.lanesForward > 0 {
		return way.lanesForward
	}
	if !forward && way.lanesBackward > 0 {
		return way.lanesBackward
	}
	if way.lanes <= 0 {
		return -1
	}
	if way.oneway {
		return way.lanes
	}
	lanes := way.lanes / 2
	if lanes < 1 {
		lanes = 1
	}
	return lanes
}
