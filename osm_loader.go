package multimodal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// roadNode is OSM node referenced by imported ways
type roadNode struct {
	ID       osm.NodeID
	coord    orb.Point
	useCount int
}

// roadSegment is a part of way between two intersections
type roadSegment struct {
	way    *roadWay
	index  int
	source osm.NodeID
	target osm.NodeID
	geom   orb.LineString
}

func newOSMScanner(file *os.File, filename string) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}

// ImportRoadNetwork reads OSM file and builds road network of configured highways.
// Ways are split at intersections (nodes used more than once), every segment gives one link per allowed direction
func (parser *Parser) ImportRoadNetwork() (*Network, error) {
	if parser.verbose {
		fmt.Printf("Opening file: '%s'...\n", parser.filename)
	}
	file, err := os.Open(parser.filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	allowed := make(map[HighwayType]struct{}, len(parser.highwayTags))
	for _, tag := range parser.highwayTags {
		highway := getHighwayType(strings.TrimSpace(tag))
		if highway == 0 {
			if parser.verbose {
				fmt.Printf("[WARNING]: Unknown highway tag '%s' has been ignored\n", tag)
			}
			continue
		}
		allowed[highway] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("No known highway tags among '%s'", strings.Join(parser.highwayTags, ","))
	}

	/* Process ways */
	if parser.verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st := time.Now()
	ways, nodesSeen, err := parser.scanWays(file, allowed)
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan ways")
	}
	if parser.verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n", time.Since(st), len(ways))
	}

	// Seek file to start
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking after ways scanning")
	}

	/* Process nodes */
	if parser.verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	nodes, err := parser.scanNodes(file, nodesSeen)
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan nodes")
	}
	if parser.verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(nodes))
	}

	if parser.verbose {
		fmt.Printf("\tPreparing segments... ")
	}
	st = time.Now()
	segments, err := splitWays(ways, nodes)
	if err != nil {
		return nil, errors.Wrap(err, "Can't split ways")
	}
	if parser.verbose {
		fmt.Printf("Done in %v\n\tSegments: %d\n", time.Since(st), len(segments))
	}

	if parser.verbose {
		fmt.Printf("\tPreparing network... ")
	}
	st = time.Now()
	net, err := parser.buildNetwork(segments, nodes)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare road network")
	}
	if parser.verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n\tLinks: %d\n", time.Since(st), net.NodesNum(), net.LinksNum())
	}
	return net, nil
}

func (parser *Parser) scanWays(file *os.File, allowed map[HighwayType]struct{}) ([]*roadWay, map[osm.NodeID]struct{}, error) {
	scanner, err := newOSMScanner(file, parser.filename)
	if err != nil {
		return nil, nil, err
	}
	defer scanner.Close()

	ways := []*roadWay{}
	nodesSeen := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		highway := getHighwayType(way.Tags.Find("highway"))
		if _, ok := allowed[highway]; !ok {
			continue
		}
		if !carAllowed(way.Tags) {
			continue
		}
		if len(way.Nodes) < 2 {
			continue
		}
		prepared := newRoadWay(way, highway, parser.verbose)
		for _, nodeID := range prepared.Nodes {
			nodesSeen[nodeID] = struct{}{}
		}
		ways = append(ways, prepared)
	}
	err = scanner.Err()
	if err != nil {
		return nil, nil, err
	}
	return ways, nodesSeen, nil
}

func (parser *Parser) scanNodes(file *os.File, nodesSeen map[osm.NodeID]struct{}) (map[osm.NodeID]*roadNode, error) {
	scanner, err := newOSMScanner(file, parser.filename)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	nodes := make(map[osm.NodeID]*roadNode, len(nodesSeen))
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; !ok {
			continue
		}
		nodes[node.ID] = &roadNode{
			ID:    node.ID,
			coord: orb.Point{node.Lon, node.Lat},
		}
	}
	err = scanner.Err()
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// splitWays cuts ways at nodes which are shared between ways (or used twice by the same way)
func splitWays(ways []*roadWay, nodes map[osm.NodeID]*roadNode) ([]roadSegment, error) {
	for _, way := range ways {
		for i, nodeID := range way.Nodes {
			node, ok := nodes[nodeID]
			if !ok {
				return nil, fmt.Errorf("Missing node with id: %d. Way ID: %d", nodeID, way.ID)
			}
			if i == 0 || i == len(way.Nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}
	segments := []roadSegment{}
	for _, way := range ways {
		source := way.Nodes[0]
		geom := orb.LineString{nodes[source].coord}
		index := 0
		for i := 1; i < len(way.Nodes); i++ {
			node := nodes[way.Nodes[i]]
			geom = append(geom, node.coord)
			if node.useCount < 2 {
				continue
			}
			segments = append(segments, roadSegment{
				way:    way,
				index:  index,
				source: source,
				target: node.ID,
				geom:   geom,
			})
			index++
			source = node.ID
			geom = orb.LineString{node.coord}
		}
	}
	return segments, nil
}

func (parser *Parser) buildNetwork(segments []roadSegment, nodes map[osm.NodeID]*roadNode) (*Network, error) {
	net := NewNetwork(parser.networkName)
	for _, segment := range segments {
		for _, nodeID := range []osm.NodeID{segment.source, segment.target} {
			id := parser.nodeID(nodeID)
			if _, ok := net.Node(id); ok {
				continue
			}
			err := net.AddNode(&NetworkNode{ID: id, Coord: nodes[nodeID].coord})
			if err != nil {
				return nil, err
			}
		}
	}
	for _, segment := range segments {
		length := geo.LengthHaversign(segment.geom)
		way := segment.way
		forward := !way.isReversed
		backward := !way.oneway || way.isReversed
		if forward {
			err := net.AddLink(parser.newRoadLink(segment, length, true))
			if err != nil {
				return nil, err
			}
		}
		if backward {
			err := net.AddLink(parser.newRoadLink(segment, length, false))
			if err != nil {
				return nil, err
			}
		}
	}
	return net, nil
}

func (parser *Parser) nodeID(id osm.NodeID) NetworkNodeID {
	return NetworkNodeID(fmt.Sprintf("%s%d", parser.idPrefix, id))
}

func (parser *Parser) newRoadLink(segment roadSegment, length float64, forward bool) *NetworkLink {
	way := segment.way
	source, target, suffix := segment.source, segment.target, "f"
	if !forward {
		source, target, suffix = segment.target, segment.source, "b"
	}
	link := &NetworkLink{
		ID:           NetworkLinkID(fmt.Sprintf("%s%d_%d_%s", parser.idPrefix, way.ID, segment.index, suffix)),
		SourceNodeID: parser.nodeID(source),
		TargetNodeID: parser.nodeID(target),
		AllowedModes: NewModeSet(MODE_CAR),
		LengthMeters: length,
		Lanes:        float64(way.directionLanes(forward)),
		LinkType:     way.linkType,
	}
	if way.maxSpeed > 0 {
		link.FreeSpeed = way.maxSpeed / 3.6
	}
	applyLinkDefaults(link)
	return link
}
