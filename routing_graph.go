package multimodal

import (
	"fmt"
	"time"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// ModeGraph is a routable view of the network restricted to links which allow single mode.
// Edge weight is free flow travel time in seconds (or length in meters when free speed is unknown)
type ModeGraph struct {
	Mode     TransportMode
	graph    ch.Graph
	vertices map[NetworkNodeID]int64
	labels   []NetworkNodeID
	links    map[[2]int64]NetworkLinkID
	prepared bool
}

// BuildModeGraph builds contraction hierarchies graph of links allowing given mode
func BuildModeGraph(net *Network, mode TransportMode) (*ModeGraph, error) {
	mg := &ModeGraph{
		Mode:     mode,
		graph:    ch.Graph{},
		vertices: make(map[NetworkNodeID]int64),
		links:    make(map[[2]int64]NetworkLinkID),
	}
	costs := make(map[[2]int64]float64)
	for _, linkID := range net.LinkIDs() {
		link := net.links[linkID]
		if !link.AllowedModes.Contains(mode) || link.SourceNodeID == link.TargetNodeID {
			continue
		}
		source, err := mg.vertex(link.SourceNodeID)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		target, err := mg.vertex(link.TargetNodeID)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		cost := link.TravelTimeSeconds()
		if cost < 0 {
			cost = link.LengthMeters
		}
		// Parallel links: keep the cheapest one
		key := [2]int64{source, target}
		if prev, ok := costs[key]; ok && prev <= cost {
			continue
		}
		costs[key] = cost
		mg.links[key] = link.ID
	}
	if len(costs) == 0 {
		return nil, fmt.Errorf("No links allow mode '%s' in network '%s'", mode, net.Name)
	}
	for key, cost := range costs {
		err := mg.graph.AddEdge(key[0], key[1], cost)
		if err != nil {
			return nil, errors.Wrap(err, "Can't wrap source and target vertices as edge")
		}
	}
	return mg, nil
}

func (mg *ModeGraph) vertex(id NetworkNodeID) (int64, error) {
	if v, ok := mg.vertices[id]; ok {
		return v, nil
	}
	v := int64(len(mg.labels))
	err := mg.graph.CreateVertex(v)
	if err != nil {
		return -1, err
	}
	mg.vertices[id] = v
	mg.labels = append(mg.labels, id)
	return v, nil
}

func (mg *ModeGraph) VerticesNum() int {
	return len(mg.labels)
}

func (mg *ModeGraph) EdgesNum() int {
	return len(mg.links)
}

// Prepare runs contraction process. It is called implicitly by the first ShortestPath call
func (mg *ModeGraph) Prepare() time.Duration {
	st := time.Now()
	mg.graph.PrepareContractionHierarchies()
	mg.prepared = true
	return time.Since(st)
}

// ShortestPath returns cost and sequence of nodes of the cheapest path between two nodes
func (mg *ModeGraph) ShortestPath(from, to NetworkNodeID) (float64, []NetworkNodeID, error) {
	source, ok := mg.vertices[from]
	if !ok {
		return -1, nil, fmt.Errorf("Node '%s' is not reachable by mode '%s'", from, mg.Mode)
	}
	target, ok := mg.vertices[to]
	if !ok {
		return -1, nil, fmt.Errorf("Node '%s' is not reachable by mode '%s'", to, mg.Mode)
	}
	if source == target {
		return 0, []NetworkNodeID{from}, nil
	}
	if !mg.prepared {
		mg.Prepare()
	}
	cost, path := mg.graph.ShortestPath(source, target)
	if cost < 0 || len(path) == 0 {
		return -1, nil, fmt.Errorf("No path between '%s' and '%s' for mode '%s'", from, to, mg.Mode)
	}
	nodes := make([]NetworkNodeID, len(path))
	for i, v := range path {
		nodes[i] = mg.labels[v]
	}
	return cost, nodes, nil
}

// PathLinks converts sequence of nodes into sequence of links used by the graph
func (mg *ModeGraph) PathLinks(nodes []NetworkNodeID) ([]NetworkLinkID, error) {
	if len(nodes) < 2 {
		return nil, nil
	}
	links := make([]NetworkLinkID, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		key := [2]int64{mg.vertices[nodes[i-1]], mg.vertices[nodes[i]]}
		linkID, ok := mg.links[key]
		if !ok {
			return nil, fmt.Errorf("No link between '%s' and '%s' for mode '%s'", nodes[i-1], nodes[i], mg.Mode)
		}
		links = append(links, linkID)
	}
	return links, nil
}
