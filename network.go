package multimodal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// Network is a graph of transport infrastructure: nodes and mode-tagged links
type Network struct {
	Name  string
	nodes map[NetworkNodeID]*NetworkNode
	links map[NetworkLinkID]*NetworkLink
}

func NewNetwork(name string) *Network {
	return &Network{
		Name:  name,
		nodes: make(map[NetworkNodeID]*NetworkNode),
		links: make(map[NetworkLinkID]*NetworkLink),
	}
}

// AddNode adds node to the network. Node identifier must be unique
func (net *Network) AddNode(node *NetworkNode) error {
	if _, ok := net.nodes[node.ID]; ok {
		return duplicateErr(net.Name, ENTITY_NODE, string(node.ID))
	}
	net.nodes[node.ID] = node
	return nil
}

// AddLink adds link to the network. Link identifier must be unique and both source and target nodes must exist
func (net *Network) AddLink(link *NetworkLink) error {
	if _, ok := net.links[link.ID]; ok {
		return duplicateErr(net.Name, ENTITY_LINK, string(link.ID))
	}
	if _, ok := net.nodes[link.SourceNodeID]; !ok {
		return danglingErr(net.Name, ENTITY_LINK, string(link.ID), ENTITY_NODE, string(link.SourceNodeID))
	}
	if _, ok := net.nodes[link.TargetNodeID]; !ok {
		return danglingErr(net.Name, ENTITY_LINK, string(link.ID), ENTITY_NODE, string(link.TargetNodeID))
	}
	if link.AllowedModes == nil {
		link.AllowedModes = make(ModeSet)
	}
	net.links[link.ID] = link
	return nil
}

func (net *Network) Node(id NetworkNodeID) (*NetworkNode, bool) {
	node, ok := net.nodes[id]
	return node, ok
}

func (net *Network) Link(id NetworkLinkID) (*NetworkLink, bool) {
	link, ok := net.links[id]
	return link, ok
}

func (net *Network) NodesNum() int {
	return len(net.nodes)
}

func (net *Network) LinksNum() int {
	return len(net.links)
}

// NodeIDs returns sorted identifiers of nodes
func (net *Network) NodeIDs() []NetworkNodeID {
	ids := make([]NetworkNodeID, 0, len(net.nodes))
	for id := range net.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

// LinkIDs returns sorted identifiers of links
func (net *Network) LinkIDs() []NetworkLinkID {
	ids := make([]NetworkLinkID, 0, len(net.links))
	for id := range net.links {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns copy of the network. Nodes are shared (they are never mutated after creation), links are copied
func (net *Network) Clone() *Network {
	cloned := &Network{
		Name:  net.Name,
		nodes: make(map[NetworkNodeID]*NetworkNode, len(net.nodes)),
		links: make(map[NetworkLinkID]*NetworkLink, len(net.links)),
	}
	for id, node := range net.nodes {
		cloned.nodes[id] = node
	}
	for id, link := range net.links {
		cloned.links[id] = link.clone()
	}
	return cloned
}

// LinkGeometry returns straight line between link's source and target nodes
func (net *Network) LinkGeometry(id NetworkLinkID) (orb.LineString, bool) {
	link, ok := net.links[id]
	if !ok {
		return nil, false
	}
	source, ok := net.nodes[link.SourceNodeID]
	if !ok {
		return nil, false
	}
	target, ok := net.nodes[link.TargetNodeID]
	if !ok {
		return nil, false
	}
	return orb.LineString{source.Coord, target.Coord}, true
}

// ExportToCSV writes nodes and links into two separate files: 'X_nodes.csv' and 'X_links.csv' for given 'X.csv'
func (net *Network) ExportToCSV(fname string) error {

	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fnameParts[0] + "_nodes.csv"
	fnameLinks := fnameParts[0] + "_links.csv"

	err := net.exportNodesToCSV(fnameNodes)
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}

	err = net.exportLinksToCSV(fnameLinks)
	if err != nil {
		return errors.Wrap(err, "Can't export links")
	}
	return nil
}

func (net *Network) exportLinksToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "source_node", "target_node", "link_type", "allowed_modes", "lanes", "free_speed", "capacity", "length_meters", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, linkID := range net.LinkIDs() {
		link := net.links[linkID]
		geom, _ := net.LinkGeometry(linkID)
		err = writer.Write([]string{
			string(link.ID),
			string(link.SourceNodeID),
			string(link.TargetNodeID),
			link.LinkType.String(),
			link.AllowedModes.String(),
			fmt.Sprintf("%f", link.Lanes),
			fmt.Sprintf("%f", link.FreeSpeed),
			fmt.Sprintf("%f", link.Capacity),
			fmt.Sprintf("%f", link.LengthMeters),
			wkt.MarshalString(geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write link")
		}
	}
	return nil
}

func (net *Network) exportNodesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "x", "y", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, nodeID := range net.NodeIDs() {
		node := net.nodes[nodeID]
		err = writer.Write([]string{
			string(node.ID),
			fmt.Sprintf("%f", node.Coord.X()),
			fmt.Sprintf("%f", node.Coord.Y()),
			wkt.MarshalString(node.Coord),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}

// ExportToGeoJSON writes links as GeoJSON FeatureCollection of LineStrings
func (net *Network) ExportToGeoJSON(w io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, linkID := range net.LinkIDs() {
		link := net.links[linkID]
		geom, ok := net.LinkGeometry(linkID)
		if !ok {
			continue
		}
		pts := make([][]float64, len(geom))
		for i, pt := range geom {
			pts[i] = []float64{pt.X(), pt.Y()}
		}
		feature := geojson.NewLineStringFeature(pts)
		feature.ID = string(link.ID)
		feature.SetProperty("source_node", string(link.SourceNodeID))
		feature.SetProperty("target_node", string(link.TargetNodeID))
		feature.SetProperty("allowed_modes", link.AllowedModes.String())
		feature.SetProperty("link_type", link.LinkType.String())
		feature.SetProperty("capacity", link.Capacity)
		feature.SetProperty("free_speed", link.FreeSpeed)
		feature.SetProperty("length_meters", link.LengthMeters)
		fc.AddFeature(feature)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal GeoJSON")
	}
	_, err = w.Write(b)
	if err != nil {
		return errors.Wrap(err, "Can't write GeoJSON")
	}
	return nil
}
