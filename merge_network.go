package multimodal

// MergeNetworks adds every node and link of each source network into target.
//
// Identifiers are kept as they are. Any collision (with target or with previous source of the same call)
// gives DuplicateIdentifierError. Links must reference nodes of target or of the same source,
// otherwise DanglingReferenceError is returned.
//
// Whole call is validated before target is touched: on error target stays exactly the same.
func MergeNetworks(target *Network, sources ...*Network) error {
	seenNodes := make(map[NetworkNodeID]struct{})
	seenLinks := make(map[NetworkLinkID]struct{})
	for _, source := range sources {
		for _, id := range source.NodeIDs() {
			if _, ok := target.nodes[id]; ok {
				return duplicateErr(source.Name, ENTITY_NODE, string(id))
			}
			if _, ok := seenNodes[id]; ok {
				return duplicateErr(source.Name, ENTITY_NODE, string(id))
			}
			seenNodes[id] = struct{}{}
		}
	}
	for _, source := range sources {
		for _, id := range source.LinkIDs() {
			link := source.links[id]
			if _, ok := target.links[id]; ok {
				return duplicateErr(source.Name, ENTITY_LINK, string(id))
			}
			if _, ok := seenLinks[id]; ok {
				return duplicateErr(source.Name, ENTITY_LINK, string(id))
			}
			seenLinks[id] = struct{}{}
			for _, nodeID := range []NetworkNodeID{link.SourceNodeID, link.TargetNodeID} {
				_, inSource := source.nodes[nodeID]
				_, inTarget := target.nodes[nodeID]
				if !inSource && !inTarget {
					return danglingErr(source.Name, ENTITY_LINK, string(id), ENTITY_NODE, string(nodeID))
				}
			}
		}
	}

	for _, source := range sources {
		for id, node := range source.nodes {
			target.nodes[id] = node
		}
		for id, link := range source.links {
			target.links[id] = link
		}
	}
	return nil
}
