package partition

import "github.com/gilchrisn/hgpartition/pkg/hgraph"

// ExtractionMapping records how ExtractBlock renumbered the surviving
// vertices: ToExtracted maps an original NodeID to its id in the
// extracted hypergraph (InvalidNodeID if the vertex was not in the
// requested block), FromExtracted is the inverse.
type ExtractionMapping struct {
	ToExtracted   []hgraph.NodeID
	FromExtracted []hgraph.NodeID
}

// ExtractBlock builds the sub-hypergraph induced by block b.
// With cutNetSplitting, a hyperedge spanning multiple blocks is projected
// onto b (keeping only its pins in b) if that projection would still have
// ≥2 pins; otherwise (cutNetSplitting false, or the projection would have
// <2 pins) the edge is retained only if it lies entirely inside b.
func ExtractBlock(phg *PartitionedHypergraph, b BlockID, cutNetSplitting bool) (*hgraph.StaticHypergraph, ExtractionMapping) {
	h := phg.Hypergraph()
	n := h.NumNodes()

	mapping := ExtractionMapping{
		ToExtracted: make([]hgraph.NodeID, n),
	}
	for v := range mapping.ToExtracted {
		mapping.ToExtracted[v] = InvalidNodeID
	}

	var nodeWeights []int64
	count := 0
	for v := 0; v < n; v++ {
		nv := hgraph.NodeID(v)
		if phg.PartID(nv) != b {
			continue
		}
		mapping.ToExtracted[v] = hgraph.NodeID(count)
		mapping.FromExtracted = append(mapping.FromExtracted, nv)
		nodeWeights = append(nodeWeights, h.NodeWeight(nv))
		count++
	}

	var edges [][]hgraph.NodeID
	var edgeWeights []int64
	m := h.NumEdges()
	for e := 0; e < m; e++ {
		ee := hgraph.EdgeID(e)
		inBlock := phg.PinCountInPart(ee, b)
		if inBlock == 0 {
			continue
		}
		entirelyInside := inBlock == h.EdgeSize(ee)
		if !entirelyInside && (!cutNetSplitting || inBlock < 2) {
			continue
		}
		pins := make([]hgraph.NodeID, 0, inBlock)
		for _, v := range h.Pins(ee) {
			if phg.PartID(v) == b {
				pins = append(pins, mapping.ToExtracted[v])
			}
		}
		edges = append(edges, pins)
		edgeWeights = append(edgeWeights, h.EdgeWeight(ee))
	}

	sub, err := hgraph.NewStaticHypergraph(count, edges, nodeWeights, edgeWeights)
	if err != nil {
		panic("partition: ExtractBlock produced an invalid sub-hypergraph: " + err.Error())
	}
	return sub, mapping
}
