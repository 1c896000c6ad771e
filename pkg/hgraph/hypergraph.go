// Package hgraph defines the external hypergraph representation the
// partitioning core consumes. The core never mutates a Hypergraph; it only
// reads weights, sizes and incidences through the Hypergraph interface.
package hgraph

import "fmt"

// NodeID is a dense vertex identifier in [0, NumNodes).
type NodeID int

// EdgeID is a dense hyperedge identifier in [0, NumEdges).
type EdgeID int

// Hypergraph is the capability interface the partitioning core requires
// from whatever concrete representation a caller plugs in (static or
// dynamic). It intentionally has no mutation methods: coarsening and
// uncoarsening hierarchy management own the underlying structure and are
// out of scope for this engine.
type Hypergraph interface {
	NumNodes() int
	NumEdges() int
	NodeWeight(v NodeID) int64
	EdgeWeight(e EdgeID) int64
	EdgeSize(e EdgeID) int
	Degree(v NodeID) int
	Pins(e EdgeID) []NodeID
	IncidentEdges(v NodeID) []EdgeID

	// ForEachNode/ForEachEdge expose the parallel-for the core's
	// gain-cache initialization and border-node discovery run on top of.
	// fn may be called concurrently from multiple goroutines; it must be
	// safe for concurrent invocation with distinct ids.
	ForEachNode(fn func(v NodeID))
	ForEachEdge(fn func(e EdgeID))
}

// StaticHypergraph is a dense, immutable-after-construction hypergraph
// representation: CSR-style pin lists per edge and incident-edge lists per
// node.
type StaticHypergraph struct {
	nodeWeights []int64
	edgeWeights []int64
	pins        [][]NodeID
	incident    [][]EdgeID
}

// NewStaticHypergraph builds a StaticHypergraph from a list of hyperedges,
// each expressed as a slice of distinct pin ids, plus optional per-node and
// per-edge weights (nil means "all weights are 1").
func NewStaticHypergraph(numNodes int, edges [][]NodeID, nodeWeights, edgeWeights []int64) (*StaticHypergraph, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("hgraph: numNodes must be positive, got %d", numNodes)
	}
	h := &StaticHypergraph{
		nodeWeights: make([]int64, numNodes),
		edgeWeights: make([]int64, len(edges)),
		pins:        make([][]NodeID, len(edges)),
		incident:    make([][]EdgeID, numNodes),
	}
	for v := range h.nodeWeights {
		if nodeWeights != nil {
			h.nodeWeights[v] = nodeWeights[v]
		} else {
			h.nodeWeights[v] = 1
		}
	}
	for e, pinList := range edges {
		if len(pinList) == 0 {
			return nil, fmt.Errorf("hgraph: edge %d has no pins", e)
		}
		cp := make([]NodeID, len(pinList))
		copy(cp, pinList)
		h.pins[e] = cp
		if edgeWeights != nil {
			h.edgeWeights[e] = edgeWeights[e]
		} else {
			h.edgeWeights[e] = 1
		}
		for _, v := range pinList {
			if int(v) < 0 || int(v) >= numNodes {
				return nil, fmt.Errorf("hgraph: edge %d references out-of-range pin %d", e, v)
			}
			h.incident[v] = append(h.incident[v], EdgeID(e))
		}
	}
	return h, nil
}

func (h *StaticHypergraph) NumNodes() int { return len(h.nodeWeights) }
func (h *StaticHypergraph) NumEdges() int { return len(h.pins) }

func (h *StaticHypergraph) NodeWeight(v NodeID) int64 { return h.nodeWeights[v] }
func (h *StaticHypergraph) EdgeWeight(e EdgeID) int64 { return h.edgeWeights[e] }
func (h *StaticHypergraph) EdgeSize(e EdgeID) int     { return len(h.pins[e]) }
func (h *StaticHypergraph) Degree(v NodeID) int       { return len(h.incident[v]) }

func (h *StaticHypergraph) Pins(e EdgeID) []NodeID          { return h.pins[e] }
func (h *StaticHypergraph) IncidentEdges(v NodeID) []EdgeID { return h.incident[v] }

func (h *StaticHypergraph) ForEachNode(fn func(v NodeID)) {
	for v := 0; v < len(h.nodeWeights); v++ {
		fn(NodeID(v))
	}
}

func (h *StaticHypergraph) ForEachEdge(fn func(e EdgeID)) {
	for e := 0; e < len(h.pins); e++ {
		fn(EdgeID(e))
	}
}

// TotalNodeWeight sums node weights over the whole hypergraph; used to
// derive the balanced target block weight ⌈w(V)/k⌉.
func TotalNodeWeight(h Hypergraph) int64 {
	var total int64
	n := h.NumNodes()
	for v := 0; v < n; v++ {
		total += h.NodeWeight(NodeID(v))
	}
	return total
}
