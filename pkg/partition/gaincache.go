package partition

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// GainCache is a per-vertex benefit and per-(vertex,block) penalty table
// kept delta-consistent with every move, enabling O(1) gain queries.
type GainCache interface {
	// Initialize populates the cache from scratch given the current
	// partition. Must be called exactly once before any gain query.
	Initialize(phg *PartitionedHypergraph)
	IsInitialized() bool
	Reset()

	Benefit(v hgraph.NodeID) int64
	Penalty(v hgraph.NodeID, p BlockID) int64
	Gain(v hgraph.NodeID, from, to BlockID) Gain

	// DeltaUpdate applies the gain-cache consequences of one pin-count
	// transition on edge e, following the trigger table derived from which
	// pin-count boundaries (0/1/2) `from` and `to` crossed. movingNode is
	// the vertex whose move triggered this edge update; its part id has
	// already been set to `to` by the time DeltaUpdate runs.
	DeltaUpdate(phg *PartitionedHypergraph, e hgraph.EdgeID, edgeWeight int64,
		from BlockID, pinCountFromAfter int, to BlockID, pinCountToAfter int,
		movingNode hgraph.NodeID)

	// Uncontraction hooks, for restoring a previously-contracted vertex
	// back into the gain cache's bookkeeping.
	UncontractRestore(phg *PartitionedHypergraph, u, v hgraph.NodeID, e hgraph.EdgeID, pinCountInPartAfter int)
	UncontractReplace(phg *PartitionedHypergraph, u, v hgraph.NodeID, e hgraph.EdgeID)
	RestoreSinglePinHyperedge(u hgraph.NodeID, blockOfU BlockID, weightOfHe int64)
}

// Km1GainCache implements GainCache for the km1 (connectivity-1)
// objective.
type Km1GainCache struct {
	k           int
	initialized bool
	benefit     []atomic.Int64            // per node
	penalty     []atomic.Int64            // per (node, block), flattened node*k+block
}

// NewKm1GainCache allocates (but does not populate) a km1 gain cache for
// numNodes nodes and k blocks.
func NewKm1GainCache(numNodes, k int) *Km1GainCache {
	return &Km1GainCache{
		k:       k,
		benefit: make([]atomic.Int64, numNodes),
		penalty: make([]atomic.Int64, numNodes*k),
	}
}

func (c *Km1GainCache) penaltyIndex(v hgraph.NodeID, p BlockID) int {
	return int(v)*c.k + int(p)
}

func (c *Km1GainCache) IsInitialized() bool { return c.initialized }

func (c *Km1GainCache) Reset() {
	c.initialized = false
	for i := range c.benefit {
		c.benefit[i].Store(0)
	}
	for i := range c.penalty {
		c.penalty[i].Store(0)
	}
}

func (c *Km1GainCache) Benefit(v hgraph.NodeID) int64 { return c.benefit[v].Load() }
func (c *Km1GainCache) Penalty(v hgraph.NodeID, p BlockID) int64 {
	return c.penalty[c.penaltyIndex(v, p)].Load()
}
func (c *Km1GainCache) Gain(v hgraph.NodeID, _ BlockID, to BlockID) Gain {
	return c.Benefit(v) - c.Penalty(v, to)
}

// Initialize computes benefit[v] and penalty[v][*] from scratch. Nodes
// with more than highDegreeThreshold incident edges are processed with a
// parallel reduction over their own incident edges; the rest are
// processed sequentially within a parallel loop over nodes. Both paths
// are run via golang.org/x/sync/errgroup.
func (c *Km1GainCache) Initialize(phg *PartitionedHypergraph) {
	h := phg.Hypergraph()
	n := h.NumNodes()

	var g errgroup.Group
	g.SetLimit(phg.numWorkers())
	for v := 0; v < n; v++ {
		v := hgraph.NodeID(v)
		g.Go(func() error {
			if h.Degree(v) > highDegreeThreshold {
				c.initializeHighDegreeNode(phg, v)
			} else {
				c.initializeNode(phg, v)
			}
			return nil
		})
	}
	_ = g.Wait()
	c.initialized = true
}

func (c *Km1GainCache) initializeNode(phg *PartitionedHypergraph, v hgraph.NodeID) {
	h := phg.Hypergraph()
	p := phg.PartID(v)
	var benefit int64
	penaltyRow := make([]int64, c.k)
	for _, e := range h.IncidentEdges(v) {
		w := h.EdgeWeight(e)
		if phg.PinCountInPart(e, p) == 1 {
			benefit += w
		}
		phg.connectivity.ForEachBlock(int(e), func(b BlockID) {
			penaltyRow[b] -= w
		})
	}
	total := int64(0)
	for _, e := range h.IncidentEdges(v) {
		total += h.EdgeWeight(e)
	}
	c.benefit[v].Store(benefit)
	for b := 0; b < c.k; b++ {
		c.penalty[c.penaltyIndex(v, BlockID(b))].Store(total + penaltyRow[b])
	}
}

// initializeHighDegreeNode is identical in result to initializeNode; it
// exists as a distinct path purely for load balancing large-degree
// nodes, parallelizing the reduction over v's incident edges instead of
// doing it on one goroutine.
func (c *Km1GainCache) initializeHighDegreeNode(phg *PartitionedHypergraph, v hgraph.NodeID) {
	h := phg.Hypergraph()
	p := phg.PartID(v)
	edges := h.IncidentEdges(v)

	var mu sync.Mutex
	benefit := int64(0)
	penaltyRow := make([]int64, c.k)
	total := int64(0)

	var g errgroup.Group
	g.SetLimit(phg.numWorkers())
	chunk := 4096
	for start := 0; start < len(edges); start += chunk {
		end := start + chunk
		if end > len(edges) {
			end = len(edges)
		}
		seg := edges[start:end]
		g.Go(func() error {
			localBenefit := int64(0)
			localTotal := int64(0)
			localPenalty := make([]int64, c.k)
			for _, e := range seg {
				w := h.EdgeWeight(e)
				localTotal += w
				if phg.PinCountInPart(e, p) == 1 {
					localBenefit += w
				}
				phg.connectivity.ForEachBlock(int(e), func(b BlockID) {
					localPenalty[b] -= w
				})
			}
			mu.Lock()
			benefit += localBenefit
			total += localTotal
			for b := 0; b < c.k; b++ {
				penaltyRow[b] += localPenalty[b]
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.benefit[v].Store(benefit)
	for b := 0; b < c.k; b++ {
		c.penalty[c.penaltyIndex(v, BlockID(b))].Store(total + penaltyRow[b])
	}
}

// DeltaUpdate implements the benefit/penalty trigger table: which of the
// four pin-count boundaries (from: 2→1, 1→0; to: 0→1, 1→2) e just crossed
// determines which terms need adjusting. The moving vertex's own benefit
// is adjusted too: it loses w when it was the sole pin of `from` in e and
// gains w when it is now the sole pin of `to`.
func (c *Km1GainCache) DeltaUpdate(phg *PartitionedHypergraph, e hgraph.EdgeID, w int64,
	from BlockID, cFrom int, to BlockID, cTo int, movingNode hgraph.NodeID) {

	if cFrom == 1 {
		// One pin left in `from`: find it (movingNode has already left
		// `from`, so the scan naturally excludes it) and it gains the
		// benefit of being the sole remaining pin.
		if u, ok := findPinInPart(phg, e, from, InvalidNodeID); ok {
			c.benefit[u].Add(w)
		}
	}
	if cFrom == 0 {
		// `from` emptied in e: every pin's penalty for entering `from`
		// rises by w (it would now add a new block to e), and movingNode,
		// which was the sole pin of `from`, loses that benefit.
		c.benefit[movingNode].Add(-w)
		for _, u := range phg.Hypergraph().Pins(e) {
			c.penalty[c.penaltyIndex(u, from)].Add(w)
		}
	}
	if cTo == 1 {
		// first pin of `to` in e: every pin's penalty for entering `to`
		// drops by w (e already touches `to`), and movingNode is now the
		// sole pin of `to`.
		c.benefit[movingNode].Add(w)
		for _, u := range phg.Hypergraph().Pins(e) {
			c.penalty[c.penaltyIndex(u, to)].Add(-w)
		}
	}
	if cTo == 2 {
		// second pin of `to`: the other existing pin in `to` (not the
		// one that just moved) loses the "sole pin" benefit.
		if u, ok := findPinInPart(phg, e, to, movingNode); ok {
			c.benefit[u].Add(-w)
		}
	}
}

// findPinInPart scans e's pins for one whose current block is p, skipping
// exclude. Used to locate the "unique remaining pin" / "other pin"
// referenced by the delta-gain trigger table.
func findPinInPart(phg *PartitionedHypergraph, e hgraph.EdgeID, p BlockID, exclude hgraph.NodeID) (hgraph.NodeID, bool) {
	for _, u := range phg.Hypergraph().Pins(e) {
		if u == exclude {
			continue
		}
		if phg.PartID(u) == p {
			return u, true
		}
	}
	return 0, false
}

// UncontractRestore implements the gain-cache side of restoring node v
// into hyperedge e alongside its representative u.
func (c *Km1GainCache) UncontractRestore(phg *PartitionedHypergraph, u, v hgraph.NodeID, e hgraph.EdgeID, pinCountAfter int) {
	w := phg.Hypergraph().EdgeWeight(e)
	if pinCountAfter == 2 {
		// v contributes no further benefit to u; the existing pin (u, or
		// whichever pin was already sole occupant) loses its benefit.
		c.benefit[u].Add(-w)
	}
	for b := 0; b < c.k; b++ {
		if !phg.connectivity.Contains(int(e), BlockID(b)) {
			c.penalty[c.penaltyIndex(v, BlockID(b))].Add(w)
		}
	}
}

// UncontractReplace implements the gain-cache side of v replacing u in
// hyperedge e (u removed, v joins, pin count of e unchanged).
func (c *Km1GainCache) UncontractReplace(phg *PartitionedHypergraph, u, v hgraph.NodeID, e hgraph.EdgeID) {
	w := phg.Hypergraph().EdgeWeight(e)
	pu := phg.PartID(u)
	if phg.PinCountInPart(e, pu) == 1 {
		c.benefit[u].Add(-w)
		c.benefit[v].Add(w)
	}
	for b := 0; b < c.k; b++ {
		if !phg.connectivity.Contains(int(e), BlockID(b)) {
			c.penalty[c.penaltyIndex(u, BlockID(b))].Add(-w)
			c.penalty[c.penaltyIndex(v, BlockID(b))].Add(w)
		}
	}
}

// RestoreSinglePinHyperedge restores an edge that had shrunk to a single
// pin u in block b and was excluded from gain-cache maintenance; it adds
// w(e) back to u's benefit and to its penalty for every other block.
func (c *Km1GainCache) RestoreSinglePinHyperedge(u hgraph.NodeID, b BlockID, w int64) {
	c.benefit[u].Add(w)
	for p := 0; p < c.k; p++ {
		if BlockID(p) != b {
			c.penalty[c.penaltyIndex(u, BlockID(p))].Add(w)
		}
	}
}
