package partition

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// CutGainCache implements GainCache for the cut objective. Unlike km1,
// moving a pin only changes the cut metric when an edge crosses the
// λ(e)=1 ⇄ λ(e)=2 boundary, so the penalty term here does not depend on
// the destination block: it is Σ_{e ∈ I(v), λ(e)=1} w(e), identical for
// every target block. It is still stored per (node, block) to satisfy
// the GainCache interface uniformly with Km1GainCache, but every entry
// for a given node holds the same value.
type CutGainCache struct {
	k           int
	initialized bool
	benefit     []atomic.Int64
	penalty     []atomic.Int64 // per (node, block); all k entries for a node are kept equal
}

func NewCutGainCache(numNodes, k int) *CutGainCache {
	return &CutGainCache{
		k:       k,
		benefit: make([]atomic.Int64, numNodes),
		penalty: make([]atomic.Int64, numNodes*k),
	}
}

func (c *CutGainCache) idx(v hgraph.NodeID, p BlockID) int { return int(v)*c.k + int(p) }

func (c *CutGainCache) IsInitialized() bool { return c.initialized }

func (c *CutGainCache) Reset() {
	c.initialized = false
	for i := range c.benefit {
		c.benefit[i].Store(0)
	}
	for i := range c.penalty {
		c.penalty[i].Store(0)
	}
}

func (c *CutGainCache) Benefit(v hgraph.NodeID) int64 { return c.benefit[v].Load() }
func (c *CutGainCache) Penalty(v hgraph.NodeID, p BlockID) int64 {
	return c.penalty[c.idx(v, p)].Load()
}
func (c *CutGainCache) Gain(v hgraph.NodeID, _ BlockID, to BlockID) Gain {
	return c.Benefit(v) - c.Penalty(v, to)
}

func (c *CutGainCache) Initialize(phg *PartitionedHypergraph) {
	n := phg.Hypergraph().NumNodes()
	var g errgroup.Group
	g.SetLimit(phg.numWorkers())
	for v := 0; v < n; v++ {
		v := hgraph.NodeID(v)
		g.Go(func() error {
			c.recomputeNode(phg, v)
			return nil
		})
	}
	_ = g.Wait()
	c.initialized = true
}

// recomputeNode derives v's benefit and (uniform) penalty directly from
// current pin counts/connectivity, used by Initialize and by the
// uncontraction hooks below (where a one-off O(degree(v)) recompute is
// cheap relative to the bulk event that triggered it).
func (c *CutGainCache) recomputeNode(phg *PartitionedHypergraph, v hgraph.NodeID) {
	h := phg.Hypergraph()
	p := phg.PartID(v)
	var benefit, penalty int64
	for _, e := range h.IncidentEdges(v) {
		w := h.EdgeWeight(e)
		lambda := phg.Connectivity(e)
		if lambda == 2 && phg.PinCountInPart(e, p) == 1 {
			benefit += w
		}
		if lambda == 1 {
			penalty += w
		}
	}
	c.benefit[v].Store(benefit)
	for b := 0; b < c.k; b++ {
		c.penalty[c.idx(v, BlockID(b))].Store(penalty)
	}
}

// DeltaUpdate re-derives, for every pin of e, whether it gained or lost
// benefit/penalty credit from e as a result of this single move, by
// comparing the before/after (pin-count-in-its-own-block, λ(e)) pairs.
// Only e's own from/to pin counts changed by this call; every other
// block's pin count in e, and every other pin's block membership, is
// unchanged, so this is a complete and exact update, not an
// approximation - it simply doesn't try to special-case from/to the way
// Km1GainCache's trigger table does, since cut's condition (λ(e)==1 or
// ==2) depends on the edge as a whole rather than just the two blocks
// touched by this move.
func (c *CutGainCache) DeltaUpdate(phg *PartitionedHypergraph, e hgraph.EdgeID, w int64,
	from BlockID, cFrom int, to BlockID, cTo int, movingNode hgraph.NodeID) {

	lambdaAfter := phg.Connectivity(e)
	lambdaBefore := lambdaAfter
	if cTo == 1 {
		lambdaBefore--
	}
	if cFrom == 0 {
		lambdaBefore++
	}

	for _, u := range phg.Hypergraph().Pins(e) {
		var beforeBlock, afterBlock BlockID
		if u == movingNode {
			beforeBlock, afterBlock = from, to
		} else {
			b := phg.PartID(u)
			beforeBlock, afterBlock = b, b
		}

		beforeCount := c.pinCountBefore(phg, e, beforeBlock, from, cFrom, to, cTo)
		afterCount := c.pinCountAfter(phg, e, afterBlock, from, cFrom, to, cTo)

		oldBenefit := beforeCount == 1 && lambdaBefore == 2
		newBenefit := afterCount == 1 && lambdaAfter == 2
		if oldBenefit != newBenefit {
			if newBenefit {
				c.benefit[u].Add(w)
			} else {
				c.benefit[u].Add(-w)
			}
		}

		oldPenalty := lambdaBefore == 1
		newPenalty := lambdaAfter == 1
		if oldPenalty != newPenalty {
			delta := w
			if !newPenalty {
				delta = -w
			}
			for b := 0; b < c.k; b++ {
				c.penalty[c.idx(u, BlockID(b))].Add(delta)
			}
		}
	}
}

func (c *CutGainCache) pinCountBefore(phg *PartitionedHypergraph, e hgraph.EdgeID, block, from BlockID, cFrom int, to BlockID, cTo int) int {
	switch block {
	case from:
		return cFrom + 1
	case to:
		return cTo - 1
	default:
		return phg.PinCountInPart(e, block)
	}
}

func (c *CutGainCache) pinCountAfter(phg *PartitionedHypergraph, e hgraph.EdgeID, block, from BlockID, cFrom int, to BlockID, cTo int) int {
	switch block {
	case from:
		return cFrom
	case to:
		return cTo
	default:
		return phg.PinCountInPart(e, block)
	}
}

func (c *CutGainCache) UncontractRestore(phg *PartitionedHypergraph, _, v hgraph.NodeID, _ hgraph.EdgeID, _ int) {
	c.recomputeNode(phg, v)
}

func (c *CutGainCache) UncontractReplace(phg *PartitionedHypergraph, u, v hgraph.NodeID, _ hgraph.EdgeID) {
	c.recomputeNode(phg, u)
	c.recomputeNode(phg, v)
}

func (c *CutGainCache) RestoreSinglePinHyperedge(u hgraph.NodeID, _ BlockID, w int64) {
	c.benefit[u].Add(w)
	for b := 0; b < c.k; b++ {
		c.penalty[c.idx(u, BlockID(b))].Add(w)
	}
}
