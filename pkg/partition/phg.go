package partition

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// PartitionedHypergraph composes an external Hypergraph with the pin
// count table, connectivity sets, per-node part assignment, per-block
// weights and the gain cache. It owns the pin-count, connectivity and
// gain-cache storage exclusively and holds only a non-owning reference
// to the underlying Hypergraph.
type PartitionedHypergraph struct {
	hg hgraph.Hypergraph
	k  int

	partID      []int32 // atomic-accessed via atomic.LoadInt32/StoreInt32 semantics (single writer per vertex)
	partWeight  []atomic.Int64
	maxWeight   []int64 // per-block balance ceiling, set by caller (not derived here)

	pinCounts    *PinCountTable
	connectivity *ConnectivitySet

	edgeOwnership []atomic.Uint32 // CAS spinlock bit per edge

	gainCache GainCache

	workers int
}

// NewPartitionedHypergraph constructs a partitioned view of hg with k
// blocks. All nodes start at InvalidBlock. objective selects which
// GainCache implementation InitializeGainCache will install.
func NewPartitionedHypergraph(hg hgraph.Hypergraph, k int, objective Objective) *PartitionedHypergraph {
	n := hg.NumNodes()
	m := hg.NumEdges()
	phg := &PartitionedHypergraph{
		hg:            hg,
		k:             k,
		partID:        make([]int32, n),
		partWeight:    make([]atomic.Int64, k),
		maxWeight:     make([]int64, k),
		pinCounts:     NewPinCountTable(m, k),
		connectivity:  NewConnectivitySet(m, k),
		edgeOwnership: make([]atomic.Uint32, m),
		workers:       runtime.GOMAXPROCS(0),
	}
	for v := range phg.partID {
		phg.partID[v] = int32(InvalidBlock)
	}
	switch objective {
	case ObjectiveCut:
		phg.gainCache = NewCutGainCache(n, k)
	default:
		phg.gainCache = NewKm1GainCache(n, k)
	}
	return phg
}

func (p *PartitionedHypergraph) Hypergraph() hgraph.Hypergraph { return p.hg }
func (p *PartitionedHypergraph) K() int                        { return p.k }
func (p *PartitionedHypergraph) numWorkers() int {
	if p.workers < 1 {
		return 1
	}
	return p.workers
}

// SetNumWorkers overrides the fork/join fan-out used by Initialize /
// InitializeGainCache; defaults to GOMAXPROCS.
func (p *PartitionedHypergraph) SetNumWorkers(n int) {
	if n > 0 {
		p.workers = n
	}
}

// SetMaxPartWeight sets the balance ceiling max_weight[p] the move
// primitive checks moves against.
func (p *PartitionedHypergraph) SetMaxPartWeight(b BlockID, w int64) { p.maxWeight[int(b)] = w }
func (p *PartitionedHypergraph) MaxPartWeight(b BlockID) int64       { return p.maxWeight[int(b)] }

// PartID returns part_id[v].
func (p *PartitionedHypergraph) PartID(v hgraph.NodeID) BlockID {
	return BlockID(atomic.LoadInt32(&p.partID[v]))
}

// PartWeight returns part_weight[p].
func (p *PartitionedHypergraph) PartWeight(b BlockID) int64 { return p.partWeight[int(b)].Load() }

// PinCountInPart returns pin_count(e, p).
func (p *PartitionedHypergraph) PinCountInPart(e hgraph.EdgeID, b BlockID) int {
	return p.pinCounts.Get(int(e), b)
}

// Connectivity returns λ(e).
func (p *PartitionedHypergraph) Connectivity(e hgraph.EdgeID) int {
	return p.connectivity.Count(int(e))
}

// ConnectivitySetOf returns the blocks touching e, ascending order.
func (p *PartitionedHypergraph) ConnectivitySetOf(e hgraph.EdgeID) []BlockID {
	return p.connectivity.Blocks(int(e))
}

// IsBorderNode reports whether v has an incident edge with λ(e) > 1.
func (p *PartitionedHypergraph) IsBorderNode(v hgraph.NodeID) bool {
	for _, e := range p.hg.IncidentEdges(v) {
		if p.Connectivity(e) > 1 {
			return true
		}
	}
	return false
}

// GainCache exposes the underlying cache for read-only queries
// (MoveFromBenefit, MoveToPenalty, Km1Gain) and advanced callers (FM).
func (p *PartitionedHypergraph) GainCache() GainCache { return p.gainCache }

func (p *PartitionedHypergraph) IsGainCacheInitialized() bool { return p.gainCache.IsInitialized() }

// InitializeGainCache populates the gain cache from the current
// partition. Must be called exactly once per refinement round, after
// nodes have been assigned via SetOnlyNodePart+InitializePartition or
// SetNodePart.
func (p *PartitionedHypergraph) InitializeGainCache() { p.gainCache.Initialize(p) }

func (p *PartitionedHypergraph) MoveFromBenefit(v hgraph.NodeID) int64 { return p.gainCache.Benefit(v) }
func (p *PartitionedHypergraph) MoveToPenalty(v hgraph.NodeID, b BlockID) int64 {
	return p.gainCache.Penalty(v, b)
}
func (p *PartitionedHypergraph) Km1Gain(v hgraph.NodeID, from, to BlockID) Gain {
	return p.gainCache.Gain(v, from, to)
}

// SetOnlyNodePart assigns part_id[v] = p without touching pin counts,
// connectivity sets or part weights. Used for bulk construction of the
// initial partition, followed by a single InitializePartition call.
func (p *PartitionedHypergraph) SetOnlyNodePart(v hgraph.NodeID, b BlockID) {
	atomic.StoreInt32(&p.partID[v], int32(b))
}

// InitializePartition derives pin counts, connectivity sets and part
// weights from the part ids set via SetOnlyNodePart. The node and edge
// loops run sequentially on the calling goroutine.
func (p *PartitionedHypergraph) InitializePartition() {
	n := p.hg.NumNodes()
	for b := range p.partWeight {
		p.partWeight[b].Store(0)
	}
	for v := 0; v < n; v++ {
		nv := hgraph.NodeID(v)
		b := p.PartID(nv)
		if b != InvalidBlock {
			p.partWeight[int(b)].Add(p.hg.NodeWeight(nv))
		}
	}
	m := p.hg.NumEdges()
	for e := 0; e < m; e++ {
		ee := hgraph.EdgeID(e)
		for _, v := range p.hg.Pins(ee) {
			b := p.PartID(v)
			if b == InvalidBlock {
				continue
			}
			n := p.pinCounts.Inc(e, b)
			if n == 1 {
				p.connectivity.Add(e, b)
			}
		}
	}
}

// SetNodePart assigns v to block b and immediately updates pin counts and
// connectivity sets for every incident edge (no balance check, no gain
// cache maintenance) - the incremental counterpart to SetOnlyNodePart +
// InitializePartition, for callers building a partition vertex by vertex.
func (p *PartitionedHypergraph) SetNodePart(v hgraph.NodeID, b BlockID) {
	atomic.StoreInt32(&p.partID[v], int32(b))
	p.partWeight[int(b)].Add(p.hg.NodeWeight(v))
	for _, e := range p.hg.IncidentEdges(v) {
		ei := int(e)
		p.lockEdge(ei)
		n := p.pinCounts.Inc(ei, b)
		if n == 1 {
			p.connectivity.Add(ei, b)
		}
		p.unlockEdge(ei)
	}
}

// ResetPartition wipes part ids, part weights, pin counts and
// connectivity sets, and resets the gain cache to the uninitialized state
// (its allocation is kept; the underlying hypergraph is untouched).
func (p *PartitionedHypergraph) ResetPartition() {
	for v := range p.partID {
		p.partID[v] = int32(InvalidBlock)
	}
	for b := range p.partWeight {
		p.partWeight[b].Store(0)
	}
	p.pinCounts.Reset()
	p.connectivity.Reset()
	p.gainCache.Reset()
}

func (p *PartitionedHypergraph) lockEdge(e int) {
	for !p.edgeOwnership[e].CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

func (p *PartitionedHypergraph) unlockEdge(e int) {
	p.edgeOwnership[e].Store(0)
}

// ChangeNodePart is the bare move primitive: it updates part_id, part
// weights, pin counts and connectivity sets, and
// invokes deltaFn once per incident edge, but does NOT touch the gain
// cache. Use ChangeNodePartFullUpdate to additionally maintain the gain
// cache in the same edge-locked critical section.
func (p *PartitionedHypergraph) ChangeNodePart(v hgraph.NodeID, from, to BlockID, maxWeightTo int64, deltaFn DeltaFunc) bool {
	return p.changeNodePart(v, from, to, maxWeightTo, nil, deltaFn)
}

// ChangeNodePartFullUpdate is ChangeNodePart plus gain-cache maintenance:
// deltaFn (if non-nil) is invoked after the gain cache has already been
// updated for that edge, so callers observing deltaFn's events see a
// gain cache consistent with the edge just processed.
func (p *PartitionedHypergraph) ChangeNodePartFullUpdate(v hgraph.NodeID, from, to BlockID, maxWeightTo int64,
	onSuccess OnSuccessFunc, deltaFn DeltaFunc) bool {

	wrapped := func(ev DeltaEvent) {
		p.gainCache.DeltaUpdate(p, ev.Edge, ev.EdgeWeight, from, ev.PinCountFrom, to, ev.PinCountTo, v)
		if deltaFn != nil {
			deltaFn(ev)
		}
	}
	ok := p.changeNodePart(v, from, to, maxWeightTo, onSuccess, wrapped)
	return ok
}

func (p *PartitionedHypergraph) changeNodePart(v hgraph.NodeID, from, to BlockID, maxWeightTo int64,
	onSuccess OnSuccessFunc, deltaFn DeltaFunc) bool {

	if from == to {
		panic(fmt.Sprintf("partition: ChangeNodePart called with from == to (%d)", from))
	}
	if cur := p.PartID(v); cur != from {
		panic(fmt.Sprintf("partition: ChangeNodePart precondition violated: part_id[%d]=%d, expected from=%d", v, cur, from))
	}

	wv := p.hg.NodeWeight(v)

	// Balance test: speculative weight of `to` after addition must not
	// exceed maxWeightTo, and `from` must remain > 0 after subtraction.
	newToWeight := p.partWeight[int(to)].Add(wv)
	if newToWeight > maxWeightTo {
		p.partWeight[int(to)].Add(-wv)
		return false
	}
	newFromWeight := p.partWeight[int(from)].Add(-wv)
	if newFromWeight <= 0 {
		p.partWeight[int(from)].Add(wv)
		p.partWeight[int(to)].Add(-wv)
		return false
	}

	atomic.StoreInt32(&p.partID[v], int32(to))

	for _, e := range p.hg.IncidentEdges(v) {
		ei := int(e)
		p.lockEdge(ei)
		cFrom := p.pinCounts.Dec(ei, from)
		if cFrom == 0 {
			p.connectivity.Remove(ei, from)
		}
		cTo := p.pinCounts.Inc(ei, to)
		if cTo == 1 {
			p.connectivity.Add(ei, to)
		}
		if deltaFn != nil {
			deltaFn(DeltaEvent{
				Edge:         e,
				EdgeWeight:   p.hg.EdgeWeight(e),
				EdgeSize:     p.hg.EdgeSize(e),
				PinCountFrom: cFrom,
				PinCountTo:   cTo,
			})
		}
		p.unlockEdge(ei)
	}

	if onSuccess != nil {
		onSuccess()
	}
	return true
}
