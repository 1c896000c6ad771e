package fm

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// SearchConfig tunes one LocalizedSearch instance.
type SearchConfig struct {
	// MaxNonImprovingMoves bounds the run of consecutive moves made since
	// the best-seen cumulative gain; 0 means unbounded.
	MaxNonImprovingMoves int
	// MaxMoves caps the total number of moves a single search may commit;
	// 0 means unbounded (only the other stopping rules apply).
	MaxMoves int
	// AcceptZeroGain, when false, refuses to commit a move whose
	// recomputed gain is exactly zero.
	AcceptZeroGain bool
	// ReleaseNodes, when true, frees reserved-but-unmoved vertices back to
	// the node tracker at the end of the search.
	ReleaseNodes bool
}

// Move is the event LocalizedSearch.updateGain reacts to: a neighbor's
// incident edge was just touched by moving V from From to To.
type Move struct {
	V        hgraph.NodeID
	From, To partition.BlockID
	Gain     partition.Gain
}

// LocalizedSearch is a per-thread bounded FM search expanding from seed
// border vertices, using a block-level and k vertex-level addressable
// priority queues backed by the gain cache.
type LocalizedSearch struct {
	phg    *partition.PartitionedHypergraph
	shared *SharedFMData
	id     SearchID
	cfg    SearchConfig
	logger zerolog.Logger

	blockPQ  *blockPQ
	vertexPQ []*vertexPQ // one per block
	targetOf map[hgraph.NodeID]partition.BlockID
}

func NewLocalizedSearch(phg *partition.PartitionedHypergraph, shared *SharedFMData, id SearchID, cfg SearchConfig, logger zerolog.Logger) *LocalizedSearch {
	k := phg.K()
	vpqs := make([]*vertexPQ, k)
	for i := range vpqs {
		vpqs[i] = newVertexPQ()
	}
	return &LocalizedSearch{
		phg:      phg,
		shared:   shared,
		id:       id,
		cfg:      cfg,
		logger:   logger,
		blockPQ:  newBlockPQ(),
		vertexPQ: vpqs,
		targetOf: make(map[hgraph.NodeID]partition.BlockID),
	}
}

// Seed reserves v in the shared node tracker and, if that succeeds and v
// has a feasible destination, inserts it as the search's first candidate.
func (s *LocalizedSearch) Seed(v hgraph.NodeID) bool {
	if !s.shared.Tracker.Reserve(v, s.id) {
		return false
	}
	to, gain := s.bestDestinationBlock(v)
	if to == partition.InvalidBlock {
		s.shared.Tracker.Release(v)
		return false
	}
	s.insert(v, to, gain)
	return true
}

// bestDestinationBlock picks the feasible block (other than u's current
// one) minimizing move-to penalty, tiebroken by lowest current part
// weight.
func (s *LocalizedSearch) bestDestinationBlock(u hgraph.NodeID) (partition.BlockID, partition.Gain) {
	from := s.phg.PartID(u)
	wu := s.phg.Hypergraph().NodeWeight(u)

	best := partition.InvalidBlock
	var bestPenalty, bestWeight int64
	found := false
	for b := 0; b < s.phg.K(); b++ {
		block := partition.BlockID(b)
		if block == from {
			continue
		}
		if s.phg.PartWeight(block)+wu > s.phg.MaxPartWeight(block) {
			continue
		}
		penalty := s.phg.MoveToPenalty(u, block)
		weight := s.phg.PartWeight(block)
		if !found || penalty < bestPenalty || (penalty == bestPenalty && weight < bestWeight) {
			found, best, bestPenalty, bestWeight = true, block, penalty, weight
		}
	}
	if !found {
		return partition.InvalidBlock, math.MinInt64
	}
	return best, s.phg.MoveFromBenefit(u) - bestPenalty
}

// bestOfThree restricts bestDestinationBlock's scan to the given
// candidate blocks. updateGain uses it (for k >= 4) when a neighbor's
// previous target is neither of the two blocks touched by the triggering
// move, so only that target and those two blocks can have become the
// best choice.
func (s *LocalizedSearch) bestOfThree(u hgraph.NodeID, candidates ...partition.BlockID) (partition.BlockID, partition.Gain) {
	from := s.phg.PartID(u)
	wu := s.phg.Hypergraph().NodeWeight(u)

	best := partition.InvalidBlock
	var bestGain partition.Gain = math.MinInt64
	seen := make(map[partition.BlockID]bool, len(candidates))
	for _, b := range candidates {
		if b == from || seen[b] {
			continue
		}
		seen[b] = true
		if s.phg.PartWeight(b)+wu > s.phg.MaxPartWeight(b) {
			continue
		}
		g := s.phg.Km1Gain(u, from, b)
		if best == partition.InvalidBlock || g > bestGain {
			best, bestGain = b, g
		}
	}
	return best, bestGain
}

func (s *LocalizedSearch) insert(u hgraph.NodeID, to partition.BlockID, gain partition.Gain) {
	from := s.phg.PartID(u)
	s.targetOf[u] = to
	s.vertexPQ[from].Insert(u, gain)
	s.syncBlock(from)
}

func (s *LocalizedSearch) dropCandidate(u hgraph.NodeID, from partition.BlockID) {
	s.vertexPQ[from].Remove(u)
	delete(s.targetOf, u)
	s.syncBlock(from)
	s.shared.Tracker.Release(u)
}

func (s *LocalizedSearch) syncBlock(b partition.BlockID) {
	if _, key, ok := s.vertexPQ[b].Top(); ok {
		s.blockPQ.Insert(b, key)
	} else {
		s.blockPQ.Remove(b)
	}
}

// updateGain re-evaluates u's cached target after a neighboring move,
// using the bestOfThree shortcut when applicable.
func (s *LocalizedSearch) updateGain(u hgraph.NodeID, move Move) {
	from := s.phg.PartID(u)
	curTarget, known := s.targetOf[u]

	var to partition.BlockID
	var gain partition.Gain
	switch {
	case known && s.phg.K() >= 4 && curTarget != move.From && curTarget != move.To:
		to, gain = s.bestOfThree(u, curTarget, move.From, move.To)
	default:
		to, gain = s.bestDestinationBlock(u)
	}

	if to == partition.InvalidBlock {
		s.dropCandidate(u, from)
		return
	}
	s.targetOf[u] = to
	s.vertexPQ[from].AdjustKey(u, gain)
	s.syncBlock(from)
}

// activationAllowed gates which freshly-touched neighbors get reserved
// and inserted as new candidates: only border vertices are worth
// expanding into, since an interior vertex has no feasible destination
// that could ever improve the objective.
func (s *LocalizedSearch) activationAllowed(w hgraph.NodeID) bool {
	return s.phg.IsBorderNode(w)
}

// Run executes the search loop until the block queue is empty or a
// stopping rule fires, and returns every move it committed.
func (s *LocalizedSearch) Run() []partition.MoveRecord {
	var localMoves []partition.MoveRecord
	var cumulative, bestSeen partition.Gain
	nonImproving := 0

	for s.blockPQ.Len() > 0 {
		if s.cfg.MaxMoves > 0 && len(localMoves) >= s.cfg.MaxMoves {
			break
		}

		p, estGain, ok := s.blockPQ.Top()
		if !ok {
			break
		}
		u, _, ok := s.vertexPQ[p].Top()
		if !ok {
			s.blockPQ.Remove(p)
			continue
		}

		to, g := s.bestDestinationBlock(u)
		if to == partition.InvalidBlock {
			s.dropCandidate(u, p)
			continue
		}
		if g < estGain {
			s.targetOf[u] = to
			s.vertexPQ[p].AdjustKey(u, g)
			s.syncBlock(p)
			continue
		}
		if g == 0 && !s.cfg.AcceptZeroGain {
			s.dropCandidate(u, p)
			continue
		}

		var events []partition.DeltaEvent
		ok2 := s.phg.ChangeNodePartFullUpdate(u, p, to, s.phg.MaxPartWeight(to), nil, func(ev partition.DeltaEvent) {
			events = append(events, ev)
		})
		if !ok2 {
			// Balance failed. The move primitive refuses to empty block p,
			// which bestDestinationBlock does not check: if u is the only
			// weight left in p it can never move, so drop it. Otherwise
			// some concurrent move changed part_weight(to) between
			// bestDestinationBlock's check and the move primitive's own
			// check. u is still a live candidate, just not with this
			// destination any more, so reinsert it with a freshly computed
			// target instead of releasing its reservation.
			if s.phg.PartWeight(p)-s.phg.Hypergraph().NodeWeight(u) <= 0 {
				s.dropCandidate(u, p)
				continue
			}
			retryTo, retryGain := s.bestDestinationBlock(u)
			if retryTo == partition.InvalidBlock {
				s.dropCandidate(u, p)
				continue
			}
			s.targetOf[u] = retryTo
			s.vertexPQ[p].AdjustKey(u, retryGain)
			s.syncBlock(p)
			continue
		}

		seq := s.shared.NextSeq()
		s.shared.Tracker.MarkMoved(u)
		s.vertexPQ[p].Remove(u)
		delete(s.targetOf, u)
		s.syncBlock(p)

		localMoves = append(localMoves, partition.MoveRecord{V: u, From: p, To: to, CachedGain: g, Seq: seq})

		cumulative += g
		if cumulative > bestSeen {
			bestSeen = cumulative
			nonImproving = 0
		} else {
			nonImproving++
		}

		move := Move{V: u, From: p, To: to, Gain: g}
		for _, ev := range events {
			for _, w := range s.phg.Hypergraph().Pins(ev.Edge) {
				if w == u {
					continue
				}
				if s.shared.Tracker.IsReservedBy(w, s.id) {
					s.updateGain(w, move)
					continue
				}
				if s.activationAllowed(w) && s.shared.Tracker.Reserve(w, s.id) {
					wTo, wGain := s.bestDestinationBlock(w)
					if wTo == partition.InvalidBlock {
						s.shared.Tracker.Release(w)
						continue
					}
					s.insert(w, wTo, wGain)
				}
			}
		}

		if s.cfg.MaxNonImprovingMoves > 0 && nonImproving >= s.cfg.MaxNonImprovingMoves {
			break
		}
	}

	if s.cfg.ReleaseNodes {
		for u := range s.targetOf {
			s.shared.Tracker.Release(u)
		}
		s.targetOf = make(map[hgraph.NodeID]partition.BlockID)
	}

	s.logger.Debug().
		Uint64("search_id", uint64(s.id)).
		Int("moves", len(localMoves)).
		Int64("cumulative_gain", int64(cumulative)).
		Msg("localized fm search finished")

	return localMoves
}
