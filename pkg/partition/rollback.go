package partition

import (
	"sort"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// MoveRecord is one entry of the shared move log: a move committed by
// some FM search during a concurrent round, together with
// the gain that was believed to hold at commit time and the global
// sequence number the committing FM search drew from the round's shared
// counter (SharedFMData.NextSeq).
type MoveRecord struct {
	V          hgraph.NodeID
	From, To   BlockID
	CachedGain Gain
	Seq        uint64
}

// Rollback takes the (unordered) move log of a concurrent FM round,
// finds the best-performing prefix of the seq-ordered move sequence, and
// reverts everything after it, leaving phg (and its gain cache)
// consistent with having applied only that prefix.
//
// It does not trust CachedGain - intervening moves can make a move's
// actual contribution to the objective differ from what it looked like
// gain-wise at the moment it was committed. Instead it walks the move
// log backwards from the current (fully-applied) state, reverting one
// move at a time through
// the same move primitive used for ordinary moves so the gain cache
// stays delta-consistent, and reads off each revert's true contribution
// from the gain cache immediately before performing it. Once every move
// has been reverted this way, the best prefix is known, and the moves
// that should be kept are re-applied forward.
//
// Returns the number of moves kept and whether the kept prefix leaves the
// objective strictly better than the earliest state the revert pass
// reached (the state before the round when every move could be reverted).
func Rollback(phg *PartitionedHypergraph, moves []MoveRecord) (kept int, improved bool) {
	ordered := make([]MoveRecord, len(moves))
	copy(ordered, moves)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })
	n := len(ordered)

	// cumulative[r] = total objective improvement obtained by reverting the
	// trailing r moves (in seq order) from the fully-applied state.
	// cumulative[0] = 0 by definition.
	cumulative := make([]Gain, n+1)
	reverted := 0
	for r := 1; r <= n; r++ {
		m := ordered[n-r]
		g := phg.GainCache().Gain(m.V, m.To, m.From)
		ok := phg.ChangeNodePartFullUpdate(m.V, m.To, m.From, phg.MaxPartWeight(m.From), nil, nil)
		if !ok {
			// Should not happen: this exact vertex occupied `from` with this
			// exact weight before the round began, and MaxPartWeight(from)
			// only shrinks the set of feasible moves, never invalidates a
			// previously-feasible one. Treat as the end of the revertible
			// suffix rather than panicking on a belt-and-suspenders check.
			break
		}
		reverted = r
		cumulative[r] = cumulative[r-1] + g
	}

	bestR := 0
	bestVal := cumulative[0]
	for r := 1; r <= reverted; r++ {
		if cumulative[r] >= bestVal {
			bestVal = cumulative[r]
			bestR = r
		}
	}

	// Currently at state "reverted" moves undone. Re-apply forward,
	// starting from the earliest reverted move, everything that should be
	// kept: moves ordered[n-reverted .. n-bestR-1].
	for i := n - reverted; i < n-bestR; i++ {
		m := ordered[i]
		maxWeightTo := phg.MaxPartWeight(m.To)
		ok := phg.ChangeNodePartFullUpdate(m.V, m.From, m.To, maxWeightTo, nil, nil)
		if !ok {
			panic("partition: rollback failed to re-apply a previously-committed move")
		}
	}

	return n - bestR, bestVal > cumulative[reverted]
}
