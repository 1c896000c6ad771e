package partition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRollbackRevertsWorseningTrailingMove exercises a two-move round: the
// first move improves km1, the second one overshoots and makes it worse.
// Rollback should keep only the first move.
func TestRollbackRevertsWorseningTrailingMove(t *testing.T) {
	phg := buildFixtureWithSpareVertex(t)
	phg.InitializeGainCache()

	require.Equal(t, int64(2), km1Manual(phg))

	require.True(t, phg.ChangeNodePartFullUpdate(2, 1, 2, phg.MaxPartWeight(2), nil, nil))
	require.Equal(t, int64(1), km1Manual(phg))

	require.True(t, phg.ChangeNodePartFullUpdate(0, 0, 1, phg.MaxPartWeight(1), nil, nil))
	require.Equal(t, int64(2), km1Manual(phg))

	moves := []MoveRecord{
		{V: 2, From: 1, To: 2, Seq: 1},
		{V: 0, From: 0, To: 1, Seq: 2},
	}

	kept, improved := Rollback(phg, moves)

	require.Equal(t, 1, kept)
	require.True(t, improved)
	require.Equal(t, BlockID(0), phg.PartID(0))
	require.Equal(t, BlockID(2), phg.PartID(2))
	require.Equal(t, int64(1), km1Manual(phg))
}

// TestRollbackKeepsAllMovesWhenMonotonicallyImproving verifies that when
// every move improves the objective, nothing is reverted.
func TestRollbackKeepsAllMovesWhenMonotonicallyImproving(t *testing.T) {
	phg := buildFixtureWithSpareVertex(t)
	phg.InitializeGainCache()

	require.True(t, phg.ChangeNodePartFullUpdate(2, 1, 2, phg.MaxPartWeight(2), nil, nil))
	finalKm1 := km1Manual(phg)

	moves := []MoveRecord{{V: 2, From: 1, To: 2, Seq: 1}}
	kept, improved := Rollback(phg, moves)

	require.Equal(t, 1, kept)
	require.True(t, improved)
	require.Equal(t, finalKm1, km1Manual(phg))
}

// TestRollbackRevertsEverythingOnZeroGainRound checks the degenerate case
// where the only move nets zero improvement: the tie-break favors
// reverting everything over keeping a no-op move.
func TestRollbackRevertsEverythingOnZeroGainRound(t *testing.T) {
	_, phg := buildFixture(t)
	phg.InitializeGainCache()
	start := km1Manual(phg)

	require.True(t, phg.ChangeNodePartFullUpdate(0, 0, 1, phg.MaxPartWeight(1), nil, nil))

	moves := []MoveRecord{{V: 0, From: 0, To: 1, Seq: 1}}
	kept, improved := Rollback(phg, moves)

	require.Equal(t, 0, kept)
	require.False(t, improved)
	require.Equal(t, BlockID(0), phg.PartID(0))
	require.Equal(t, start, km1Manual(phg))
}
