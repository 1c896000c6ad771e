package fm

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fourNodeFixture mirrors the partition package's buildFixture (e0={0,1,2},
// e1={2,3}, initial blocks 0,0,1,2) plus an isolated vertex 4 in block 1,
// so vertex 2 can leave block 1 without emptying it (the move primitive
// rejects a move that would leave its source block empty).
func fourNodeFixture(t *testing.T) *partition.PartitionedHypergraph {
	t.Helper()
	hg, err := hgraph.NewStaticHypergraph(5, [][]hgraph.NodeID{{0, 1, 2}, {2, 3}}, nil, nil)
	require.NoError(t, err)

	phg := partition.NewPartitionedHypergraph(hg, 3, partition.ObjectiveKm1)
	for p := 0; p < 3; p++ {
		phg.SetMaxPartWeight(partition.BlockID(p), 100)
	}
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.SetOnlyNodePart(2, 1)
	phg.SetOnlyNodePart(3, 2)
	phg.SetOnlyNodePart(4, 1)
	phg.InitializePartition()
	phg.InitializeGainCache()
	return phg
}

func TestLocalizedSearchSeedInsertsFeasibleCandidate(t *testing.T) {
	phg := fourNodeFixture(t)
	shared := NewSharedFMData(4)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{}, testLogger())

	require.True(t, search.Seed(2))
	require.True(t, shared.Tracker.IsReservedBy(2, id))
	require.Equal(t, partition.BlockID(2), search.targetOf[2])
}

func TestLocalizedSearchSeedReleasesOnInfeasibleDestination(t *testing.T) {
	hg, err := hgraph.NewStaticHypergraph(2, [][]hgraph.NodeID{{0, 1}}, nil, nil)
	require.NoError(t, err)
	phg := partition.NewPartitionedHypergraph(hg, 2, partition.ObjectiveKm1)
	phg.SetMaxPartWeight(0, 10)
	phg.SetMaxPartWeight(1, 1) // block 1 already at weight 1, no room for node 0
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 1)
	phg.InitializePartition()
	phg.InitializeGainCache()

	shared := NewSharedFMData(2)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{}, testLogger())

	require.False(t, search.Seed(0))
	require.Equal(t, SearchID(0), shared.Tracker.Owner(0))
}

func TestLocalizedSearchSeedFailsWhenAlreadyReserved(t *testing.T) {
	phg := fourNodeFixture(t)
	shared := NewSharedFMData(4)
	otherID := shared.Tracker.NewSearchID()
	require.True(t, shared.Tracker.Reserve(2, otherID))

	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{}, testLogger())
	require.False(t, search.Seed(2))
}

func TestLocalizedSearchRunCommitsSingleImprovingMove(t *testing.T) {
	phg := fourNodeFixture(t)
	shared := NewSharedFMData(4)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{MaxMoves: 1}, testLogger())

	require.True(t, search.Seed(2))
	moves := search.Run()

	require.Len(t, moves, 1)
	require.Equal(t, hgraph.NodeID(2), moves[0].V)
	require.Equal(t, partition.BlockID(1), moves[0].From)
	require.Equal(t, partition.BlockID(2), moves[0].To)
	require.Equal(t, partition.Gain(1), moves[0].CachedGain)
	require.Equal(t, partition.BlockID(2), phg.PartID(2))
	require.Equal(t, moved, shared.Tracker.Owner(2))
}

func TestLocalizedSearchRunDropsZeroGainMoveByDefault(t *testing.T) {
	hg, err := hgraph.NewStaticHypergraph(3, [][]hgraph.NodeID{{0, 1}, {1, 2}}, nil, nil)
	require.NoError(t, err)
	phg := partition.NewPartitionedHypergraph(hg, 2, partition.ObjectiveKm1)
	phg.SetMaxPartWeight(0, 10)
	phg.SetMaxPartWeight(1, 10)
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.SetOnlyNodePart(2, 1)
	phg.InitializePartition()
	phg.InitializeGainCache()

	shared := NewSharedFMData(3)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{AcceptZeroGain: false}, testLogger())

	require.True(t, search.Seed(1))
	moves := search.Run()

	require.Empty(t, moves)
	require.Equal(t, partition.BlockID(0), phg.PartID(1))
}

func TestLocalizedSearchRunAcceptsZeroGainMoveWhenConfigured(t *testing.T) {
	hg, err := hgraph.NewStaticHypergraph(3, [][]hgraph.NodeID{{0, 1}, {1, 2}}, nil, nil)
	require.NoError(t, err)
	phg := partition.NewPartitionedHypergraph(hg, 2, partition.ObjectiveKm1)
	phg.SetMaxPartWeight(0, 10)
	phg.SetMaxPartWeight(1, 10)
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.SetOnlyNodePart(2, 1)
	phg.InitializePartition()
	phg.InitializeGainCache()

	shared := NewSharedFMData(3)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{AcceptZeroGain: true, MaxMoves: 1}, testLogger())

	require.True(t, search.Seed(1))
	moves := search.Run()

	require.Len(t, moves, 1)
	require.Equal(t, partition.Gain(0), moves[0].CachedGain)
	require.Equal(t, partition.BlockID(1), phg.PartID(1))
}

func TestLocalizedSearchRunReleasesUnmovedReservationsWhenConfigured(t *testing.T) {
	phg := fourNodeFixture(t)
	shared := NewSharedFMData(4)
	id := shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, shared, id, SearchConfig{ReleaseNodes: true, MaxMoves: 1}, testLogger())

	require.True(t, search.Seed(2))
	search.Run()

	require.Empty(t, search.targetOf)
}
