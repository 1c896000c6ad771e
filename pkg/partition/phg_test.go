package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// buildFixture constructs a 4-node, 2-edge hypergraph (e0={0,1,2}, e1={2,3})
// partitioned into 3 blocks: 0,1 -> block 0; 2 -> block 1; 3 -> block 2.
func buildFixture(t *testing.T) (*hgraph.StaticHypergraph, *PartitionedHypergraph) {
	t.Helper()
	hg, err := hgraph.NewStaticHypergraph(4, [][]hgraph.NodeID{{0, 1, 2}, {2, 3}}, nil, nil)
	require.NoError(t, err)

	phg := NewPartitionedHypergraph(hg, 3, ObjectiveKm1)
	for p := 0; p < 3; p++ {
		phg.SetMaxPartWeight(BlockID(p), 100)
	}
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.SetOnlyNodePart(2, 1)
	phg.SetOnlyNodePart(3, 2)
	phg.InitializePartition()
	return hg, phg
}

// buildFixtureWithSpareVertex is buildFixture plus an isolated vertex 4 in
// block 1, so vertex 2 can leave block 1 without emptying it (the move
// primitive rejects a move that would leave its source block empty).
func buildFixtureWithSpareVertex(t *testing.T) *PartitionedHypergraph {
	t.Helper()
	hg, err := hgraph.NewStaticHypergraph(5, [][]hgraph.NodeID{{0, 1, 2}, {2, 3}}, nil, nil)
	require.NoError(t, err)

	phg := NewPartitionedHypergraph(hg, 3, ObjectiveKm1)
	for p := 0; p < 3; p++ {
		phg.SetMaxPartWeight(BlockID(p), 100)
	}
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.SetOnlyNodePart(2, 1)
	phg.SetOnlyNodePart(3, 2)
	phg.SetOnlyNodePart(4, 1)
	phg.InitializePartition()
	return phg
}

func km1Manual(phg *PartitionedHypergraph) int64 {
	h := phg.Hypergraph()
	var total int64
	m := h.NumEdges()
	for e := 0; e < m; e++ {
		lambda := int64(phg.Connectivity(hgraph.EdgeID(e)))
		if lambda > 1 {
			total += h.EdgeWeight(hgraph.EdgeID(e)) * (lambda - 1)
		}
	}
	return total
}

func TestInitializePartitionPinCountsAndConnectivity(t *testing.T) {
	_, phg := buildFixture(t)

	require.Equal(t, 2, phg.PinCountInPart(0, 0))
	require.Equal(t, 1, phg.PinCountInPart(0, 1))
	require.Equal(t, 0, phg.PinCountInPart(0, 2))
	require.Equal(t, 2, phg.Connectivity(0))

	require.Equal(t, 1, phg.PinCountInPart(1, 1))
	require.Equal(t, 1, phg.PinCountInPart(1, 2))
	require.Equal(t, 2, phg.Connectivity(1))

	require.Equal(t, int64(2), phg.PartWeight(0))
	require.Equal(t, int64(1), phg.PartWeight(1))
	require.Equal(t, int64(1), phg.PartWeight(2))
}

func TestChangeNodePartRejectsOverweightMove(t *testing.T) {
	_, phg := buildFixture(t)
	phg.SetMaxPartWeight(2, 1) // block 2 already at weight 1, no room

	ok := phg.ChangeNodePart(2, 1, 2, phg.MaxPartWeight(2), nil)
	require.False(t, ok)
	require.Equal(t, BlockID(1), phg.PartID(2))
}

func TestChangeNodePartFullUpdateMatchesKm1Delta(t *testing.T) {
	phg := buildFixtureWithSpareVertex(t)
	phg.InitializeGainCache()

	before := km1Manual(phg)
	predicted := phg.GainCache().Gain(2, 1, 2)

	ok := phg.ChangeNodePartFullUpdate(2, 1, 2, phg.MaxPartWeight(2), nil, nil)
	require.True(t, ok)

	after := km1Manual(phg)
	require.Equal(t, predicted, before-after)
}

func TestChangeNodePartPanicsOnWrongFrom(t *testing.T) {
	_, phg := buildFixture(t)
	require.Panics(t, func() {
		phg.ChangeNodePart(2, 0, 2, phg.MaxPartWeight(2), nil)
	})
}

func TestResetPartitionClearsState(t *testing.T) {
	_, phg := buildFixture(t)
	phg.InitializeGainCache()
	phg.ResetPartition()

	require.Equal(t, InvalidBlock, phg.PartID(0))
	require.Equal(t, int64(0), phg.PartWeight(0))
	require.Equal(t, 0, phg.Connectivity(0))
	require.False(t, phg.IsGainCacheInitialized())
}

func TestIsBorderNode(t *testing.T) {
	_, phg := buildFixture(t)
	require.True(t, phg.IsBorderNode(2))
	require.True(t, phg.IsBorderNode(0))

	hg2, err := hgraph.NewStaticHypergraph(2, [][]hgraph.NodeID{{0, 1}}, nil, nil)
	require.NoError(t, err)
	phg2 := NewPartitionedHypergraph(hg2, 2, ObjectiveKm1)
	phg2.SetMaxPartWeight(0, 10)
	phg2.SetMaxPartWeight(1, 10)
	phg2.SetOnlyNodePart(0, 0)
	phg2.SetOnlyNodePart(1, 0)
	phg2.InitializePartition()
	require.False(t, phg2.IsBorderNode(0))
}
