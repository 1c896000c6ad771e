package fm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

func TestNewMultiTryFMDefaults(t *testing.T) {
	m := NewMultiTryFM(4, MultiTryFMConfig{}, testLogger())
	require.Greater(t, m.cfg.NumSearches, 0)
	require.Equal(t, 1, m.cfg.MaxRounds)
}

func TestMultiTryFMRefineImprovesSimplePartition(t *testing.T) {
	phg := fourNodeFixture(t)
	before := km1Manual(t, phg)
	require.Equal(t, int64(2), before)

	refiner := NewMultiTryFM(phg.Hypergraph().NumNodes(), MultiTryFMConfig{
		MaxRounds:   3,
		NumSearches: 1,
		Seed:        1,
		Search:      SearchConfig{AcceptZeroGain: false, ReleaseNodes: true},
	}, testLogger())

	improved := refiner.Refine(phg)

	after := km1Manual(t, phg)
	require.LessOrEqual(t, after, before)
	if !improved {
		require.Equal(t, before, after)
	}
}

func TestMultiTryFMRefineReturnsFalseWhenNoBorderVertices(t *testing.T) {
	hg, err := hgraph.NewStaticHypergraph(2, [][]hgraph.NodeID{{0, 1}}, nil, nil)
	require.NoError(t, err)
	phg := partition.NewPartitionedHypergraph(hg, 2, partition.ObjectiveKm1)
	phg.SetMaxPartWeight(0, 10)
	phg.SetMaxPartWeight(1, 10)
	phg.SetOnlyNodePart(0, 0)
	phg.SetOnlyNodePart(1, 0)
	phg.InitializePartition()

	refiner := NewMultiTryFM(2, MultiTryFMConfig{}, testLogger())
	improved := refiner.Refine(phg)
	require.False(t, improved)
}

func km1Manual(t *testing.T, phg *partition.PartitionedHypergraph) int64 {
	t.Helper()
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
