package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

func TestExtractBlockWithoutCutNetSplittingDropsNonEntireEdges(t *testing.T) {
	_, phg := buildFixture(t)

	sub, mapping := ExtractBlock(phg, 0, false)

	require.Equal(t, 2, sub.NumNodes())
	require.Equal(t, 0, sub.NumEdges())
	require.Equal(t, hgraph.NodeID(0), mapping.ToExtracted[0])
	require.Equal(t, hgraph.NodeID(1), mapping.ToExtracted[1])
	require.Equal(t, InvalidNodeID, mapping.ToExtracted[2])
	require.Equal(t, []hgraph.NodeID{0, 1}, mapping.FromExtracted)
}

func TestExtractBlockWithCutNetSplittingProjectsPartialEdges(t *testing.T) {
	_, phg := buildFixture(t)

	sub, _ := ExtractBlock(phg, 0, true)

	require.Equal(t, 2, sub.NumNodes())
	require.Equal(t, 1, sub.NumEdges())
	require.ElementsMatch(t, []hgraph.NodeID{0, 1}, sub.Pins(0))
}

func TestExtractBlockSingleVertexBlockHasNoSurvivingEdges(t *testing.T) {
	_, phg := buildFixture(t)

	sub, mapping := ExtractBlock(phg, 1, true)

	require.Equal(t, 1, sub.NumNodes())
	require.Equal(t, 0, sub.NumEdges())
	require.Equal(t, hgraph.NodeID(0), mapping.ToExtracted[2])
}
