package partition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectivitySetAddRemove(t *testing.T) {
	cs := NewConnectivitySet(1, 4)
	require.Equal(t, 0, cs.Count(0))

	require.True(t, cs.Add(0, 2))
	require.True(t, cs.Contains(0, 2))
	require.Equal(t, 1, cs.Count(0))

	require.False(t, cs.Add(0, 2))
	require.Equal(t, 1, cs.Count(0))

	require.True(t, cs.Remove(0, 2))
	require.False(t, cs.Contains(0, 2))
	require.Equal(t, 0, cs.Count(0))

	require.False(t, cs.Remove(0, 2))
}

func TestConnectivitySetBlocksAscending(t *testing.T) {
	cs := NewConnectivitySet(1, 200)
	cs.Add(0, 150)
	cs.Add(0, 3)
	cs.Add(0, 70)
	require.Equal(t, []BlockID{3, 70, 150}, cs.Blocks(0))
}

func TestConnectivitySetForEachBlockMatchesBlocks(t *testing.T) {
	cs := NewConnectivitySet(1, 130)
	cs.Add(0, 1)
	cs.Add(0, 64)
	cs.Add(0, 129)

	var collected []BlockID
	cs.ForEachBlock(0, func(p BlockID) { collected = append(collected, p) })
	require.Equal(t, cs.Blocks(0), collected)
}

func TestConnectivitySetReset(t *testing.T) {
	cs := NewConnectivitySet(2, 4)
	cs.Add(0, 1)
	cs.Add(1, 2)
	cs.Reset()
	require.Equal(t, 0, cs.Count(0))
	require.Equal(t, 0, cs.Count(1))
}

func TestConnectivitySetIndependentEdges(t *testing.T) {
	cs := NewConnectivitySet(2, 4)
	cs.Add(0, 1)
	require.False(t, cs.Contains(1, 1))
}
