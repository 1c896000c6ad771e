package partition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPinCountTableIncDec(t *testing.T) {
	tbl := NewPinCountTable(2, 3)
	require.Equal(t, 0, tbl.Get(0, 1))
	require.Equal(t, 1, tbl.Inc(0, 1))
	require.Equal(t, 2, tbl.Inc(0, 1))
	require.Equal(t, 1, tbl.Dec(0, 1))
	require.Equal(t, 1, tbl.Get(0, 1))
}

func TestPinCountTableSetAndReset(t *testing.T) {
	tbl := NewPinCountTable(1, 2)
	tbl.Set(0, 0, 5)
	require.Equal(t, 5, tbl.Get(0, 0))
	tbl.Reset()
	require.Equal(t, 0, tbl.Get(0, 0))
}

func TestPinCountTableSumCheck(t *testing.T) {
	tbl := NewPinCountTable(1, 3)
	tbl.Inc(0, 0)
	tbl.Inc(0, 0)
	tbl.Inc(0, 2)
	require.Equal(t, 3, tbl.SumCheck(0))
}

func TestPinCountTableIndependentEdges(t *testing.T) {
	tbl := NewPinCountTable(2, 2)
	tbl.Inc(0, 0)
	require.Equal(t, 0, tbl.Get(1, 0))
}
