package partition

// PinCountTable stores, for every (edge, block) pair, the number of
// pins of that edge currently assigned to that block. Entries are plain
// uint32 counters, so even nets of a few hundred thousand pins fit in a
// single block's slot. inc/dec are not
// individually atomic - they only need to be serialized by the edge's
// ownership lock, which PartitionedHypergraph holds before calling into
// this table.
type PinCountTable struct {
	k       int
	numEdge int
	counts  []uint32
}

// NewPinCountTable allocates a table for numEdges edges and k blocks, all
// counts starting at zero.
func NewPinCountTable(numEdges, k int) *PinCountTable {
	return &PinCountTable{
		k:       k,
		numEdge: numEdges,
		counts:  make([]uint32, numEdges*k),
	}
}

func (t *PinCountTable) index(e int, p BlockID) int {
	return e*t.k + int(p)
}

// Get returns pin_count(e, p).
func (t *PinCountTable) Get(e int, p BlockID) int {
	return int(t.counts[t.index(e, p)])
}

// Set overwrites pin_count(e, p), used by bulk initialization.
func (t *PinCountTable) Set(e int, p BlockID, n int) {
	t.counts[t.index(e, p)] = uint32(n)
}

// Inc increments pin_count(e, p) and returns the new value.
func (t *PinCountTable) Inc(e int, p BlockID) int {
	idx := t.index(e, p)
	t.counts[idx]++
	return int(t.counts[idx])
}

// Dec decrements pin_count(e, p) and returns the new value.
func (t *PinCountTable) Dec(e int, p BlockID) int {
	idx := t.index(e, p)
	t.counts[idx]--
	return int(t.counts[idx])
}

// Reset zeroes every entry, used by PartitionedHypergraph.ResetPartition.
func (t *PinCountTable) Reset() {
	for i := range t.counts {
		t.counts[i] = 0
	}
}

// SumCheck returns Σ_p pin_count(e,p), used by property tests for
// invariant P1.
func (t *PinCountTable) SumCheck(e int) int {
	sum := 0
	for p := 0; p < t.k; p++ {
		sum += t.Get(e, BlockID(p))
	}
	return sum
}
