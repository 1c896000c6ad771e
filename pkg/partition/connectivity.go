package partition

import "math/bits"

// ConnectivitySet tracks, for every edge, the set of blocks with at least
// one pin in that edge. Each edge gets a bitset over blocks (one uint64
// word per 64 blocks) plus a running popcount. Mutations are serialized
// by the edge's ownership lock in the same way PinCountTable's are.
type ConnectivitySet struct {
	k         int
	words     int
	bitsets   []uint64 // numEdges*words
	counts    []int32  // numEdges, cached popcount = λ(e)
}

// NewConnectivitySet allocates connectivity storage for numEdges edges
// over k blocks.
func NewConnectivitySet(numEdges, k int) *ConnectivitySet {
	words := (k + 63) / 64
	if words == 0 {
		words = 1
	}
	return &ConnectivitySet{
		k:       k,
		words:   words,
		bitsets: make([]uint64, numEdges*words),
		counts:  make([]int32, numEdges),
	}
}

func (c *ConnectivitySet) wordIndex(e int, p BlockID) (int, uint64) {
	word := int(p) / 64
	bit := uint64(1) << uint(int(p)%64)
	return e*c.words + word, bit
}

// Contains reports whether p ∈ connectivity_set[e].
func (c *ConnectivitySet) Contains(e int, p BlockID) bool {
	idx, bit := c.wordIndex(e, p)
	return c.bitsets[idx]&bit != 0
}

// Add inserts p into connectivity_set[e]. Returns true if it was not
// already present.
func (c *ConnectivitySet) Add(e int, p BlockID) bool {
	idx, bit := c.wordIndex(e, p)
	if c.bitsets[idx]&bit != 0 {
		return false
	}
	c.bitsets[idx] |= bit
	c.counts[e]++
	return true
}

// Remove deletes p from connectivity_set[e]. Returns true if it was
// present.
func (c *ConnectivitySet) Remove(e int, p BlockID) bool {
	idx, bit := c.wordIndex(e, p)
	if c.bitsets[idx]&bit == 0 {
		return false
	}
	c.bitsets[idx] &^= bit
	c.counts[e]--
	return true
}

// Count returns λ(e) = |connectivity_set[e]|.
func (c *ConnectivitySet) Count(e int) int {
	return int(c.counts[e])
}

// Reset clears all bitsets, used by PartitionedHypergraph.ResetPartition.
func (c *ConnectivitySet) Reset() {
	for i := range c.bitsets {
		c.bitsets[i] = 0
	}
	for i := range c.counts {
		c.counts[i] = 0
	}
}

// Blocks iterates the connectivity set of e in ascending block order.
func (c *ConnectivitySet) Blocks(e int) []BlockID {
	out := make([]BlockID, 0, c.counts[e])
	base := e * c.words
	for w := 0; w < c.words; w++ {
		word := c.bitsets[base+w]
		for word != 0 {
			bitPos := bits.TrailingZeros64(word)
			out = append(out, BlockID(w*64+bitPos))
			word &= word - 1
		}
	}
	return out
}

// ForEachBlock calls fn for every block in connectivity_set[e], in
// ascending order, without allocating a slice.
func (c *ConnectivitySet) ForEachBlock(e int, fn func(p BlockID)) {
	base := e * c.words
	for w := 0; w < c.words; w++ {
		word := c.bitsets[base+w]
		for word != 0 {
			bitPos := bits.TrailingZeros64(word)
			fn(BlockID(w*64 + bitPos))
			word &= word - 1
		}
	}
}
