package fm

import (
	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// vertexEntry is one slot of a vertexPQ: a candidate vertex and the gain
// of moving it to its currently-best destination block.
type vertexEntry struct {
	node hgraph.NodeID
	key  partition.Gain
}

// vertexPQ is an addressable array-backed max-heap over vertices, one per
// block. Array-backed and index-addressed rather than built on
// container/heap, to avoid per-comparison interface
// dispatch in the FM inner loop, the same tradeoff
// other_examples/Consensys-gnark__heap.go makes for its linear-expression
// merge heap.
type vertexPQ struct {
	items []vertexEntry
	pos   map[hgraph.NodeID]int
}

func newVertexPQ() *vertexPQ {
	return &vertexPQ{pos: make(map[hgraph.NodeID]int)}
}

func (h *vertexPQ) Len() int { return len(h.items) }

func (h *vertexPQ) Contains(v hgraph.NodeID) bool {
	_, ok := h.pos[v]
	return ok
}

func (h *vertexPQ) Top() (hgraph.NodeID, partition.Gain, bool) {
	if len(h.items) == 0 {
		return 0, 0, false
	}
	return h.items[0].node, h.items[0].key, true
}

func (h *vertexPQ) Insert(v hgraph.NodeID, key partition.Gain) {
	if i, ok := h.pos[v]; ok {
		h.items[i].key = key
		h.fix(i)
		return
	}
	h.items = append(h.items, vertexEntry{node: v, key: key})
	i := len(h.items) - 1
	h.pos[v] = i
	h.up(i)
}

func (h *vertexPQ) AdjustKey(v hgraph.NodeID, key partition.Gain) {
	i, ok := h.pos[v]
	if !ok {
		h.Insert(v, key)
		return
	}
	h.items[i].key = key
	h.fix(i)
}

func (h *vertexPQ) Remove(v hgraph.NodeID) {
	i, ok := h.pos[v]
	if !ok {
		return
	}
	n := len(h.items) - 1
	h.swap(i, n)
	h.items = h.items[:n]
	delete(h.pos, v)
	if i < n {
		h.fix(i)
	}
}

func (h *vertexPQ) Pop() (hgraph.NodeID, partition.Gain, bool) {
	v, k, ok := h.Top()
	if !ok {
		return 0, 0, false
	}
	h.Remove(v)
	return v, k, true
}

func (h *vertexPQ) less(i, j int) bool { return h.items[i].key > h.items[j].key }
func (h *vertexPQ) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].node] = i
	h.pos[h.items[j].node] = j
}

func (h *vertexPQ) fix(i int) {
	if !h.down(i, len(h.items)) {
		h.up(i)
	}
}

func (h *vertexPQ) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *vertexPQ) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
	return i > i0
}

// blockEntry is one slot of blockPQ.
type blockEntry struct {
	block partition.BlockID
	key   partition.Gain
}

// blockPQ is the block-level counterpart of vertexPQ: one entry per block
// that currently has candidate vertices, keyed by the best gain among
// them.
type blockPQ struct {
	items []blockEntry
	pos   map[partition.BlockID]int
}

func newBlockPQ() *blockPQ {
	return &blockPQ{pos: make(map[partition.BlockID]int)}
}

func (h *blockPQ) Len() int { return len(h.items) }

func (h *blockPQ) Contains(b partition.BlockID) bool {
	_, ok := h.pos[b]
	return ok
}

func (h *blockPQ) Top() (partition.BlockID, partition.Gain, bool) {
	if len(h.items) == 0 {
		return 0, 0, false
	}
	return h.items[0].block, h.items[0].key, true
}

func (h *blockPQ) Insert(b partition.BlockID, key partition.Gain) {
	if i, ok := h.pos[b]; ok {
		h.items[i].key = key
		h.fix(i)
		return
	}
	h.items = append(h.items, blockEntry{block: b, key: key})
	i := len(h.items) - 1
	h.pos[b] = i
	h.up(i)
}

func (h *blockPQ) AdjustKey(b partition.BlockID, key partition.Gain) {
	i, ok := h.pos[b]
	if !ok {
		h.Insert(b, key)
		return
	}
	h.items[i].key = key
	h.fix(i)
}

func (h *blockPQ) Remove(b partition.BlockID) {
	i, ok := h.pos[b]
	if !ok {
		return
	}
	n := len(h.items) - 1
	h.swap(i, n)
	h.items = h.items[:n]
	delete(h.pos, b)
	if i < n {
		h.fix(i)
	}
}

func (h *blockPQ) Pop() (partition.BlockID, partition.Gain, bool) {
	b, k, ok := h.Top()
	if !ok {
		return 0, 0, false
	}
	h.Remove(b)
	return b, k, true
}

func (h *blockPQ) less(i, j int) bool { return h.items[i].key > h.items[j].key }
func (h *blockPQ) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].block] = i
	h.pos[h.items[j].block] = j
}

func (h *blockPQ) fix(i int) {
	if !h.down(i, len(h.items)) {
		h.up(i)
	}
}

func (h *blockPQ) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *blockPQ) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
	return i > i0
}
