package fm

import (
	"sync/atomic"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
)

// SearchID identifies one localized FM search. The zero value, unused,
// marks a vertex as free; moved marks a vertex that has already committed
// a move this round and must stay reserved until the round ends.
type SearchID uint64

const unused SearchID = 0
const moved SearchID = ^SearchID(0)

// NodeTracker is the cross-thread reservation table: at most one active
// search may hold a given vertex at a time, enforced by a single CAS per
// vertex.
type NodeTracker struct {
	owner  []atomic.Uint64
	nextID atomic.Uint64
}

func NewNodeTracker(numNodes int) *NodeTracker {
	return &NodeTracker{owner: make([]atomic.Uint64, numNodes)}
}

// NewSearchID mints a fresh, never-reused search id for this round.
func (t *NodeTracker) NewSearchID() SearchID {
	return SearchID(t.nextID.Add(1))
}

// Reserve attempts to claim v for sid, succeeding iff v was unused.
func (t *NodeTracker) Reserve(v hgraph.NodeID, sid SearchID) bool {
	return t.owner[v].CompareAndSwap(uint64(unused), uint64(sid))
}

// Release frees v back to unused. Used when a search discards a
// candidate it reserved but never moved.
func (t *NodeTracker) Release(v hgraph.NodeID) {
	t.owner[v].Store(uint64(unused))
}

// MarkMoved marks v as committed for the remainder of the round; it stays
// reserved (not reusable by another search) until ResetAll.
func (t *NodeTracker) MarkMoved(v hgraph.NodeID) {
	t.owner[v].Store(uint64(moved))
}

func (t *NodeTracker) Owner(v hgraph.NodeID) SearchID {
	return SearchID(t.owner[v].Load())
}

func (t *NodeTracker) IsReservedBy(v hgraph.NodeID, sid SearchID) bool {
	return t.Owner(v) == sid
}

// ResetAll frees every vertex, starting a new round.
func (t *NodeTracker) ResetAll() {
	for i := range t.owner {
		t.owner[i].Store(uint64(unused))
	}
}
