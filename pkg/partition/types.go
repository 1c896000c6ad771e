// Package partition implements the refinement engine's data structures:
// per-hyperedge pin counts and connectivity sets, the partitioned
// hypergraph with its single move primitive, and the km1/cut gain caches
// that ride along with every move.
package partition

import "github.com/gilchrisn/hgpartition/pkg/hgraph"

// BlockID identifies one of the k output blocks, 0..k-1.
type BlockID int32

// InvalidBlock is the sentinel part id for an unassigned node.
const InvalidBlock BlockID = -1

// InvalidNodeID is the sentinel "no node" id: it marks vertices outside an
// extracted block and is passed to findPinInPart when no pin is excluded.
const InvalidNodeID hgraph.NodeID = -1

// Gain is a signed connectivity/cut delta; positive means the objective
// would improve.
type Gain = int64

// Objective selects which metric the gain cache tracks.
type Objective int

const (
	// ObjectiveKm1 tracks Σ_e w(e)·(λ(e)-1).
	ObjectiveKm1 Objective = iota
	// ObjectiveCut tracks Σ_{e: λ(e)>1} w(e).
	ObjectiveCut
)

// highDegreeThreshold is the degree above which gain-cache initialization
// switches to a parallel reduction over a single node's incident edges
// instead of processing nodes sequentially within the outer parallel
// loop.
const highDegreeThreshold = 100_000

// DeltaEvent is emitted once per incident edge touched by a successful
// move, carrying everything a delta-gain consumer needs.
type DeltaEvent struct {
	Edge            hgraph.EdgeID
	EdgeWeight      int64
	EdgeSize        int
	PinCountFrom    int
	PinCountTo      int
}

// DeltaFunc consumes one DeltaEvent per incident edge of a move.
type DeltaFunc func(ev DeltaEvent)

// OnSuccessFunc is invoked once, after every incident edge of a move has
// had its delta applied.
type OnSuccessFunc func()
