package fm

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// SharedFMData is the cross-search coordination state for one concurrent
// FM round: the node tracker, the seed work queue, and the append-only
// move log with its global sequence counter.
type SharedFMData struct {
	Tracker *NodeTracker

	seeds   []hgraph.NodeID
	seedIdx atomic.Int64
	seq     atomic.Uint64

	logMu sync.Mutex
	log   []partition.MoveRecord

	// runID tags each round for log correlation.
	runID string
}

func NewSharedFMData(numNodes int) *SharedFMData {
	return &SharedFMData{
		Tracker: NewNodeTracker(numNodes),
		runID:   uuid.New().String(),
	}
}

func (s *SharedFMData) RunID() string { return s.runID }

// SetSeeds installs a copy of seeds as this round's work queue, shuffled
// with rng if non-nil; the caller's slice is left unchanged.
func (s *SharedFMData) SetSeeds(seeds []hgraph.NodeID, rng *rand.Rand) {
	shuffled := make([]hgraph.NodeID, len(seeds))
	copy(shuffled, seeds)
	if rng != nil {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}
	s.seeds = shuffled
	s.seedIdx.Store(0)
}

// NextSeed atomically pulls the next seed off the work queue.
func (s *SharedFMData) NextSeed() (hgraph.NodeID, bool) {
	i := s.seedIdx.Add(1) - 1
	if int(i) >= len(s.seeds) {
		return 0, false
	}
	return s.seeds[i], true
}

// NextSeq allocates the next move-log sequence number.
func (s *SharedFMData) NextSeq() uint64 { return s.seq.Add(1) }

func (s *SharedFMData) AppendMove(m partition.MoveRecord) {
	s.logMu.Lock()
	s.log = append(s.log, m)
	s.logMu.Unlock()
}

// MoveLog returns a snapshot of the round's move log.
func (s *SharedFMData) MoveLog() []partition.MoveRecord {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	out := make([]partition.MoveRecord, len(s.log))
	copy(out, s.log)
	return out
}

// ResetRound clears the move log, sequence counter and node tracker for a
// fresh round, and mints a new run id.
func (s *SharedFMData) ResetRound() {
	s.logMu.Lock()
	s.log = s.log[:0]
	s.logMu.Unlock()
	s.seq.Store(0)
	s.seedIdx.Store(0)
	s.Tracker.ResetAll()
	s.runID = uuid.New().String()
}
