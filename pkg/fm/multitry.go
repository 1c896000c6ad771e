package fm

import (
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// MultiTryFMConfig configures the refine driver.
type MultiTryFMConfig struct {
	// MaxRounds bounds how many parallel seed-to-rollback rounds are run;
	// the driver stops earlier once a round fails to improve.
	MaxRounds int
	// NumSearches is the number of concurrent LocalizedSearch instances
	// per round; 0 defaults to GOMAXPROCS.
	NumSearches int
	// Seed drives the per-round seed-queue shuffle RNG. Determinism is
	// guaranteed only for a fixed (NumSearches, Seed) pair, since the
	// number of goroutines racing to claim seeds affects scheduling order.
	Seed int64

	Search SearchConfig
}

// MultiTryFM is the refine driver: it runs independent localized FM
// searches in parallel, each seeded from a different border vertex, then
// hands the round's move log to Rollback.
type MultiTryFM struct {
	cfg    MultiTryFMConfig
	shared *SharedFMData
	logger zerolog.Logger
}

func NewMultiTryFM(numNodes int, cfg MultiTryFMConfig, logger zerolog.Logger) *MultiTryFM {
	if cfg.NumSearches <= 0 {
		cfg.NumSearches = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 1
	}
	return &MultiTryFM{
		cfg:    cfg,
		shared: NewSharedFMData(numNodes),
		logger: logger,
	}
}

// Refine runs up to MaxRounds rounds on phg, stopping as soon as a round
// fails to improve the objective, and returns true iff any round did.
func (m *MultiTryFM) Refine(phg *partition.PartitionedHypergraph) bool {
	if !phg.IsGainCacheInitialized() {
		phg.InitializeGainCache()
	}

	rng := rand.New(rand.NewSource(m.cfg.Seed))
	improvedOverall := false

	for round := 0; round < m.cfg.MaxRounds; round++ {
		seeds := borderSeeds(phg)
		if len(seeds) == 0 {
			m.logger.Debug().Int("round", round).Msg("no border vertices remain, stopping")
			break
		}

		m.shared.ResetRound()
		m.shared.SetSeeds(seeds, rng)

		var g errgroup.Group
		g.SetLimit(m.cfg.NumSearches)
		for i := 0; i < m.cfg.NumSearches; i++ {
			g.Go(func() error {
				m.runOneSearchStream(phg)
				return nil
			})
		}
		_ = g.Wait()

		moveLog := m.shared.MoveLog()
		kept, improved := partition.Rollback(phg, moveLog)
		m.logger.Info().
			Str("run_id", m.shared.RunID()).
			Int("round", round).
			Int("moves_committed", len(moveLog)).
			Int("moves_kept", kept).
			Bool("improved", improved).
			Msg("fm round complete")

		if !improved {
			break
		}
		improvedOverall = true
	}

	return improvedOverall
}

// runOneSearchStream drains the shared seed queue through one
// LocalizedSearch instance until the queue is empty, skipping seeds it
// cannot reserve or that have no feasible destination.
func (m *MultiTryFM) runOneSearchStream(phg *partition.PartitionedHypergraph) {
	id := m.shared.Tracker.NewSearchID()
	search := NewLocalizedSearch(phg, m.shared, id, m.cfg.Search, m.logger)
	for {
		seed, ok := m.shared.NextSeed()
		if !ok {
			return
		}
		if !search.Seed(seed) {
			continue
		}
		for _, mv := range search.Run() {
			m.shared.AppendMove(mv)
		}
	}
}

func borderSeeds(phg *partition.PartitionedHypergraph) []hgraph.NodeID {
	n := phg.Hypergraph().NumNodes()
	seeds := make([]hgraph.NodeID, 0, n/4+1)
	for v := 0; v < n; v++ {
		nv := hgraph.NodeID(v)
		if phg.IsBorderNode(nv) {
			seeds = append(seeds, nv)
		}
	}
	return seeds
}
