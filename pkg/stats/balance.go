// Package stats summarizes a computed partition: per-block weights, the
// objective value, and balance statistics (mean/stddev of block weights)
// via gonum.
package stats

import (
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/hgpartition/pkg/hgraph"
	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// BlockWeights returns part_weight(p) for p in [0,k).
func BlockWeights(phg *partition.PartitionedHypergraph) []float64 {
	k := phg.K()
	weights := make([]float64, k)
	for p := 0; p < k; p++ {
		weights[p] = float64(phg.PartWeight(partition.BlockID(p)))
	}
	return weights
}

// BalanceSummary reports the mean and sample standard deviation of
// block weights, and the imbalance ratio of the heaviest block relative
// to the perfectly-even share.
type BalanceSummary struct {
	Mean        float64
	StdDev      float64
	MaxWeight   float64
	Imbalance   float64 // MaxWeight / Mean, 1.0 is perfectly balanced
}

func Balance(phg *partition.PartitionedHypergraph) BalanceSummary {
	weights := BlockWeights(phg)
	mean := stat.Mean(weights, nil)
	std := stat.StdDev(weights, nil)
	max := 0.0
	for _, w := range weights {
		if w > max {
			max = w
		}
	}
	imbalance := 1.0
	if mean > 0 {
		imbalance = max / mean
	}
	return BalanceSummary{Mean: mean, StdDev: std, MaxWeight: max, Imbalance: imbalance}
}

// Km1 computes Σ_e w(e)·(λ(e)-1) directly from the current partition,
// independent of the gain cache; used to cross-check gain-cache-driven
// refinement against ground truth in CLI reporting.
func Km1(phg *partition.PartitionedHypergraph) int64 {
	h := phg.Hypergraph()
	var total int64
	h.ForEachEdge(func(e hgraph.EdgeID) {
		lambda := int64(phg.Connectivity(e))
		if lambda > 1 {
			total += h.EdgeWeight(e) * (lambda - 1)
		}
	})
	return total
}

// Cut computes Σ_{e: λ(e)>1} w(e) directly from the current partition.
func Cut(phg *partition.PartitionedHypergraph) int64 {
	h := phg.Hypergraph()
	var total int64
	h.ForEachEdge(func(e hgraph.EdgeID) {
		if phg.Connectivity(e) > 1 {
			total += h.EdgeWeight(e)
		}
	})
	return total
}
