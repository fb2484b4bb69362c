package evo

import (
	"fmt"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// EvaluationSummary aggregates one evaluation pass over a population.
// CompatiblePairs counts unordered pairs scoring above 0.5; the per-member
// CompatibleCount written onto the individuals uses the stricter 0.7
// threshold. The two thresholds are distinct on purpose.
type EvaluationSummary struct {
	BestFitness     float64
	BestIndex       int
	MeanFitness     float64
	CompatiblePairs int
}

// EvaluatePopulation scores every unordered pair once and derives both the
// per-individual averages and the population pair count from the same
// scores. Fitness, CompatibleCount and Evaluated are written in place.
func EvaluatePopulation(population []model.SubSKB, w Weights) (EvaluationSummary, error) {
	if len(population) == 0 {
		return EvaluationSummary{}, fmt.Errorf("population is empty")
	}
	if err := w.Validate(); err != nil {
		return EvaluationSummary{}, fmt.Errorf("invalid compatibility weights: %w", err)
	}

	n := len(population)
	sums := make([]float64, n)
	counts := make([]int, n)
	pairs := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := PairwiseCompatibility(population[i], population[j], w)
			sums[i] += score
			sums[j] += score
			if score > memberCompatThreshold {
				counts[i]++
				counts[j]++
			}
			if score > pairCompatThreshold {
				pairs++
			}
		}
	}

	summary := EvaluationSummary{CompatiblePairs: pairs}
	total := 0.0
	for i := range population {
		fitness := 0.0
		if n > 1 {
			fitness = sums[i] / float64(n-1)
		}
		population[i].Fitness = fitness
		population[i].CompatibleCount = counts[i]
		population[i].Evaluated = true
		total += fitness
		if i == 0 || fitness > summary.BestFitness {
			summary.BestFitness = fitness
			summary.BestIndex = i
		}
	}
	summary.MeanFitness = total / float64(n)
	return summary, nil
}
