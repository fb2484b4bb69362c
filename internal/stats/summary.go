// Package stats derives per-generation diagnostics from evaluated
// populations and writes run artifacts to disk.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// Summarize condenses one evaluated population into a diagnostics row.
// compatiblePairs and hadronCount come from the engine because they are not
// recoverable from fitness values alone.
func Summarize(generation int, population []model.SubSKB, compatiblePairs, frozenCount, hadronCount int) (model.GenerationDiagnostics, error) {
	if len(population) == 0 {
		return model.GenerationDiagnostics{}, fmt.Errorf("population is empty")
	}

	fitness := make([]float64, len(population))
	for i, member := range population {
		if !member.Evaluated {
			return model.GenerationDiagnostics{}, fmt.Errorf("member %d is not evaluated", i)
		}
		fitness[i] = member.Fitness
	}

	stddev := 0.0
	if len(fitness) > 1 {
		stddev = stat.StdDev(fitness, nil)
	}

	return model.GenerationDiagnostics{
		Generation:      generation,
		BestFitness:     floats.Max(fitness),
		MeanFitness:     stat.Mean(fitness, nil),
		MinFitness:      floats.Min(fitness),
		FitnessStdDev:   stddev,
		CompatiblePairs: compatiblePairs,
		FrozenCount:     frozenCount,
		HadronCount:     hadronCount,
	}, nil
}
