package evo

import (
	"math"
	"testing"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/skb"
)

func TestEvaluatePopulationAveragesPairScores(t *testing.T) {
	alloc := skb.NewIDAllocator()
	w := DefaultWeights()

	population := []model.SubSKB{
		individual(t, alloc, model.Params{Tx: 0.1, Tt: 0.05, Genus: 1, Orientable: false}),
		individual(t, alloc, model.Params{Tx: -0.1, Tt: -0.05, Genus: 1, Orientable: true}),
		individual(t, alloc, model.Params{Tx: 0.2, Tt: 0, Genus: 1, Orientable: true}),
	}

	summary, err := EvaluatePopulation(population, w)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	for i := range population {
		if !population[i].Evaluated {
			t.Fatalf("member %d not marked evaluated", i)
		}
		// Fitness is the average pairwise score against the other members.
		want := 0.0
		for j := range population {
			if i == j {
				continue
			}
			want += PairwiseCompatibility(population[i], population[j], w)
		}
		want /= float64(len(population) - 1)
		if math.Abs(population[i].Fitness-want) > 1e-12 {
			t.Fatalf("member %d fitness = %v, want %v", i, population[i].Fitness, want)
		}
	}

	if summary.BestFitness < summary.MeanFitness {
		t.Fatalf("best %v below mean %v", summary.BestFitness, summary.MeanFitness)
	}
}

func TestEvaluatePopulationThresholdsAreDistinct(t *testing.T) {
	alloc := skb.NewIDAllocator()
	// Twist-only scoring gives full control over the pair score.
	w := Weights{Twist: 1, Sigma: 1}

	// Distances chosen so the (a,b) pair scores above 0.7 and the pairs
	// involving c land between 0.5 and 0.7: counted as compatible pairs but
	// not toward any member's compatible count.
	mid := math.Sqrt(0.45) // exp(-0.45) ~ 0.637
	population := []model.SubSKB{
		individual(t, alloc, model.Params{Tx: 0, Orientable: true}),
		individual(t, alloc, model.Params{Tx: -0.1, Orientable: true}),
		individual(t, alloc, model.Params{Tx: mid, Orientable: true}),
	}

	summary, err := EvaluatePopulation(population, w)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if summary.CompatiblePairs != 3 {
		t.Fatalf("expected 3 pairs above 0.5, got %d", summary.CompatiblePairs)
	}
	if population[0].CompatibleCount != 1 || population[1].CompatibleCount != 1 {
		t.Fatalf("expected exactly one >0.7 partner for members 0 and 1, got %d and %d",
			population[0].CompatibleCount, population[1].CompatibleCount)
	}
	if population[2].CompatibleCount != 0 {
		t.Fatalf("member 2 must have no >0.7 partner, got %d", population[2].CompatibleCount)
	}
}

func TestEvaluatePopulationRejectsBadInput(t *testing.T) {
	if _, err := EvaluatePopulation(nil, DefaultWeights()); err == nil {
		t.Fatal("empty population must be rejected")
	}
	alloc := skb.NewIDAllocator()
	population := []model.SubSKB{individual(t, alloc, model.Params{Orientable: true})}
	if _, err := EvaluatePopulation(population, Weights{}); err == nil {
		t.Fatal("all-zero weights must be rejected")
	}
}

func TestEvaluateSingletonPopulation(t *testing.T) {
	alloc := skb.NewIDAllocator()
	population := []model.SubSKB{individual(t, alloc, model.Params{Orientable: true})}
	summary, err := EvaluatePopulation(population, DefaultWeights())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if population[0].Fitness != 0 || summary.CompatiblePairs != 0 {
		t.Fatalf("singleton population must have zero fitness and no pairs")
	}
}
