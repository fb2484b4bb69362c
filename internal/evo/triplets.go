package evo

import (
	"fmt"
	"sort"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// Triplet pairs a compatible triple's population slots with its result.
type Triplet struct {
	Slots  [3]int
	Result TripleResult
}

// FindCompatibleTriplets exhaustively enumerates all C(n,3) unordered
// triples, keeps the compatible ones and sorts them descending by score,
// ties broken by ascending slot order so the result is deterministic.
//
// Cubic in the population size; fine for populations in the tens, not
// reusable at larger scale.
func FindCompatibleTriplets(population []model.SubSKB, w Weights) ([]Triplet, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compatibility weights: %w", err)
	}

	var found []Triplet
	n := len(population)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				result := TripleCompatibility(population[i], population[j], population[k], w)
				if !result.Compatible {
					continue
				}
				found = append(found, Triplet{Slots: [3]int{i, j, k}, Result: result})
			}
		}
	}

	sort.Slice(found, func(a, b int) bool {
		if found[a].Result.Score != found[b].Result.Score {
			return found[a].Result.Score > found[b].Result.Score
		}
		return lessSlots(found[a].Slots, found[b].Slots)
	})
	return found, nil
}

func lessSlots(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
