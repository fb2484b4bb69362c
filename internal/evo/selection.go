package evo

import (
	"fmt"
	"math/rand"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// TournamentSelector samples K candidates uniformly with replacement and
// returns the best fitness among them, first-seen winning ties.
type TournamentSelector struct {
	K int
}

func (s TournamentSelector) Name() string {
	return "tournament"
}

// Pick requires an evaluated candidate pool; selecting on undefined fitness
// is an error rather than silent NaN ordering.
func (s TournamentSelector) Pick(rng *rand.Rand, candidates []model.SubSKB) (model.SubSKB, error) {
	if rng == nil {
		return model.SubSKB{}, fmt.Errorf("random source is required")
	}
	if len(candidates) == 0 {
		return model.SubSKB{}, fmt.Errorf("no selection candidates")
	}
	k := s.K
	if k <= 0 {
		k = 3
	}

	var best model.SubSKB
	for i := 0; i < k; i++ {
		candidate := candidates[rng.Intn(len(candidates))]
		if !candidate.Evaluated {
			return model.SubSKB{}, fmt.Errorf("tournament selection requires an evaluated population")
		}
		if i == 0 || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best, nil
}
