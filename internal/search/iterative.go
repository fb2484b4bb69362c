package search

import (
	"fmt"
	"math"
	"sort"
)

// Iterative search limits. Steps above the cap are clamped per axis; spaces
// above the combination cap are rejected outright.
const (
	maxAxisSteps         = 20
	maxSpaceCombinations = 10000
	defaultMaxTargets    = 5
	resultsPerTarget     = 10
)

// IterativeParams configures a sweep of a generic parameter space against
// the theoretical twist/loop targets of a particle class.
type IterativeParams struct {
	Space      Space  `json:"parameter_space"`
	TargetType string `json:"target_type"`
	MaxTargets int    `json:"max_targets"`
}

// SpacePoint is one evaluated point of the space.
type SpacePoint struct {
	Parameters map[string]float64 `json:"parameters"`
	Error      float64            `json:"error"`
}

// TargetOutcome pairs one theoretical target with the points that fit it
// best, ascending by error.
type TargetOutcome struct {
	Target  TheoreticalTarget `json:"target"`
	Best    SpacePoint        `json:"best_configuration"`
	Results []SpacePoint      `json:"results"`
}

// IterativeReport is the outcome of one iterative sweep.
type IterativeReport struct {
	Targets               []TheoreticalTarget `json:"targets"`
	Outcomes              []TargetOutcome     `json:"results"`
	CombinationsEvaluated int                 `json:"combinations_evaluated"`
}

// RunIterative sweeps the parameter space once per theoretical target and
// reports the best-fitting configurations for each. Axis steps are clamped
// to the per-axis cap before enumeration.
func RunIterative(p IterativeParams) (IterativeReport, error) {
	if len(p.Space.Parameters) == 0 {
		return IterativeReport{}, fmt.Errorf("parameter space is empty")
	}

	space := Space{Parameters: make([]Parameter, len(p.Space.Parameters))}
	copy(space.Parameters, p.Space.Parameters)
	for i := range space.Parameters {
		if space.Parameters[i].Steps > maxAxisSteps {
			space.Parameters[i].Steps = maxAxisSteps
		}
	}
	if size := space.Size(); size > maxSpaceCombinations {
		return IterativeReport{}, fmt.Errorf("parameter space has %d combinations, limit is %d", size, maxSpaceCombinations)
	}

	kind := p.TargetType
	if kind == "" {
		kind = "all"
	}
	targets, err := TheoreticalTargets(kind)
	if err != nil {
		return IterativeReport{}, err
	}
	maxTargets := p.MaxTargets
	if maxTargets <= 0 {
		maxTargets = defaultMaxTargets
	}
	if len(targets) > maxTargets {
		targets = targets[:maxTargets]
	}

	combos := space.Combinations()
	outcomes := make([]TargetOutcome, 0, len(targets))
	for _, target := range targets {
		points := make([]SpacePoint, 0, len(combos))
		for _, combo := range combos {
			points = append(points, SpacePoint{
				Parameters: combo,
				Error:      targetError(combo, target),
			})
		}
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Error < points[j].Error
		})
		top := points
		if len(top) > resultsPerTarget {
			top = top[:resultsPerTarget]
		}
		outcomes = append(outcomes, TargetOutcome{
			Target:  target,
			Best:    top[0],
			Results: top,
		})
	}

	return IterativeReport{
		Targets:               targets,
		Outcomes:              outcomes,
		CombinationsEvaluated: len(combos),
	}, nil
}

// targetError scores one point against a target: normalized twist-sum and
// loop-factor errors blended by the target's weights. Missing loop_factor
// defaults to 1.
func targetError(point map[string]float64, t TheoreticalTarget) float64 {
	twistSum := point["twist_x"] + point["twist_y"] + point["twist_z"]
	loop := 1.0
	if v, ok := point["loop_factor"]; ok {
		loop = v
	}

	twistErr := math.Abs(twistSum-t.TwistSum) / math.Max(5.0, 2.0*math.Abs(t.TwistSum))
	loopErr := math.Abs(loop-t.LoopFactor) / math.Max(2.0, 2.0*math.Abs(t.LoopFactor))

	weightSum := t.TwistWeight + t.LoopWeight
	if weightSum <= 0 {
		return (twistErr + loopErr) / 2
	}
	return (t.TwistWeight*twistErr + t.LoopWeight*loopErr) / weightSum
}
