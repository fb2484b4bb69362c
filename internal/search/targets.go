package search

import (
	"fmt"
	"math"
	"sort"
)

// Theoretical charge assignments used to seed twist-sum targets.
var (
	quarkCharges = map[string]float64{
		"up": 2.0 / 3.0, "down": -1.0 / 3.0,
		"charm": 2.0 / 3.0, "strange": -1.0 / 3.0,
		"top": 2.0 / 3.0, "bottom": -1.0 / 3.0,
	}
	leptonCharges = map[string]float64{
		"electron": -1, "muon": -1, "tau": -1,
		"electron_neutrino": 0, "muon_neutrino": 0, "tau_neutrino": 0,
	}
	baryonConfigs = map[string][3]float64{
		"proton":  {2.0 / 3.0, 2.0 / 3.0, -1.0 / 3.0},
		"neutron": {2.0 / 3.0, -1.0 / 3.0, -1.0 / 3.0},
		"delta++": {2.0 / 3.0, 2.0 / 3.0, 2.0 / 3.0},
		"lambda":  {2.0 / 3.0, -1.0 / 3.0, -1.0 / 3.0},
	}
)

// TheoreticalTarget is one twist-sum / loop-factor pair to steer a sweep at,
// with the fixed error weighting (charge-correlated twist dominates).
type TheoreticalTarget struct {
	TwistSum    float64 `json:"twist_sum"`
	LoopFactor  float64 `json:"loop_factor"`
	TwistWeight float64 `json:"twist_weight"`
	LoopWeight  float64 `json:"loop_weight"`
	Basis       string  `json:"theoretical_basis"`
}

// TwistTargets returns the deduplicated, sorted twist-sum targets for a
// particle class: quark, lepton, baryon or all.
func TwistTargets(kind string) ([]float64, error) {
	seen := make(map[float64]struct{})
	add := func(v float64) { seen[v] = struct{}{} }

	switch kind {
	case "quark":
		for _, c := range quarkCharges {
			add(c)
		}
	case "lepton":
		for _, c := range leptonCharges {
			add(c)
		}
	case "baryon":
		for _, cfg := range baryonConfigs {
			for _, c := range cfg {
				add(c)
			}
		}
	case "all":
		for _, c := range quarkCharges {
			add(c)
		}
		for _, c := range leptonCharges {
			add(c)
		}
		for _, cfg := range baryonConfigs {
			for _, c := range cfg {
				add(c)
			}
		}
	default:
		return nil, fmt.Errorf("unknown target type %q", kind)
	}

	targets := make([]float64, 0, len(seen))
	for v := range seen {
		targets = append(targets, v)
	}
	sort.Float64s(targets)
	return targets, nil
}

// LoopFactorTargets returns the loop factors worth sweeping: integer values
// track particle generation, half-integers half-integer spin states.
func LoopFactorTargets() []float64 {
	return []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0}
}

// TheoreticalTargets crosses the twist-sum targets for a particle class with
// every loop factor.
func TheoreticalTargets(kind string) ([]TheoreticalTarget, error) {
	twists, err := TwistTargets(kind)
	if err != nil {
		return nil, err
	}
	var targets []TheoreticalTarget
	for _, twist := range twists {
		for _, loop := range LoopFactorTargets() {
			targets = append(targets, TheoreticalTarget{
				TwistSum:    twist,
				LoopFactor:  loop,
				TwistWeight: 0.7,
				LoopWeight:  0.3,
				Basis:       describeTarget(twist, loop),
			})
		}
	}
	return targets, nil
}

func describeTarget(twistSum, loopFactor float64) string {
	var matches []string
	for _, name := range []string{"up", "down", "charm", "strange", "top", "bottom"} {
		if math.Abs(twistSum-quarkCharges[name]) < 0.1 {
			matches = append(matches, fmt.Sprintf("%s quark (charge %.3g)", name, quarkCharges[name]))
		}
	}
	for _, name := range []string{"electron", "muon", "tau", "electron_neutrino", "muon_neutrino", "tau_neutrino"} {
		if math.Abs(twistSum-leptonCharges[name]) < 0.1 {
			matches = append(matches, fmt.Sprintf("%s (charge %.3g)", name, leptonCharges[name]))
		}
	}
	if len(matches) == 0 {
		matches = []string{"unknown particle"}
	}

	generation := "unknown"
	switch {
	case loopFactor >= 0.5 && loopFactor < 1.5:
		generation = "first"
	case loopFactor >= 1.5 && loopFactor < 2.5:
		generation = "second"
	case loopFactor >= 2.5 && loopFactor <= 3.5:
		generation = "third"
	}

	return fmt.Sprintf("%s, %s generation", joinMatches(matches), generation)
}

func joinMatches(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " or " + p
	}
	return out
}
