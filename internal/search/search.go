// Package search implements the methodical grid search that fits twist and
// linking numbers to Standard Model particle properties, plus the generic
// parameter-space enumeration behind it.
package search

import (
	"fmt"
	"math"
	"sort"
)

// Search defaults and limits.
const (
	DefaultTwistMin    = -2.0
	DefaultTwistMax    = 2.0
	DefaultTwistStep   = 0.5
	DefaultLinkMin     = -3
	DefaultLinkMax     = 3
	DefaultLinkStep    = 1
	DefaultChargeScale = 0.3
	DefaultBaseMass    = 0.0
	DefaultEnergyScale = 100.0

	maxResults          = 20
	secondsPerGridPoint = 0.02
)

// Metric selects how grid points are scored against the target particle.
type Metric string

const (
	// MetricRelative averages the relative mass and charge errors.
	MetricRelative Metric = "relative"
	// MetricAbsolute sums absolute errors, charge scaled up by 1000 to be
	// comparable with MeV-range masses.
	MetricAbsolute Metric = "absolute"
	// MetricWeighted mixes relative errors 0.3 mass / 0.7 charge.
	MetricWeighted Metric = "weighted"
)

func (m Metric) valid() bool {
	switch m {
	case MetricRelative, MetricAbsolute, MetricWeighted, "":
		return true
	}
	return false
}

// GridParams bounds the twist/link grid and the physical model constants.
type GridParams struct {
	TwistMin    float64 `json:"twist_min"`
	TwistMax    float64 `json:"twist_max"`
	TwistStep   float64 `json:"twist_step"`
	LinkMin     int     `json:"link_min"`
	LinkMax     int     `json:"link_max"`
	LinkStep    int     `json:"link_step"`
	ChargeScale float64 `json:"charge_scale"`
	BaseMass    float64 `json:"base_mass"`
	EnergyScale float64 `json:"energy_scale"`
}

func DefaultGridParams() GridParams {
	return GridParams{
		TwistMin:    DefaultTwistMin,
		TwistMax:    DefaultTwistMax,
		TwistStep:   DefaultTwistStep,
		LinkMin:     DefaultLinkMin,
		LinkMax:     DefaultLinkMax,
		LinkStep:    DefaultLinkStep,
		ChargeScale: DefaultChargeScale,
		BaseMass:    DefaultBaseMass,
		EnergyScale: DefaultEnergyScale,
	}
}

func (p GridParams) Validate() error {
	if p.TwistStep <= 0 {
		return fmt.Errorf("twist step must be > 0, got %v", p.TwistStep)
	}
	if p.LinkStep <= 0 {
		return fmt.Errorf("link step must be > 0, got %d", p.LinkStep)
	}
	if p.TwistMax < p.TwistMin {
		return fmt.Errorf("twist range inverted: [%v, %v]", p.TwistMin, p.TwistMax)
	}
	if p.LinkMax < p.LinkMin {
		return fmt.Errorf("link range inverted: [%d, %d]", p.LinkMin, p.LinkMax)
	}
	return nil
}

// twistValues enumerates the twist axis inclusively. The half-step slack on
// the upper bound keeps the endpoint in the grid despite float accumulation.
func (p GridParams) twistValues() []float64 {
	var values []float64
	limit := p.TwistMax + p.TwistStep/2
	for v := p.TwistMin; v < limit; v += p.TwistStep {
		values = append(values, v)
	}
	return values
}

func (p GridParams) linkValues() []int {
	var values []int
	for v := p.LinkMin; v <= p.LinkMax; v += p.LinkStep {
		values = append(values, v)
	}
	return values
}

// SpaceSummary describes the grid a set of parameters would produce.
type SpaceSummary struct {
	TwistValues      []float64 `json:"twist_values"`
	LinkValues       []int     `json:"link_values"`
	CombinationCount int       `json:"combination_count"`
	EstimatedTime    string    `json:"estimated_time"`
}

// Summarize enumerates the grid axes and estimates the sweep cost.
func (p GridParams) Summarize() (SpaceSummary, error) {
	if err := p.Validate(); err != nil {
		return SpaceSummary{}, err
	}
	twists := p.twistValues()
	links := p.linkValues()
	count := len(twists) * len(links)
	return SpaceSummary{
		TwistValues:      twists,
		LinkValues:       links,
		CombinationCount: count,
		EstimatedTime:    fmt.Sprintf("~%.1f seconds", float64(count)*secondsPerGridPoint),
	}, nil
}

// Result is one scored grid point.
type Result struct {
	Twist  float64 `json:"twist"`
	Link   int     `json:"link"`
	Charge float64 `json:"calculated_charge"`
	Mass   float64 `json:"calculated_mass"`
	Error  float64 `json:"error"`
}

// Target echoes the particle properties a report was scored against.
type Target struct {
	Name    string  `json:"name"`
	MassMeV float64 `json:"mass"`
	Charge  float64 `json:"charge"`
}

// Report is the outcome of one grid sweep, best results first.
type Report struct {
	Results []Result `json:"results"`
	Target  Target   `json:"target"`
	Metric  Metric   `json:"metric"`
}

// Charge maps a twist number to electric charge.
func Charge(twist, scale float64) float64 {
	return twist * scale
}

// Mass maps a linking number to rest mass.
func Mass(link int, base, energy float64) float64 {
	return base + energy*math.Abs(float64(link))
}

func scoreError(mass, charge, targetMass, targetCharge float64, metric Metric) float64 {
	switch metric {
	case MetricAbsolute:
		return math.Abs(mass-targetMass) + math.Abs(charge-targetCharge)*1000
	case MetricWeighted:
		return 0.3*relErr(mass, targetMass) + 0.7*relErr(charge, targetCharge)
	default:
		return (relErr(mass, targetMass) + relErr(charge, targetCharge)) / 2
	}
}

func relErr(got, want float64) float64 {
	denom := math.Abs(want)
	if denom == 0 {
		denom = 1
	}
	return math.Abs(got-want) / denom
}

// Run sweeps the twist/link grid against the named particle and returns the
// lowest-error configurations, capped and sorted ascending by error with a
// twist-then-link tiebreak so reports are deterministic.
func Run(particleName string, p GridParams, metric Metric) (Report, error) {
	particle, err := ParticleByName(particleName)
	if err != nil {
		return Report{}, err
	}
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if !metric.valid() {
		return Report{}, fmt.Errorf("unknown error metric %q", metric)
	}
	if metric == "" {
		metric = MetricRelative
	}

	var results []Result
	for _, twist := range p.twistValues() {
		for _, link := range p.linkValues() {
			charge := Charge(twist, p.ChargeScale)
			mass := Mass(link, p.BaseMass, p.EnergyScale)
			results = append(results, Result{
				Twist:  twist,
				Link:   link,
				Charge: charge,
				Mass:   mass,
				Error:  scoreError(mass, charge, particle.MassMeV, particle.Charge, metric),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Error != results[j].Error {
			return results[i].Error < results[j].Error
		}
		if results[i].Twist != results[j].Twist {
			return results[i].Twist < results[j].Twist
		}
		return results[i].Link < results[j].Link
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return Report{
		Results: results,
		Target:  Target{Name: particle.DisplayName, MassMeV: particle.MassMeV, Charge: particle.Charge},
		Metric:  metric,
	}, nil
}
