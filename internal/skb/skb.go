// Package skb constructs sub-SKB individuals and applies the variation
// operators of the evolutionary search. Every operator returns fresh
// individuals with freshly derived invariants; live population members are
// never mutated in place.
package skb

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// Parameter bounds. Genus is an integer in [GenusMin, GenusMax].
const (
	TwistMin     = -5.0
	TwistMax     = 5.0
	TimeTwistMin = -1.0
	TimeTwistMax = 1.0
	CurvatureMin = 0.0
	CurvatureMax = 2.0
	GenusMin     = 0
	GenusMax     = 2
)

// smoothabilityThreshold marks configurations whose spatial twist product is
// too large to admit a smooth structure.
const smoothabilityThreshold = 10.0

// IDAllocator hands out process-unique individual ids. It replaces a hidden
// global counter so tests and parallel engines stay deterministic. Not safe
// for concurrent use; each engine owns one.
type IDAllocator struct {
	next int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// NewRandom draws every genetic parameter uniformly from its bounds.
func NewRandom(rng *rand.Rand, alloc *IDAllocator) model.SubSKB {
	p := model.Params{
		Tx:         uniform(rng, TwistMin, TwistMax),
		Ty:         uniform(rng, TwistMin, TwistMax),
		Tz:         uniform(rng, TwistMin, TwistMax),
		Tt:         uniform(rng, TimeTwistMin, TimeTwistMax),
		Curvature:  uniform(rng, CurvatureMin, CurvatureMax),
		Genus:      GenusMin + rng.Intn(GenusMax-GenusMin+1),
		Orientable: rng.Intn(2) == 0,
	}
	return FromParams(alloc, p)
}

// FromParams builds an individual from the supplied parameter set verbatim,
// deriving invariants before returning. Dimension is always forced to 4.
func FromParams(alloc *IDAllocator, p model.Params) model.SubSKB {
	p.Dimension = model.Dimension
	return model.SubSKB{
		ID:         alloc.Next(),
		Params:     p,
		Invariants: DeriveInvariants(p),
	}
}

// Clone copies the genetic parameters of s into a new individual with a
// fresh id and fresh invariants; fitness state is reset.
func Clone(alloc *IDAllocator, s model.SubSKB) model.SubSKB {
	return FromParams(alloc, s.Params)
}

// Mutate perturbs each parameter independently with probability rate by a
// uniform draw from [-1, 1] (rounded for genus) and clamps to the parameter
// bounds. The orientability flag flips with probability rate/2. The argument
// is left untouched; a new individual is returned.
func Mutate(rng *rand.Rand, alloc *IDAllocator, s model.SubSKB, rate float64) model.SubSKB {
	p := s.Params
	if rng.Float64() < rate {
		p.Tx = clamp(p.Tx+uniform(rng, -1, 1), TwistMin, TwistMax)
	}
	if rng.Float64() < rate {
		p.Ty = clamp(p.Ty+uniform(rng, -1, 1), TwistMin, TwistMax)
	}
	if rng.Float64() < rate {
		p.Tz = clamp(p.Tz+uniform(rng, -1, 1), TwistMin, TwistMax)
	}
	if rng.Float64() < rate {
		p.Tt = clamp(p.Tt+uniform(rng, -1, 1), TimeTwistMin, TimeTwistMax)
	}
	if rng.Float64() < rate {
		p.Curvature = clamp(p.Curvature+uniform(rng, -1, 1), CurvatureMin, CurvatureMax)
	}
	if rng.Float64() < rate {
		p.Genus = clamp(p.Genus+int(math.Round(uniform(rng, -1, 1))), GenusMin, GenusMax)
	}
	if rng.Float64() < rate/2 {
		p.Orientable = !p.Orientable
	}
	return FromParams(alloc, p)
}

// Crossover builds a swap set over the parameter names (each included with
// probability 0.5, dimension excluded) and returns two new individuals with
// the selected parameters exchanged. The arguments are not modified.
func Crossover(rng *rand.Rand, alloc *IDAllocator, a, b model.SubSKB) (model.SubSKB, model.SubSKB) {
	pa, pb := a.Params, b.Params
	if rng.Float64() < 0.5 {
		pa.Tx, pb.Tx = pb.Tx, pa.Tx
	}
	if rng.Float64() < 0.5 {
		pa.Ty, pb.Ty = pb.Ty, pa.Ty
	}
	if rng.Float64() < 0.5 {
		pa.Tz, pb.Tz = pb.Tz, pa.Tz
	}
	if rng.Float64() < 0.5 {
		pa.Tt, pb.Tt = pb.Tt, pa.Tt
	}
	if rng.Float64() < 0.5 {
		pa.Curvature, pb.Curvature = pb.Curvature, pa.Curvature
	}
	if rng.Float64() < 0.5 {
		pa.Genus, pb.Genus = pb.Genus, pa.Genus
	}
	if rng.Float64() < 0.5 {
		pa.Orientable, pb.Orientable = pb.Orientable, pa.Orientable
	}
	return FromParams(alloc, pa), FromParams(alloc, pb)
}

// DeriveInvariants computes the cached topological labels for a parameter
// set. Callers that change parameters must rebuild the individual through
// FromParams so the invariants can never go stale.
func DeriveInvariants(p model.Params) model.Invariants {
	return model.Invariants{
		OrientabilityClass:       orientabilityClass(p.Orientable),
		EulerCharacteristic:      EulerCharacteristic(p.Genus, p.Orientable),
		FundamentalGroup:         fundamentalGroup(p.Genus, p.Orientable),
		IntersectionForm:         intersectionForm(p),
		SmoothabilityObstruction: math.Abs(p.Tx*p.Ty*p.Tz) > smoothabilityThreshold,
	}
}

// EulerCharacteristic is 2-2g for orientable individuals and 2-g otherwise.
func EulerCharacteristic(genus int, orientable bool) int {
	if orientable {
		return 2 - 2*genus
	}
	return 2 - genus
}

func orientabilityClass(orientable bool) string {
	if orientable {
		return "Orientable"
	}
	return "Non-Orientable"
}

func fundamentalGroup(genus int, orientable bool) string {
	if orientable {
		switch genus {
		case 0:
			return "Trivial"
		case 1:
			return "Z x Z"
		default:
			return "Surface group"
		}
	}
	switch genus {
	case 0:
		return "Z/2Z"
	case 1:
		return "Klein bottle group"
	default:
		return "Non-orientable surface group"
	}
}

// intersectionForm compares the signs of the first two spatial twists. The
// non-orientable rule is deliberately cruder: it looks at Tx alone.
func intersectionForm(p model.Params) string {
	if !p.Orientable {
		if p.Tx < 0 {
			return model.FormIndefinite
		}
		return model.FormPositiveDefinite
	}
	if p.Tx*p.Ty > 0 {
		if p.Tx > 0 {
			return model.FormPositiveDefinite
		}
		return model.FormNegativeDefinite
	}
	return model.FormIndefinite
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
