package evo

import (
	"fmt"
	"math"
	"strings"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

// Weights configures the five pairwise compatibility terms and the targets
// they score against. At least one of the five term weights must be
// positive, and at least one of ctc, twist and w1 (the triple-score
// weights); degenerate configurations are rejected up front instead of
// letting the weighted averages divide by zero.
type Weights struct {
	W1    float64 `json:"w1"`
	Euler float64 `json:"euler"`
	Q     float64 `json:"q"`
	Twist float64 `json:"twist"`
	CTC   float64 `json:"ctc"`

	// Sigma is the width of the twist-alignment Gaussian kernel.
	Sigma float64 `json:"sigma"`
	// Epsilon is the time-twist cancellation tolerance.
	Epsilon float64 `json:"epsilon"`

	TargetEuler int    `json:"target_euler"`
	TargetForm  string `json:"target_form"`
}

const (
	defaultSigma   = 1.0
	defaultEpsilon = 0.1
)

// Triple stability thresholds.
const (
	pairGateThreshold     = 0.5
	tripleCTCTolerance    = 0.2
	tripleTwistTolerance  = 1.0
	memberCompatThreshold = 0.7
	pairCompatThreshold   = 0.5
)

func DefaultWeights() Weights {
	return Weights{
		W1:          1.0,
		Euler:       1.0,
		Q:           1.0,
		Twist:       1.0,
		CTC:         1.0,
		Sigma:       defaultSigma,
		Epsilon:     defaultEpsilon,
		TargetEuler: 0,
		TargetForm:  "indefinite",
	}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"w1": w.W1, "euler": w.Euler, "q": w.Q, "twist": w.Twist, "ctc": w.CTC,
	} {
		if v < 0 {
			return fmt.Errorf("compatibility weight %s must be >= 0, got %v", name, v)
		}
	}
	if w.W1+w.Euler+w.Q+w.Twist+w.CTC <= 0 {
		return fmt.Errorf("at least one positive compatibility weight is required")
	}
	// The triple score averages its stability booleans over ctc, twist and
	// w1 alone; with all three at zero every triplet would score 0 and sort
	// arbitrarily.
	if w.CTC+w.Twist+w.W1 <= 0 {
		return fmt.Errorf("at least one of the ctc, twist and w1 weights must be positive")
	}
	if w.Sigma < 0 {
		return fmt.Errorf("sigma must be >= 0, got %v", w.Sigma)
	}
	if w.Epsilon < 0 {
		return fmt.Errorf("epsilon must be >= 0, got %v", w.Epsilon)
	}
	return nil
}

// normalized fills in kernel defaults for zero-valued Sigma/Epsilon.
func (w Weights) normalized() Weights {
	if w.Sigma == 0 {
		w.Sigma = defaultSigma
	}
	if w.Epsilon == 0 {
		w.Epsilon = defaultEpsilon
	}
	return w
}

// PairwiseCompatibility scores two individuals in [0, 1] as the
// weights-weighted average of five sub-scores. Symmetric in its arguments.
// Callers must have validated the weights.
func PairwiseCompatibility(a, b model.SubSKB, w Weights) float64 {
	w = w.normalized()

	// Non-orientability is rewarded: one non-orientable operand suffices.
	w1Term := 0.0
	if !a.Params.Orientable || !b.Params.Orientable {
		w1Term = 1.0
	}

	eulerSum := a.Invariants.EulerCharacteristic + b.Invariants.EulerCharacteristic
	eulerTerm := 1.0 / (1.0 + math.Abs(float64(eulerSum-w.TargetEuler)))

	aInd := a.Invariants.IntersectionForm == model.FormIndefinite
	bInd := b.Invariants.IntersectionForm == model.FormIndefinite
	var qTerm float64
	switch {
	case aInd && bInd:
		qTerm = 1.0
	case aInd || bInd:
		qTerm = 0.5
	default:
		qTerm = 0.3
	}
	if strings.EqualFold(w.TargetForm, "indefinite") && (aInd || bInd) {
		qTerm = math.Min(1.0, qTerm+0.2)
	}

	dx := a.Params.Tx - b.Params.Tx
	dy := a.Params.Ty - b.Params.Ty
	dz := a.Params.Tz - b.Params.Tz
	twistTerm := math.Exp(-(dx*dx + dy*dy + dz*dz) / (w.Sigma * w.Sigma))

	ctcTerm := 0.0
	if math.Abs(a.Params.Tt+b.Params.Tt) < w.Epsilon {
		ctcTerm = 1.0
	}

	total := w.W1 + w.Euler + w.Q + w.Twist + w.CTC
	return (w.W1*w1Term + w.Euler*eulerTerm + w.Q*qTerm + w.Twist*twistTerm + w.CTC*ctcTerm) / total
}

// TripleResult reports the outcome of a triple compatibility check. Pair
// scores are ordered (a,b), (a,c), (b,c) and are populated even when the
// gate rejects the triple.
type TripleResult struct {
	Compatible              bool       `json:"compatible"`
	Score                   float64    `json:"score"`
	PairScores              [3]float64 `json:"pair_scores"`
	CTCStable               bool       `json:"ctc_stable"`
	TwistBalanced           bool       `json:"twist_balanced"`
	TopologicallyCompatible bool       `json:"topologically_compatible"`
}

// TripleCompatibility gates on all three pairwise scores reaching 0.5 and
// then evaluates the three stability conditions. The overall score is the
// (ctc, twist, w1)-weighted average of the booleans, independent of the
// underlying pairwise scores.
func TripleCompatibility(a, b, c model.SubSKB, w Weights) TripleResult {
	res := TripleResult{
		PairScores: [3]float64{
			PairwiseCompatibility(a, b, w),
			PairwiseCompatibility(a, c, w),
			PairwiseCompatibility(b, c, w),
		},
	}
	for _, score := range res.PairScores {
		if score < pairGateThreshold {
			return res
		}
	}

	ttSum := a.Params.Tt + b.Params.Tt + c.Params.Tt
	res.CTCStable = math.Abs(ttSum) < tripleCTCTolerance

	twistImbalance := math.Abs(a.Params.Tx+b.Params.Tx+c.Params.Tx) +
		math.Abs(a.Params.Ty+b.Params.Ty+c.Params.Ty) +
		math.Abs(a.Params.Tz+b.Params.Tz+c.Params.Tz)
	res.TwistBalanced = twistImbalance < tripleTwistTolerance

	anyNonOrientable := !a.Params.Orientable || !b.Params.Orientable || !c.Params.Orientable
	anyIndefinite := a.Invariants.IntersectionForm == model.FormIndefinite ||
		b.Invariants.IntersectionForm == model.FormIndefinite ||
		c.Invariants.IntersectionForm == model.FormIndefinite
	res.TopologicallyCompatible = anyNonOrientable && anyIndefinite

	res.Compatible = res.CTCStable && res.TwistBalanced && res.TopologicallyCompatible

	denom := w.CTC + w.Twist + w.W1
	if denom > 0 {
		res.Score = (w.CTC*boolScore(res.CTCStable) +
			w.Twist*boolScore(res.TwistBalanced) +
			w.W1*boolScore(res.TopologicallyCompatible)) / denom
	}
	return res
}

func boolScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
