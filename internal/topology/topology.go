// Package topology implements the pairwise compatibility report, the
// manifold invariant table and hadron formation checks exposed by the API
// surface. Unlike the evolutionary scorer these are boolean verdicts, not
// weighted scores.
package topology

import (
	"fmt"
	"math"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
)

const (
	twistSumLimit = 1.0
	ctcLimit      = 0.5
	ksTolerance   = 1e-9

	hadronTwistMin = 2.0
	hadronTwistMax = 5.0
)

// PairReport is the boolean compatibility verdict for two parameter sets.
type PairReport struct {
	W1Compatible    bool `json:"w1_compatible"`
	TwistCompatible bool `json:"twist_compatible"`
	CTCStable       bool `json:"ctc_stable"`
	KSCompatible    bool `json:"ks_compatible"`
	QCompatible     bool `json:"q_compatible"`
	Compatible      bool `json:"compatible"`
}

// ComparePair reports component-wise topological compatibility of two
// parameter sets. Compatible is the conjunction of all five checks.
func ComparePair(a, b model.Params) PairReport {
	r := PairReport{
		W1Compatible:    a.Orientable == b.Orientable,
		TwistCompatible: twistSum(a, b) < twistSumLimit,
		CTCStable:       math.Abs(a.Tt+b.Tt) < ctcLimit,
		KSCompatible:    math.Abs(ksInvariant(a)-ksInvariant(b)) < ksTolerance,
		QCompatible:     definiteForm(a) == definiteForm(b),
	}
	r.Compatible = r.W1Compatible && r.TwistCompatible && r.CTCStable &&
		r.KSCompatible && r.QCompatible
	return r
}

func twistSum(a, b model.Params) float64 {
	return math.Abs(a.Tx+b.Tx) + math.Abs(a.Ty+b.Ty) + math.Abs(a.Tz+b.Tz)
}

// ksInvariant is the Kirby-Siebenmann proxy: the twist product reduced mod 2.
func ksInvariant(p model.Params) float64 {
	return math.Mod(p.Tx*p.Ty*p.Tz, 2)
}

// definiteForm collapses the intersection form to the two-way split this
// report uses. The finer three-way label lives on model.Invariants.
func definiteForm(p model.Params) string {
	if p.Tx*p.Ty > 0 {
		return model.FormPositiveDefinite
	}
	return model.FormIndefinite
}

// ManifoldInvariants is the invariant table entry for a named manifold.
// Genus is a label because several entries have no integer genus.
type ManifoldInvariants struct {
	EulerCharacteristic int    `json:"euler_characteristic"`
	Genus               string `json:"genus"`
}

var manifoldTable = map[string]ManifoldInvariants{
	"twisted_strip":    {EulerCharacteristic: 0, Genus: "Non-orientable"},
	"klein_bottle":     {EulerCharacteristic: 0, Genus: "Non-orientable"},
	"torus":            {EulerCharacteristic: 0, Genus: "1"},
	"4d_torus":         {EulerCharacteristic: 0, Genus: "Higher-dimensional"},
	"projective_plane": {EulerCharacteristic: 1, Genus: "Non-orientable"},
}

// InvariantsFor looks up the invariant table for a manifold kind.
func InvariantsFor(kind string) (ManifoldInvariants, error) {
	inv, ok := manifoldTable[kind]
	if !ok {
		return ManifoldInvariants{}, fmt.Errorf("unknown manifold type %q", kind)
	}
	return inv, nil
}

// ManifoldKinds returns the supported manifold type names.
func ManifoldKinds() []string {
	return []string{"twisted_strip", "klein_bottle", "torus", "4d_torus", "projective_plane"}
}

// LinkingNumber is the residue mod 5 of the summed absolute spatial twist
// differences, truncated to an integer before reduction.
func LinkingNumber(a, b model.Params) int {
	diff := math.Abs(a.Tx-b.Tx) + math.Abs(a.Ty-b.Ty) + math.Abs(a.Tz-b.Tz)
	return int(diff) % 5
}

// HadronValidation is the outcome of a formation check on one parameter set.
type HadronValidation struct {
	IsValid    bool    `json:"is_valid"`
	HadronType string  `json:"hadron_type"`
	TotalTwist float64 `json:"total_twist"`
	Message    string  `json:"message"`
}

// ValidateHadron checks whether the summed absolute spatial twist falls in
// the window where hadron formation is considered likely. Valid
// configurations are labelled baryon or meson by the parity of the rounded
// total twist.
func ValidateHadron(p model.Params) HadronValidation {
	total := math.Abs(p.Tx) + math.Abs(p.Ty) + math.Abs(p.Tz)
	v := HadronValidation{TotalTwist: total}
	if total < hadronTwistMin || total > hadronTwistMax {
		v.HadronType = "none"
		v.Message = "Hadron formation unlikely"
		return v
	}
	v.IsValid = true
	if int(math.Round(total))%2 == 1 {
		v.HadronType = "baryon"
	} else {
		v.HadronType = "meson"
	}
	v.Message = "Hadron formation likely"
	return v
}
