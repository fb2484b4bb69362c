package search

import (
	"math"
	"testing"
)

func TestDefaultGridShape(t *testing.T) {
	summary, err := DefaultGridParams().Summarize()
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	// -2..2 step 0.5 inclusive and -3..3 step 1 inclusive.
	if len(summary.TwistValues) != 9 {
		t.Fatalf("twist axis length %d, want 9", len(summary.TwistValues))
	}
	if len(summary.LinkValues) != 7 {
		t.Fatalf("link axis length %d, want 7", len(summary.LinkValues))
	}
	if summary.CombinationCount != 63 {
		t.Fatalf("combination count %d, want 63", summary.CombinationCount)
	}
	first, last := summary.TwistValues[0], summary.TwistValues[len(summary.TwistValues)-1]
	if first != -2.0 || math.Abs(last-2.0) > 1e-9 {
		t.Fatalf("twist endpoints %v..%v, want -2..2", first, last)
	}
}

func TestGridParamsValidate(t *testing.T) {
	p := DefaultGridParams()
	p.TwistStep = 0
	if err := p.Validate(); err == nil {
		t.Fatal("zero twist step must be rejected")
	}
	p = DefaultGridParams()
	p.LinkMin, p.LinkMax = 2, -2
	if err := p.Validate(); err == nil {
		t.Fatal("inverted link range must be rejected")
	}
}

func TestScoreErrorMetrics(t *testing.T) {
	// target mass 100, charge 0.5; candidate mass 150, charge 0.4
	rel := scoreError(150, 0.4, 100, 0.5, MetricRelative)
	if math.Abs(rel-(0.5+0.2)/2) > 1e-12 {
		t.Fatalf("relative error %v, want 0.35", rel)
	}
	abs := scoreError(150, 0.4, 100, 0.5, MetricAbsolute)
	if math.Abs(abs-(50+100)) > 1e-9 {
		t.Fatalf("absolute error %v, want 150", abs)
	}
	weighted := scoreError(150, 0.4, 100, 0.5, MetricWeighted)
	if math.Abs(weighted-(0.3*0.5+0.7*0.2)) > 1e-12 {
		t.Fatalf("weighted error %v, want 0.29", weighted)
	}
	// Zero targets divide by 1, not 0.
	if got := scoreError(10, 0, 0, 0, MetricRelative); math.Abs(got-5) > 1e-12 {
		t.Fatalf("zero-target relative error %v, want 5", got)
	}
}

func TestRunFindsExactElectronFit(t *testing.T) {
	// Charge scale 1 and energy scale 0.511 make twist=-1, |link|=1 an exact
	// fit for the electron.
	p := DefaultGridParams()
	p.ChargeScale = 1.0
	p.BaseMass = 0.0
	p.EnergyScale = 0.511

	report, err := Run("electron", p, MetricRelative)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Results) != maxResults {
		t.Fatalf("result count %d, want capped at %d", len(report.Results), maxResults)
	}
	best := report.Results[0]
	if best.Error != 0 {
		t.Fatalf("best error %v, want exact fit", best.Error)
	}
	if best.Twist != -1.0 || best.Link != -1 {
		t.Fatalf("best configuration twist=%v link=%d, want -1/-1 (tiebreak order)", best.Twist, best.Link)
	}
	if report.Target.Name != "Electron" || report.Target.Charge != -1.0 {
		t.Fatalf("target echo %+v", report.Target)
	}
	for i := 1; i < len(report.Results); i++ {
		if report.Results[i].Error < report.Results[i-1].Error {
			t.Fatalf("results not sorted ascending at %d", i)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := Run("graviton", DefaultGridParams(), MetricRelative); err == nil {
		t.Fatal("unknown particle must be rejected")
	}
	if _, err := Run("proton", DefaultGridParams(), Metric("squared")); err == nil {
		t.Fatal("unknown metric must be rejected")
	}
	bad := DefaultGridParams()
	bad.TwistStep = -1
	if _, err := Run("proton", bad, MetricRelative); err == nil {
		t.Fatal("invalid grid must be rejected")
	}
}

func TestParticleDatabase(t *testing.T) {
	all := AllParticles()
	if len(all) != 23 {
		t.Fatalf("database size %d, want 23", len(all))
	}
	proton, err := ParticleByName("proton")
	if err != nil {
		t.Fatal(err)
	}
	if proton.MassMeV != 938.272 || proton.Charge != 1.0 || len(proton.SubSKBs) != 3 {
		t.Fatalf("proton entry %+v", proton)
	}

	grouped := ParticlesByCategory()
	total := 0
	for _, group := range grouped {
		total += len(group)
	}
	if total != len(all) {
		t.Fatalf("categories cover %d particles, want %d", total, len(all))
	}
}

func TestSpaceCombinations(t *testing.T) {
	s := Space{Parameters: []Parameter{
		{Name: "twist", Min: 0, Max: 1, Steps: 3},
		{Name: "loop", Min: 1, Max: 2, Steps: 2},
	}}
	combos := s.Combinations()
	if len(combos) != 6 || s.Size() != 6 {
		t.Fatalf("combination count %d (size %d), want 6", len(combos), s.Size())
	}
	first, last := combos[0], combos[len(combos)-1]
	if first["twist"] != 0 || first["loop"] != 1 {
		t.Fatalf("first combination %+v", first)
	}
	if last["twist"] != 1 || last["loop"] != 2 {
		t.Fatalf("last combination %+v", last)
	}

	// A single-step axis collapses to its minimum.
	flat := Parameter{Name: "x", Min: 3, Max: 9, Steps: 1}
	if values := flat.Values(); len(values) != 1 || values[0] != 3 {
		t.Fatalf("single-step axis %v", values)
	}
}

func TestTheoreticalTargets(t *testing.T) {
	twists, err := TwistTargets("quark")
	if err != nil {
		t.Fatal(err)
	}
	// Six quarks collapse to two distinct charges.
	if len(twists) != 2 {
		t.Fatalf("quark twist targets %v, want 2 distinct values", twists)
	}
	if twists[0] >= twists[1] {
		t.Fatalf("targets not sorted: %v", twists)
	}

	all, err := TheoreticalTargets("all")
	if err != nil {
		t.Fatal(err)
	}
	// Distinct charges across quarks, leptons and baryon components:
	// {-1, -1/3, 0, 2/3} crossed with six loop factors.
	if len(all) != 4*6 {
		t.Fatalf("target count %d, want 24", len(all))
	}
	for _, target := range all {
		if target.TwistWeight != 0.7 || target.LoopWeight != 0.3 {
			t.Fatalf("unexpected weights %+v", target)
		}
		if target.Basis == "" {
			t.Fatal("every target needs a theoretical basis")
		}
	}

	if _, err := TwistTargets("hyperon"); err == nil {
		t.Fatal("unknown target type must be rejected")
	}
}
