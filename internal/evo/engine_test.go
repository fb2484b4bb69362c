package evo

import (
	"testing"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/skb"
)

func newTestEngine(t *testing.T, size int) *Engine {
	t.Helper()
	e, err := NewEngine(Config{
		PopulationSize: size,
		MutationRate:   0.2,
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(Config{PopulationSize: 0}); err == nil {
		t.Fatal("zero population size must be rejected")
	}
	if _, err := NewEngine(Config{PopulationSize: 10, MutationRate: 1.5}); err == nil {
		t.Fatal("mutation rate above 1 must be rejected")
	}
	bad := DefaultWeights()
	bad.Twist = -1
	if _, err := NewEngine(Config{PopulationSize: 10, Weights: bad}); err == nil {
		t.Fatal("negative weight must be rejected")
	}
}

func TestEvolveKeepsTargetPopulationSize(t *testing.T) {
	e := newTestEngine(t, 12)
	for i := 0; i < 5; i++ {
		report, err := e.Evolve()
		if err != nil {
			t.Fatalf("generation %d: %v", i, err)
		}
		if report.PopulationSize != 12 {
			t.Fatalf("generation %d: population size %d, want 12", i, report.PopulationSize)
		}
		if report.Generation != i+1 {
			t.Fatalf("generation counter %d, want %d", report.Generation, i+1)
		}
	}
}

func TestEvolveDoesNotTruncateWhenFrozenExceedsTarget(t *testing.T) {
	e := newTestEngine(t, 3)
	alloc := skb.NewIDAllocator()
	members := make([]model.SubSKB, 0, 5)
	for i := 0; i < 5; i++ {
		members = append(members, skb.FromParams(alloc, model.Params{
			Tx: float64(i) * 0.1, Genus: 1, Orientable: true,
		}))
	}
	if err := e.SetPopulation(members, []int{0, 1, 2, 3}, 7); err != nil {
		t.Fatalf("set population: %v", err)
	}

	report, err := e.Evolve()
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	// Four frozen occupants exceed the target of three: all four carry over
	// and the fill loop never runs.
	if report.PopulationSize != 4 {
		t.Fatalf("population size %d, want 4 (frozen carried, no truncation)", report.PopulationSize)
	}
	if report.FrozenCount != 4 {
		t.Fatalf("frozen count %d, want 4", report.FrozenCount)
	}
	if report.Generation != 8 {
		t.Fatalf("generation %d, want 8", report.Generation)
	}
}

func TestEvolveCarriesFrozenMembersUnchanged(t *testing.T) {
	e := newTestEngine(t, 8)
	alloc := skb.NewIDAllocator()
	members := make([]model.SubSKB, 0, 8)
	for i := 0; i < 8; i++ {
		members = append(members, skb.FromParams(alloc, model.Params{
			Tx: float64(i)*0.05 - 0.2, Tt: 0.01 * float64(i), Genus: 1, Orientable: i%2 == 0,
		}))
	}
	if err := e.SetPopulation(members, []int{2, 5}, 0); err != nil {
		t.Fatalf("set population: %v", err)
	}
	wantIDs := []int{members[2].ID, members[5].ID}

	if _, err := e.Evolve(); err != nil {
		t.Fatalf("evolve: %v", err)
	}

	population := e.Population()
	frozen := e.FrozenSlots()
	if len(frozen) != 2 {
		t.Fatalf("frozen slots %v, want 2 entries", frozen)
	}
	for i, slot := range frozen {
		if slot != i {
			t.Fatalf("frozen slots must be remapped to the leading positions, got %v", frozen)
		}
		if population[slot].ID != wantIDs[i] {
			t.Fatalf("slot %d holds ID %d, want carried ID %d", slot, population[slot].ID, wantIDs[i])
		}
		if population[slot].Params != members[frozenSource(i)].Params {
			t.Fatalf("carried member %d params changed: %+v", i, population[slot].Params)
		}
	}
}

func frozenSource(i int) int {
	return []int{2, 5}[i]
}

func TestDiscoverHadronsFreezesTripletSlots(t *testing.T) {
	e := newTestEngine(t, 6)
	alloc := skb.NewIDAllocator()
	members := []model.SubSKB{
		skb.FromParams(alloc, model.Params{Tx: -0.1, Tt: 0, Genus: 2, Orientable: false}),
		skb.FromParams(alloc, model.Params{Tx: 0.05, Tt: 0.05, Genus: 1, Orientable: true}),
		skb.FromParams(alloc, model.Params{Tx: 0.05, Tt: -0.05, Genus: 1, Orientable: true}),
		skb.FromParams(alloc, model.Params{Tx: 4, Ty: 4, Tt: 0.9, Genus: 0, Orientable: true}),
		skb.FromParams(alloc, model.Params{Tx: -4, Ty: -4, Tt: 0.8, Genus: 0, Orientable: true}),
		skb.FromParams(alloc, model.Params{Tx: 4, Ty: -4, Tt: 0.7, Genus: 0, Orientable: true}),
	}
	if err := e.SetPopulation(members, nil, 3); err != nil {
		t.Fatalf("set population: %v", err)
	}

	created, err := e.DiscoverHadrons()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected exactly one hadron, got %d", len(created))
	}
	record := created[0]
	if record.Slots != [3]int{0, 1, 2} {
		t.Fatalf("hadron slots %v, want [0 1 2]", record.Slots)
	}
	if record.Generation != 3 {
		t.Fatalf("hadron generation %d, want 3", record.Generation)
	}
	if !record.CTCStable || !record.TwistBalanced || !record.TopologicallyCompatible {
		t.Fatalf("all stability flags must be set: %+v", record)
	}
	if got := e.FrozenSlots(); len(got) != 3 {
		t.Fatalf("frozen slots %v, want the triplet's three slots", got)
	}

	// A second pass finds nothing new: the triplet's slots are frozen.
	again, err := e.DiscoverHadrons()
	if err != nil {
		t.Fatalf("second discover: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new hadrons, got %d", len(again))
	}
	if len(e.Hadrons()) != 1 {
		t.Fatalf("hadron list length %d, want 1", len(e.Hadrons()))
	}
}

func TestResetClearsFrozenAndHadrons(t *testing.T) {
	e := newTestEngine(t, 6)
	alloc := skb.NewIDAllocator()
	members := []model.SubSKB{
		skb.FromParams(alloc, model.Params{Tx: -0.1, Tt: 0, Genus: 2, Orientable: false}),
		skb.FromParams(alloc, model.Params{Tx: 0.05, Tt: 0.05, Genus: 1, Orientable: true}),
		skb.FromParams(alloc, model.Params{Tx: 0.05, Tt: -0.05, Genus: 1, Orientable: true}),
	}
	if err := e.SetPopulation(members, nil, 2); err != nil {
		t.Fatalf("set population: %v", err)
	}
	if _, err := e.DiscoverHadrons(); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(e.FrozenSlots()) == 0 {
		t.Fatal("setup must freeze at least one slot")
	}

	e.Reset(99)
	if len(e.FrozenSlots()) != 0 {
		t.Fatal("reset must clear frozen slots")
	}
	if len(e.Hadrons()) != 0 {
		t.Fatal("reset must clear hadron records")
	}
	if e.Generation() != 0 {
		t.Fatalf("reset must zero the generation counter, got %d", e.Generation())
	}
	if got := len(e.Population()); got != 6 {
		t.Fatalf("reset population size %d, want configured 6", got)
	}
}

func TestSetPopulationRejectsOutOfRangeFrozenSlot(t *testing.T) {
	e := newTestEngine(t, 4)
	alloc := skb.NewIDAllocator()
	members := []model.SubSKB{
		skb.FromParams(alloc, model.Params{Orientable: true}),
		skb.FromParams(alloc, model.Params{Orientable: true}),
	}
	if err := e.SetPopulation(members, []int{2}, 0); err == nil {
		t.Fatal("frozen slot beyond the population must be rejected")
	}
	if err := e.SetPopulation(nil, nil, 0); err == nil {
		t.Fatal("empty population must be rejected")
	}
}
