package evo

import (
	"testing"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/skb"
)

func TestFindCompatibleTripletsSingleMatch(t *testing.T) {
	alloc := skb.NewIDAllocator()
	w := DefaultWeights()

	// One balanced triple surrounded by members too far apart to pass the
	// pairwise gate with anything.
	population := []model.SubSKB{
		individual(t, alloc, model.Params{Tx: -0.1, Tt: 0, Genus: 2, Orientable: false}),
		individual(t, alloc, model.Params{Tx: 0.05, Tt: 0.05, Genus: 1, Orientable: true}),
		individual(t, alloc, model.Params{Tx: 0.05, Tt: -0.05, Genus: 1, Orientable: true}),
		individual(t, alloc, model.Params{Tx: 4, Ty: 4, Tt: 0.9, Orientable: true}),
		individual(t, alloc, model.Params{Tx: -4, Ty: -4, Tt: 0.8, Orientable: true}),
	}

	triplets, err := FindCompatibleTriplets(population, w)
	if err != nil {
		t.Fatalf("find triplets: %v", err)
	}
	if len(triplets) != 1 {
		t.Fatalf("expected exactly one compatible triplet, got %d", len(triplets))
	}
	got := triplets[0]
	if got.Slots != [3]int{0, 1, 2} {
		t.Fatalf("triplet slots %v, want [0 1 2]", got.Slots)
	}
	if !got.Result.CTCStable || !got.Result.TwistBalanced || !got.Result.TopologicallyCompatible {
		t.Fatalf("all stability conditions must hold: %+v", got.Result)
	}
	for i, score := range got.Result.PairScores {
		if score < pairGateThreshold {
			t.Fatalf("pair %d score %v below gate", i, score)
		}
	}
}

func TestFindCompatibleTripletsOrdering(t *testing.T) {
	alloc := skb.NewIDAllocator()
	// Twist-only scoring with a wide kernel: every triple passes the gate,
	// CTC and topology terms carry no weight, so every triple is compatible
	// and the ordering by score then slots must be deterministic.
	w := Weights{Twist: 1, CTC: 1, W1: 1, Sigma: 10, Epsilon: 0.5}

	population := []model.SubSKB{
		individual(t, alloc, model.Params{Tx: 0, Genus: 1, Orientable: false}),
		individual(t, alloc, model.Params{Tx: 0.1, Genus: 1, Orientable: false}),
		individual(t, alloc, model.Params{Tx: 0.2, Genus: 1, Orientable: true}),
		individual(t, alloc, model.Params{Tx: 0.3, Genus: 1, Orientable: true}),
	}

	triplets, err := FindCompatibleTriplets(population, w)
	if err != nil {
		t.Fatalf("find triplets: %v", err)
	}
	if len(triplets) != 4 {
		t.Fatalf("expected all 4 triples compatible, got %d", len(triplets))
	}
	for i := 1; i < len(triplets); i++ {
		prev, cur := triplets[i-1], triplets[i]
		if cur.Result.Score > prev.Result.Score {
			t.Fatalf("triplets not sorted by descending score: %v after %v",
				cur.Result.Score, prev.Result.Score)
		}
		if cur.Result.Score == prev.Result.Score && lessSlots(cur.Slots, prev.Slots) {
			t.Fatalf("tied triplets not in slot order: %v after %v", cur.Slots, prev.Slots)
		}
	}

	again, err := FindCompatibleTriplets(population, w)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	for i := range triplets {
		if triplets[i].Slots != again[i].Slots {
			t.Fatalf("ordering not deterministic at %d: %v vs %v", i, triplets[i].Slots, again[i].Slots)
		}
	}
}

func TestFindCompatibleTripletsRejectsInvalidWeights(t *testing.T) {
	alloc := skb.NewIDAllocator()
	population := []model.SubSKB{
		individual(t, alloc, model.Params{Orientable: true}),
		individual(t, alloc, model.Params{Orientable: true}),
		individual(t, alloc, model.Params{Orientable: true}),
	}
	if _, err := FindCompatibleTriplets(population, Weights{}); err == nil {
		t.Fatal("all-zero weights must be rejected")
	}
}
