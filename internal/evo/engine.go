package evo

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/skb"
)

// Config configures a generational search engine.
type Config struct {
	PopulationSize int
	MutationRate   float64
	CrossoverRate  float64
	Selector       TournamentSelector
	Weights        Weights
	Seed           int64
}

const defaultCrossoverRate = 0.7

// Engine owns a population, its frozen slots and the hadron records
// discovered so far. It is not safe for concurrent use; the platform layer
// serializes access.
type Engine struct {
	cfg        Config
	rng        *rand.Rand
	alloc      *skb.IDAllocator
	population []model.SubSKB
	frozen     map[int]struct{}
	hadrons    []model.HadronRecord
	generation int
}

// GenerationReport summarizes one completed generation advance.
type GenerationReport struct {
	Generation      int     `json:"generation"`
	BestFitness     float64 `json:"best_fitness"`
	MeanFitness     float64 `json:"mean_fitness"`
	CompatiblePairs int     `json:"compatible_pairs"`
	FrozenCount     int     `json:"frozen_count"`
	PopulationSize  int     `json:"population_size"`
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1], got %v", cfg.MutationRate)
	}
	if cfg.CrossoverRate == 0 {
		cfg.CrossoverRate = defaultCrossoverRate
	}
	if cfg.CrossoverRate < 0 || cfg.CrossoverRate > 1 {
		return nil, fmt.Errorf("crossover rate must be in [0, 1], got %v", cfg.CrossoverRate)
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid compatibility weights: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		alloc:  skb.NewIDAllocator(),
		frozen: make(map[int]struct{}),
	}
	e.population = e.randomPopulation(cfg.PopulationSize)
	return e, nil
}

func (e *Engine) randomPopulation(size int) []model.SubSKB {
	population := make([]model.SubSKB, 0, size)
	for i := 0; i < size; i++ {
		population = append(population, skb.NewRandom(e.rng, e.alloc))
	}
	return population
}

// Evolve advances the population one generation: evaluate, carry frozen
// occupants, breed the remainder, replace, re-evaluate. Frozen occupants are
// excluded from parent selection and are copied unchanged into the leading
// slots of the next generation; the frozen set is remapped to those slots so
// it stays coherent across generations. When the frozen count meets or
// exceeds the target size the fill loop does not run and the population is
// not truncated.
func (e *Engine) Evolve() (GenerationReport, error) {
	if _, err := EvaluatePopulation(e.population, e.cfg.Weights); err != nil {
		return GenerationReport{}, err
	}

	target := e.cfg.PopulationSize
	next := make([]model.SubSKB, 0, target)

	// Frozen indices beyond the current population are silently skipped.
	for _, idx := range e.FrozenSlots() {
		if idx >= len(e.population) {
			continue
		}
		next = append(next, e.population[idx])
	}
	carried := len(next)

	parents := e.selectionPool()
	for len(next) < target {
		p1, err := e.cfg.Selector.Pick(e.rng, parents)
		if err != nil {
			return GenerationReport{}, err
		}
		p2, err := e.cfg.Selector.Pick(e.rng, parents)
		if err != nil {
			return GenerationReport{}, err
		}

		c1 := skb.Clone(e.alloc, p1)
		c2 := skb.Clone(e.alloc, p2)
		if e.rng.Float64() < e.cfg.CrossoverRate {
			c1, c2 = skb.Crossover(e.rng, e.alloc, c1, c2)
		}
		c1 = skb.Mutate(e.rng, e.alloc, c1, e.cfg.MutationRate)
		c2 = skb.Mutate(e.rng, e.alloc, c2, e.cfg.MutationRate)

		next = append(next, c1)
		if len(next) < target {
			next = append(next, c2)
		}
	}

	e.population = next
	e.frozen = make(map[int]struct{}, carried)
	for i := 0; i < carried; i++ {
		e.frozen[i] = struct{}{}
	}

	summary, err := EvaluatePopulation(e.population, e.cfg.Weights)
	if err != nil {
		return GenerationReport{}, err
	}
	e.generation++

	return GenerationReport{
		Generation:      e.generation,
		BestFitness:     summary.BestFitness,
		MeanFitness:     summary.MeanFitness,
		CompatiblePairs: summary.CompatiblePairs,
		FrozenCount:     len(e.frozen),
		PopulationSize:  len(e.population),
	}, nil
}

// selectionPool returns the unfrozen members; frozen occupants are excluded
// from further selection. Falls back to the full population when everything
// is frozen so the selector never sees an empty pool.
func (e *Engine) selectionPool() []model.SubSKB {
	pool := make([]model.SubSKB, 0, len(e.population))
	for i, member := range e.population {
		if _, ok := e.frozen[i]; ok {
			continue
		}
		pool = append(pool, member)
	}
	if len(pool) == 0 {
		return e.population
	}
	return pool
}

// DiscoverHadrons runs the canonical triplet search over the current
// population and freezes every member of each retained triplet whose slots
// are all still unfrozen. Newly created records are returned and appended to
// the engine's hadron list.
func (e *Engine) DiscoverHadrons() ([]model.HadronRecord, error) {
	if len(e.population) > 0 && !e.population[0].Evaluated {
		if _, err := EvaluatePopulation(e.population, e.cfg.Weights); err != nil {
			return nil, err
		}
	}
	triplets, err := FindCompatibleTriplets(e.population, e.cfg.Weights)
	if err != nil {
		return nil, err
	}

	created := make([]model.HadronRecord, 0)
	for _, t := range triplets {
		if e.anyFrozen(t.Slots) {
			continue
		}
		for _, slot := range t.Slots {
			e.frozen[slot] = struct{}{}
		}
		record := model.HadronRecord{
			Slots: t.Slots,
			MemberIDs: [3]int{
				e.population[t.Slots[0]].ID,
				e.population[t.Slots[1]].ID,
				e.population[t.Slots[2]].ID,
			},
			PairScores:              t.Result.PairScores,
			Score:                   t.Result.Score,
			CTCStable:               t.Result.CTCStable,
			TwistBalanced:           t.Result.TwistBalanced,
			TopologicallyCompatible: t.Result.TopologicallyCompatible,
			Generation:              e.generation,
		}
		e.hadrons = append(e.hadrons, record)
		created = append(created, record)
	}
	return created, nil
}

func (e *Engine) anyFrozen(slots [3]int) bool {
	for _, slot := range slots {
		if _, ok := e.frozen[slot]; ok {
			return true
		}
	}
	return false
}

// Reset discards the population and starts over with a fresh random one.
// Frozen slots and hadron records are cleared: a manual reset always
// returns every slot to the active pool.
func (e *Engine) Reset(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	e.alloc = skb.NewIDAllocator()
	e.population = e.randomPopulation(e.cfg.PopulationSize)
	e.frozen = make(map[int]struct{})
	e.hadrons = nil
	e.generation = 0
}

func (e *Engine) Generation() int {
	return e.generation
}

// Population returns a copy of the current population.
func (e *Engine) Population() []model.SubSKB {
	return append([]model.SubSKB(nil), e.population...)
}

// SetPopulation replaces the population wholesale, clearing frozen state.
// Used when restoring a persisted run.
func (e *Engine) SetPopulation(members []model.SubSKB, frozenSlots []int, generation int) error {
	if len(members) == 0 {
		return fmt.Errorf("population is empty")
	}
	e.population = append([]model.SubSKB(nil), members...)
	e.frozen = make(map[int]struct{}, len(frozenSlots))
	for _, slot := range frozenSlots {
		if slot < 0 || slot >= len(members) {
			return fmt.Errorf("frozen slot %d out of range [0, %d)", slot, len(members))
		}
		e.frozen[slot] = struct{}{}
	}
	e.generation = generation
	return nil
}

// FrozenSlots returns the frozen slot indices in ascending order.
func (e *Engine) FrozenSlots() []int {
	slots := make([]int, 0, len(e.frozen))
	for slot := range e.frozen {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// Hadrons returns a copy of the discovered hadron records.
func (e *Engine) Hadrons() []model.HadronRecord {
	return append([]model.HadronRecord(nil), e.hadrons...)
}

func (e *Engine) Weights() Weights {
	return e.cfg.Weights
}
