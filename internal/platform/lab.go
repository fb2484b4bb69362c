// Package platform hosts the long-lived pieces of the search: the Lab that
// serializes engine access and the Supervisor that keeps the auto-run loop
// alive.
package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jbcupps/Wireframe-sub000/internal/evo"
	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/stats"
	"github.com/jbcupps/Wireframe-sub000/internal/storage"
)

const autoRunTask = "auto-run"

// LabConfig wires a Lab to its engine and persistence.
type LabConfig struct {
	Engine     *evo.Engine
	Store      storage.Store
	RunID      string
	ExportsDir string
}

// Lab owns one search run: the engine, its fitness history and diagnostics,
// and the auto-run loop. All engine access is serialized behind one mutex so
// a generation advance can never re-enter a running advance.
type Lab struct {
	mu          sync.Mutex
	engine      *evo.Engine
	store       storage.Store
	runID       string
	createdAt   string
	exportsDir  string
	history     []float64
	diagnostics []model.GenerationDiagnostics
	paused      bool

	supervisor *Supervisor
}

func NewLab(cfg LabConfig) (*Lab, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Lab{
		engine:     cfg.Engine,
		store:      cfg.Store,
		runID:      runID,
		createdAt:  time.Now().UTC().Format(time.RFC3339),
		exportsDir: cfg.ExportsDir,
		supervisor: NewSupervisor(SupervisorPolicy{}),
	}, nil
}

func (l *Lab) RunID() string {
	return l.runID
}

// Step advances the engine one generation, appends fitness history and a
// diagnostics row, then sweeps the new population for stable triplets.
func (l *Lab) Step() (evo.GenerationReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stepLocked()
}

func (l *Lab) stepLocked() (evo.GenerationReport, error) {
	report, err := l.engine.Evolve()
	if err != nil {
		return evo.GenerationReport{}, err
	}
	if _, err := l.engine.DiscoverHadrons(); err != nil {
		return evo.GenerationReport{}, err
	}

	l.history = append(l.history, report.BestFitness)
	row, err := stats.Summarize(
		report.Generation,
		l.engine.Population(),
		report.CompatiblePairs,
		len(l.engine.FrozenSlots()),
		len(l.engine.Hadrons()),
	)
	if err != nil {
		return evo.GenerationReport{}, err
	}
	l.diagnostics = append(l.diagnostics, row)
	return report, nil
}

// RunGenerations advances count generations, honoring ctx between steps.
func (l *Lab) RunGenerations(ctx context.Context, count int) (last evo.GenerationReport, err error) {
	if count <= 0 {
		return evo.GenerationReport{}, fmt.Errorf("generation count must be > 0, got %d", count)
	}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		last, err = l.Step()
		if err != nil {
			return last, err
		}
	}
	return last, nil
}

// StartAuto launches the auto-run loop: one generation per tick until
// StopAuto. A paused lab keeps ticking but skips the advance.
func (l *Lab) StartAuto(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("auto-run interval must be > 0, got %v", interval)
	}
	return l.supervisor.Start(autoRunTask, RestartOnFailure, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				l.mu.Lock()
				paused := l.paused
				l.mu.Unlock()
				if paused {
					continue
				}
				if _, err := l.Step(); err != nil {
					return err
				}
			}
		}
	})
}

// Pause suspends the auto-run loop without stopping it.
func (l *Lab) Pause() {
	l.mu.Lock()
	l.paused = true
	l.mu.Unlock()
}

// Continue resumes a paused auto-run loop.
func (l *Lab) Continue() {
	l.mu.Lock()
	l.paused = false
	l.mu.Unlock()
}

func (l *Lab) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// StopAuto halts the auto-run loop and waits for it to exit.
func (l *Lab) StopAuto() {
	l.supervisor.Stop(autoRunTask)
}

// AutoRunning reports whether the auto-run loop is active.
func (l *Lab) AutoRunning() bool {
	for _, name := range l.supervisor.Tasks() {
		if name == autoRunTask {
			return true
		}
	}
	return false
}

// Reset discards the run state: population, frozen slots, hadrons, history
// and diagnostics all start over.
func (l *Lab) Reset(seed int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.engine.Reset(seed)
	l.history = nil
	l.diagnostics = nil
	l.paused = false
}

func (l *Lab) FitnessHistory() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float64(nil), l.history...)
}

func (l *Lab) Diagnostics() []model.GenerationDiagnostics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.GenerationDiagnostics(nil), l.diagnostics...)
}

func (l *Lab) Population() []model.SubSKB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Population()
}

func (l *Lab) Hadrons() []model.HadronRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine.Hadrons()
}

// RunRecord snapshots the run's current summary.
func (l *Lab) RunRecord(cfg evo.Config) model.RunRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	best := 0.0
	if n := len(l.history); n > 0 {
		best = l.history[n-1]
	}
	return model.RunRecord{
		VersionedRecord:  storage.Stamp(),
		ID:               l.runID,
		CreatedAtUTC:     l.createdAt,
		Seed:             cfg.Seed,
		PopulationSize:   cfg.PopulationSize,
		Generations:      l.engine.Generation(),
		MutationRate:     cfg.MutationRate,
		FinalBestFitness: best,
		HadronCount:      len(l.engine.Hadrons()),
	}
}

// Persist writes the run record, population snapshot, fitness history,
// diagnostics and hadrons through the configured store.
func (l *Lab) Persist(ctx context.Context, cfg evo.Config) error {
	if l.store == nil {
		return errors.New("no store configured")
	}
	run := l.RunRecord(cfg)

	l.mu.Lock()
	population := model.PopulationRecord{
		VersionedRecord: storage.Stamp(),
		ID:              l.runID,
		Generation:      l.engine.Generation(),
		Members:         l.engine.Population(),
		FrozenSlots:     l.engine.FrozenSlots(),
	}
	history := append([]float64(nil), l.history...)
	diagnostics := append([]model.GenerationDiagnostics(nil), l.diagnostics...)
	hadrons := l.engine.Hadrons()
	l.mu.Unlock()

	for i := range hadrons {
		hadrons[i].VersionedRecord = storage.Stamp()
	}

	if err := l.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := l.store.SavePopulation(ctx, population); err != nil {
		return fmt.Errorf("save population: %w", err)
	}
	if err := l.store.SaveFitnessHistory(ctx, l.runID, history); err != nil {
		return fmt.Errorf("save fitness history: %w", err)
	}
	if err := l.store.SaveGenerationDiagnostics(ctx, l.runID, diagnostics); err != nil {
		return fmt.Errorf("save diagnostics: %w", err)
	}
	if err := l.store.SaveHadrons(ctx, l.runID, hadrons); err != nil {
		return fmt.Errorf("save hadrons: %w", err)
	}
	return nil
}

// Export writes the run artifacts directory and updates the run index.
func (l *Lab) Export(cfg evo.Config) (string, error) {
	if l.exportsDir == "" {
		return "", errors.New("no exports directory configured")
	}
	run := l.RunRecord(cfg)

	l.mu.Lock()
	artifacts := stats.RunArtifacts{
		Run:              run,
		BestByGeneration: append([]float64(nil), l.history...),
		Diagnostics:      append([]model.GenerationDiagnostics(nil), l.diagnostics...),
		Hadrons:          l.engine.Hadrons(),
	}
	l.mu.Unlock()

	runDir, err := stats.WriteRunArtifacts(l.exportsDir, artifacts)
	if err != nil {
		return "", err
	}
	err = stats.AppendRunIndex(l.exportsDir, stats.RunIndexEntry{
		RunID:            run.ID,
		PopulationSize:   run.PopulationSize,
		Generations:      run.Generations,
		Seed:             run.Seed,
		FinalBestFitness: run.FinalBestFitness,
		HadronCount:      run.HadronCount,
		CreatedAtUTC:     run.CreatedAtUTC,
	})
	if err != nil {
		return "", err
	}
	return runDir, nil
}

// Close stops background work.
func (l *Lab) Close() {
	l.supervisor.StopAll()
}
