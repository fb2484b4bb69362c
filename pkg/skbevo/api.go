// Package skbevo is the public entry point for running and inspecting
// sub-SKB evolutionary searches.
package skbevo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jbcupps/Wireframe-sub000/internal/evo"
	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/platform"
	"github.com/jbcupps/Wireframe-sub000/internal/stats"
	"github.com/jbcupps/Wireframe-sub000/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "skbevo.db"

	defaultPopulation   = 20
	defaultGenerations  = 50
	defaultMutationRate = 0.1
	defaultTournament   = 3
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
	inited     bool
}

// RunRequest configures one evolutionary search. Zero values take the
// documented defaults; zero-valued weights fall back to the standard five
// term weighting.
type RunRequest struct {
	RunID         string
	Population    int
	Generations   int
	Seed          int64
	MutationRate  float64
	CrossoverRate float64
	Tournament    int

	WeightW1    float64
	WeightEuler float64
	WeightQ     float64
	WeightTwist float64
	WeightCTC   float64
	Sigma       float64
	Epsilon     float64

	SkipExport bool
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	HadronCount      int
	FrozenCount      int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness float64
	HadronCount      int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type HadronsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, exportsDir: exportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.inited {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.inited = true
	return nil
}

// Run executes a full search: evolve the requested number of generations,
// sweep for stable triplets each generation, persist the run and export its
// artifacts unless SkipExport is set.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Population <= 0 {
		req.Population = defaultPopulation
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}
	if req.MutationRate == 0 {
		req.MutationRate = defaultMutationRate
	}
	if req.Tournament <= 0 {
		req.Tournament = defaultTournament
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	weights := evo.DefaultWeights()
	if req.WeightW1 != 0 || req.WeightEuler != 0 || req.WeightQ != 0 || req.WeightTwist != 0 || req.WeightCTC != 0 {
		weights = evo.Weights{
			W1:      req.WeightW1,
			Euler:   req.WeightEuler,
			Q:       req.WeightQ,
			Twist:   req.WeightTwist,
			CTC:     req.WeightCTC,
			Sigma:   req.Sigma,
			Epsilon: req.Epsilon,
		}
	}

	cfg := evo.Config{
		PopulationSize: req.Population,
		MutationRate:   req.MutationRate,
		CrossoverRate:  req.CrossoverRate,
		Selector:       evo.TournamentSelector{K: req.Tournament},
		Weights:        weights,
		Seed:           req.Seed,
	}
	engine, err := evo.NewEngine(cfg)
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.ensureInit(ctx); err != nil {
		return RunSummary{}, err
	}
	lab, err := platform.NewLab(platform.LabConfig{
		Engine:     engine,
		Store:      c.store,
		RunID:      req.RunID,
		ExportsDir: c.exportsDir,
	})
	if err != nil {
		return RunSummary{}, err
	}
	defer lab.Close()

	if _, err := lab.RunGenerations(ctx, req.Generations); err != nil {
		return RunSummary{}, err
	}
	if err := lab.Persist(ctx, cfg); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:            lab.RunID(),
		BestByGeneration: lab.FitnessHistory(),
		HadronCount:      len(lab.Hadrons()),
		FrozenCount:      len(engine.FrozenSlots()),
	}
	if n := len(summary.BestByGeneration); n > 0 {
		summary.FinalBestFitness = summary.BestByGeneration[n-1]
	}
	if !req.SkipExport {
		runDir, err := lab.Export(cfg)
		if err != nil {
			return RunSummary{}, err
		}
		summary.ArtifactsDir = filepath.Clean(runDir)
	}
	return summary, nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	// The store lists runs oldest first.
	out := make([]RunItem, 0, len(records))
	for i := len(records) - 1; i >= 0 && len(out) < req.Limit; i-- {
		r := records[i]
		out = append(out, RunItem{
			RunID:            r.ID,
			CreatedAtUTC:     r.CreatedAtUTC,
			Seed:             r.Seed,
			Population:       r.PopulationSize,
			Generations:      r.Generations,
			FinalBestFitness: r.FinalBestFitness,
			HadronCount:      r.HadronCount,
		})
	}
	return out, nil
}

func (c *Client) Hadrons(ctx context.Context, req HadronsRequest) ([]model.HadronRecord, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "hadrons")
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	hadrons, ok, err := c.store.GetHadrons(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("hadrons not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(hadrons) > req.Limit {
		hadrons = hadrons[:req.Limit]
	}
	return append([]model.HadronRecord(nil), hadrons...), nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "fitness history")
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "diagnostics")
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return append([]model.GenerationDiagnostics(nil), diagnostics...), nil
}

// Export rewrites the artifact directory for a persisted run from the store.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}
	history, _, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	diagnostics, _, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	hadrons, _, err := c.store.GetHadrons(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(outDir, stats.RunArtifacts{
		Run:              run,
		BestByGeneration: history,
		Diagnostics:      diagnostics,
		Hadrons:          hadrons,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	if err := stats.AppendRunIndex(outDir, stats.RunIndexEntry{
		RunID:            run.ID,
		PopulationSize:   run.PopulationSize,
		Generations:      run.Generations,
		Seed:             run.Seed,
		FinalBestFitness: run.FinalBestFitness,
		HadronCount:      run.HadronCount,
		CreatedAtUTC:     run.CreatedAtUTC,
	}); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(runDir)}, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool, what string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if err := c.ensureInit(ctx); err != nil {
		return "", err
	}
	if latest {
		records, err := c.store.ListRuns(ctx)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "", errors.New("no runs available")
		}
		return records[len(records)-1].ID, nil
	}
	if runID == "" {
		return "", fmt.Errorf("%s requires run id or latest", what)
	}
	return runID, nil
}
