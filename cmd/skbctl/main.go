package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jbcupps/Wireframe-sub000/internal/model"
	"github.com/jbcupps/Wireframe-sub000/internal/search"
	"github.com/jbcupps/Wireframe-sub000/internal/server"
	"github.com/jbcupps/Wireframe-sub000/internal/storage"
	"github.com/jbcupps/Wireframe-sub000/internal/topology"
	"github.com/jbcupps/Wireframe-sub000/pkg/skbevo"
)

const (
	defaultDBPath     = "skbevo.db"
	defaultExportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "hadrons":
		return runHadrons(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "validate":
		return runValidate(ctx, args[1:])
	case "search":
		return runSearch(ctx, args[1:])
	case "particles":
		return runParticles(ctx, args[1:])
	case "targets":
		return runTargets(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: skbctl <init|reset|run|runs|hadrons|fitness|diagnostics|export|validate|search|particles|targets|serve> [flags]", msg)
}

func newClient(storeKind, dbPath, exportsDir string) (*skbevo.Client, error) {
	return skbevo.New(skbevo.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		ExportsDir: exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultExportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := storage.NewStore(*storeKind, *dbPath); err != nil {
		return err
	}
	if *storeKind == "sqlite" {
		if err := os.Remove(*dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", 20, "population size")
	generations := fs.Int("gens", 50, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	mutationRate := fs.Float64("mutation-rate", 0.1, "per-parameter mutation probability")
	crossoverRate := fs.Float64("crossover-rate", 0.7, "crossover probability")
	tournament := fs.Int("tournament", 3, "tournament size")
	wW1 := fs.Float64("w-w1", 0, "weight for the first Stiefel-Whitney term (0 keeps defaults)")
	wEuler := fs.Float64("w-euler", 0, "weight for the Euler characteristic term")
	wQ := fs.Float64("w-q", 0, "weight for the intersection form term")
	wTwist := fs.Float64("w-twist", 0, "weight for the twist alignment term")
	wCTC := fs.Float64("w-ctc", 0, "weight for the CTC stability term")
	sigma := fs.Float64("sigma", 0, "twist kernel width (0 uses default)")
	epsilon := fs.Float64("epsilon", 0, "time-twist tolerance (0 uses default)")
	noExport := fs.Bool("no-export", false, "skip writing run artifacts")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	exportsDir := fs.String("exports-dir", defaultExportsDir, "artifact output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = skbevo.RunRequest{
			RunID:         *runID,
			Population:    *population,
			Generations:   *generations,
			Seed:          *seed,
			MutationRate:  *mutationRate,
			CrossoverRate: *crossoverRate,
			Tournament:    *tournament,
			WeightW1:      *wW1,
			WeightEuler:   *wEuler,
			WeightQ:       *wQ,
			WeightTwist:   *wTwist,
			WeightCTC:     *wCTC,
			Sigma:         *sigma,
			Epsilon:       *epsilon,
			SkipExport:    *noExport,
		}
	} else {
		overrideFromFlags(&req, setFlags, flagValues{
			"run-id":         *runID,
			"pop":            *population,
			"gens":           *generations,
			"seed":           *seed,
			"mutation-rate":  *mutationRate,
			"crossover-rate": *crossoverRate,
			"tournament":     *tournament,
			"w-w1":           *wW1,
			"w-euler":        *wEuler,
			"w-q":            *wQ,
			"w-twist":        *wTwist,
			"w-ctc":          *wCTC,
			"sigma":          *sigma,
			"epsilon":        *epsilon,
			"no-export":      *noExport,
		})
	}

	client, err := newClient(*storeKind, *dbPath, *exportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s pop=%d gens=%d seed=%d\n", summary.RunID, req.Population, req.Generations, req.Seed)
	for i, best := range summary.BestByGeneration {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	fmt.Printf("final_best_fitness=%.6f hadrons=%d frozen=%d\n", summary.FinalBestFitness, summary.HadronCount, summary.FrozenCount)
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath, defaultExportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, skbevo.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		created := r.CreatedAtUTC
		if t, err := time.Parse(time.RFC3339, r.CreatedAtUTC); err == nil {
			created = humanize.Time(t)
		}
		fmt.Printf("run_id=%s created=%s seed=%d pop=%d gens=%d final_best_fitness=%.6f hadrons=%d\n",
			r.RunID, created, r.Seed, r.Population, r.Generations, r.FinalBestFitness, r.HadronCount)
	}
	return nil
}

func runHadrons(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hadrons", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 50, "max records to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit hadron records as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultExportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	hadrons, err := client.Hadrons(ctx, skbevo.HadronsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if len(hadrons) == 0 {
		fmt.Println("no hadrons discovered")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hadrons)
	}

	for _, h := range hadrons {
		fmt.Printf("generation=%d slots=%v members=%v score=%.6f ctc_stable=%t twist_balanced=%t topo_compatible=%t\n",
			h.Generation, h.Slots, h.MemberIDs, h.Score, h.CTCStable, h.TwistBalanced, h.TopologicallyCompatible)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit fitness history as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultExportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, skbevo.FitnessHistoryRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no fitness history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, best := range history {
		fmt.Printf("generation=%d best_fitness=%.6f\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 50, "max rows to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultExportsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, skbevo.DiagnosticsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%.6f mean=%.6f min=%.6f stddev=%.6f compatible_pairs=%d frozen=%d hadrons=%d\n",
			d.Generation, d.BestFitness, d.MeanFitness, d.MinFitness, d.FitnessStdDev, d.CompatiblePairs, d.FrozenCount, d.HadronCount)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", defaultExportsDir, "output directory")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *outDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, skbevo.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s\n", summary.RunID, summary.Directory)
	return nil
}

func runValidate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	tx := fs.Float64("tx", 0, "twist along x")
	ty := fs.Float64("ty", 0, "twist along y")
	tz := fs.Float64("tz", 0, "twist along z")
	tt := fs.Float64("tt", 0, "time twist")
	jsonOut := fs.Bool("json", false, "emit validation as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := topology.ValidateHadron(model.Params{Tx: *tx, Ty: *ty, Tz: *tz, Tt: *tt})
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Printf("valid=%t type=%s total_twist=%.3f message=%q\n", result.IsValid, result.HadronType, result.TotalTwist, result.Message)
	return nil
}

func runSearch(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	particle := fs.String("particle", "", "target particle name (see particles command)")
	metric := fs.String("metric", "relative", "error metric: relative|absolute|weighted")
	twistMin := fs.Float64("twist-min", search.DefaultTwistMin, "minimum twist")
	twistMax := fs.Float64("twist-max", search.DefaultTwistMax, "maximum twist")
	twistStep := fs.Float64("twist-step", search.DefaultTwistStep, "twist grid step")
	linkMin := fs.Int("link-min", search.DefaultLinkMin, "minimum linking number")
	linkMax := fs.Int("link-max", search.DefaultLinkMax, "maximum linking number")
	linkStep := fs.Int("link-step", search.DefaultLinkStep, "linking number step")
	chargeScale := fs.Float64("charge-scale", search.DefaultChargeScale, "charge per unit twist")
	baseMass := fs.Float64("base-mass", search.DefaultBaseMass, "base mass in MeV")
	energyScale := fs.Float64("energy-scale", search.DefaultEnergyScale, "mass per unit linking in MeV")
	limit := fs.Int("limit", 10, "max results to print")
	jsonOut := fs.Bool("json", false, "emit the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *particle == "" {
		return errors.New("search requires -particle")
	}

	params := search.GridParams{
		TwistMin:    *twistMin,
		TwistMax:    *twistMax,
		TwistStep:   *twistStep,
		LinkMin:     *linkMin,
		LinkMax:     *linkMax,
		LinkStep:    *linkStep,
		ChargeScale: *chargeScale,
		BaseMass:    *baseMass,
		EnergyScale: *energyScale,
	}
	summary, err := params.Summarize()
	if err != nil {
		return err
	}
	report, err := search.Run(*particle, params, search.Metric(*metric))
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("target=%s mass=%.3f charge=%.3f metric=%s grid_points=%s estimated=%s\n",
		report.Target.Name, report.Target.MassMeV, report.Target.Charge, report.Metric,
		humanize.Comma(int64(summary.CombinationCount)), summary.EstimatedTime)
	results := report.Results
	if *limit > 0 && len(results) > *limit {
		results = results[:*limit]
	}
	for i, r := range results {
		fmt.Printf("rank=%d twist=%.2f link=%d charge=%.3f mass=%.3f error=%.6f\n",
			i+1, r.Twist, r.Link, r.Charge, r.Mass, r.Error)
	}
	return nil
}

func runParticles(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("particles", flag.ContinueOnError)
	name := fs.String("name", "", "show a single particle")
	jsonOut := fs.Bool("json", false, "emit particles as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name != "" {
		particle, err := search.ParticleByName(*name)
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(particle)
		}
		fmt.Printf("name=%s display=%s mass=%.3f charge=%+.3f structure=%s\n",
			particle.Name, particle.DisplayName, particle.MassMeV, particle.Charge, particle.Structure)
		return nil
	}

	particles := search.AllParticles()
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(particles)
	}
	for _, p := range particles {
		fmt.Printf("name=%s display=%s mass=%.3f charge=%+.3f structure=%s\n",
			p.Name, p.DisplayName, p.MassMeV, p.Charge, p.Structure)
	}
	return nil
}

func runTargets(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("targets", flag.ContinueOnError)
	kind := fs.String("type", "all", "particle class: quark|lepton|baryon|all")
	limit := fs.Int("limit", 0, "max targets to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit targets as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets, err := search.TheoreticalTargets(*kind)
	if err != nil {
		return err
	}
	if *limit > 0 && len(targets) > *limit {
		targets = targets[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(targets)
	}

	fmt.Printf("type=%s targets=%s\n", *kind, humanize.Comma(int64(len(targets))))
	for _, t := range targets {
		fmt.Printf("twist_sum=%+.3f loop_factor=%.1f basis=%q\n", t.TwistSum, t.LoopFactor, t.Basis)
	}
	return nil
}

func runServe(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := log.New(os.Stderr, "skbctl ", log.LstdFlags)
	logger.Printf("listening on %s", *addr)
	return http.ListenAndServe(*addr, server.New(logger))
}
