package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunDispatchRejectsUnknownCommand(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, nil); err == nil {
		t.Fatal("missing command must be rejected")
	}
	if err := run(ctx, []string{"frobnicate"}); err == nil {
		t.Fatal("unknown command must be rejected")
	}
}

func TestRunCommandWritesArtifacts(t *testing.T) {
	exportsDir := t.TempDir()

	err := run(context.Background(), []string{
		"run",
		"-pop", "8",
		"-gens", "2",
		"-seed", "7",
		"-run-id", "cli-test",
		"-exports-dir", exportsDir,
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}

	runDir := filepath.Join(exportsDir, "cli-test")
	for _, name := range []string{"run.json", "fitness_history.csv", "diagnostics.json", "hadrons.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(exportsDir, "run_index.json")); err != nil {
		t.Errorf("missing run index: %v", err)
	}
}

func TestRunCommandRejectsBadWeights(t *testing.T) {
	err := run(context.Background(), []string{
		"run", "-gens", "1", "-w-twist", "-1",
		"-exports-dir", t.TempDir(),
	})
	if err == nil {
		t.Fatal("negative weight must be rejected")
	}
}

func TestRunsCommandWithEmptyStore(t *testing.T) {
	if err := run(context.Background(), []string{"runs"}); err != nil {
		t.Fatalf("runs: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, []string{"validate", "-tx", "1", "-ty", "1", "-tz", "1"}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := run(ctx, []string{"validate", "-json"}); err != nil {
		t.Fatalf("validate json: %v", err)
	}
}

func TestSearchCommand(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, []string{"search"}); err == nil {
		t.Fatal("search without particle must fail")
	}
	if err := run(ctx, []string{"search", "-particle", "electron", "-limit", "3"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if err := run(ctx, []string{"search", "-particle", "unobtainium"}); err == nil {
		t.Fatal("unknown particle must fail")
	}
}

func TestParticlesCommand(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, []string{"particles"}); err != nil {
		t.Fatalf("particles: %v", err)
	}
	if err := run(ctx, []string{"particles", "-name", "proton"}); err != nil {
		t.Fatalf("particles by name: %v", err)
	}
	if err := run(ctx, []string{"particles", "-name", "axion"}); err == nil {
		t.Fatal("unknown particle must fail")
	}
}

func TestTargetsCommand(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, []string{"targets"}); err != nil {
		t.Fatalf("targets: %v", err)
	}
	if err := run(ctx, []string{"targets", "-type", "quark", "-limit", "3", "-json"}); err != nil {
		t.Fatalf("targets json: %v", err)
	}
	if err := run(ctx, []string{"targets", "-type", "boson"}); err == nil {
		t.Fatal("unknown target type must fail")
	}
}

func TestInitAndResetCommands(t *testing.T) {
	ctx := context.Background()
	if err := run(ctx, []string{"init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run(ctx, []string{"reset"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := run(ctx, []string{"init", "-store", "unsupported"}); err == nil {
		t.Fatal("unsupported store must fail")
	}
}
