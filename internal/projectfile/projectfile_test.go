package projectfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/lambdapi/internal/config"
)

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("step_budget: 500\n"), "lambdapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StepBudget != 500 {
		t.Fatalf("expected step_budget 500, got %d", cfg.StepBudget)
	}
	if len(cfg.SearchPaths) != 1 || cfg.SearchPaths[0] != "." {
		t.Fatalf("expected default search path [.], got %v", cfg.SearchPaths)
	}
}

func TestParseConfigDefaultStepBudget(t *testing.T) {
	cfg, err := ParseConfig([]byte("search_paths: [lib, vendor]\n"), "lambdapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StepBudget != config.DefaultStepBudget {
		t.Fatalf("expected default step budget %d, got %d", config.DefaultStepBudget, cfg.StepBudget)
	}
	if len(cfg.SearchPaths) != 2 {
		t.Fatalf("expected 2 search paths, got %v", cfg.SearchPaths)
	}
}

func TestParseConfigRejectsNegativeBudget(t *testing.T) {
	if _, err := ParseConfig([]byte("step_budget: -1\n"), "lambdapi.yaml"); err == nil {
		t.Fatal("expected an error for a negative step budget")
	}
}

func TestFindConfigWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, config.ProjectFileName), []byte("step_budget: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := FindConfig(nested)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, config.ProjectFileName)
	if found != want {
		t.Fatalf("expected %s, got %s", want, found)
	}
}

func TestFindConfigReturnsEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	found, err := FindConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if found != "" {
		t.Fatalf("expected no config found, got %s", found)
	}
}

func TestResolveImportSearchesPathsInOrder(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	modFile := filepath.Join(libDir, "nat.lpi")
	if err := os.WriteFile(modFile, []byte("static Nat : Type.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{SearchPaths: []string{".", "lib"}}
	got, ok := cfg.ResolveImport(root, "nat")
	if !ok {
		t.Fatal("expected to resolve nat under lib/")
	}
	if got != modFile {
		t.Fatalf("expected %s, got %s", modFile, got)
	}
}
