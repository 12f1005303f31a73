package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSeedYAMLAndSeedIfEmpty(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "examples.yaml")
	content := `
examples:
  - name: Example 1
    description: This is example 1
  - name: " Example 2 "
    description: This is example 2
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	examples, err := LoadSeed(file)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(examples) != 2 || examples[1].Name != "Example 2" {
		t.Fatalf("unexpected seed %#v", examples)
	}

	store := newMemoryStore()
	n, err := SeedIfEmpty(store, examples)
	if err != nil || n != 2 {
		t.Fatalf("SeedIfEmpty = %d, %v", n, err)
	}

	n, err = SeedIfEmpty(store, examples)
	if err != nil || n != 0 {
		t.Fatalf("second SeedIfEmpty should be a no-op, got %d, %v", n, err)
	}
	if count, _ := store.Count(); count != 2 {
		t.Fatalf("Count = %d", count)
	}
}

func TestLoadSeedJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "examples.json")
	if err := os.WriteFile(file, []byte(`{"examples":[{"name":"n","description":"d"}]}`), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	examples, err := LoadSeed(file)
	if err != nil || len(examples) != 1 {
		t.Fatalf("LoadSeed = %#v, %v", examples, err)
	}
}

func TestLoadSeedRejectsIncompleteEntries(t *testing.T) {
	file := filepath.Join(t.TempDir(), "examples.yaml")
	if err := os.WriteFile(file, []byte("examples:\n  - name: only-name\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	if _, err := LoadSeed(file); err == nil {
		t.Fatalf("expected error for missing description")
	}
}
