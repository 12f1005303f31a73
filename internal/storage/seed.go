package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/jsonfetch/internal/domain"
	"gopkg.in/yaml.v3"
)

// seedFile represents the structure of the example seed file.
type seedFile struct {
	Examples []domain.Example `json:"examples" yaml:"examples"`
}

// LoadSeed reads example definitions from a YAML or JSON file.
func LoadSeed(path string) ([]domain.Example, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("seed file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	seed, err := parseSeed(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Example, 0, len(seed.Examples))
	for i, ex := range seed.Examples {
		ex.Name = strings.TrimSpace(ex.Name)
		ex.Description = strings.TrimSpace(ex.Description)
		if ex.Name == "" || ex.Description == "" {
			return nil, fmt.Errorf("examples[%d]: name and description are required", i)
		}
		out = append(out, ex)
	}
	return out, nil
}

func parseSeed(data []byte, ext string) (seedFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var seed seedFile
		if err := d.fn(data, &seed); err == nil {
			return seed, nil
		}
	}

	return seedFile{}, errors.New("seed file format not recognized (expected YAML or JSON)")
}

// SeedIfEmpty inserts examples into an empty store and returns how many were written.
// A store that already holds data is left untouched.
func SeedIfEmpty(store Store, examples []domain.Example) (int, error) {
	n, err := store.Count()
	if err != nil {
		return 0, fmt.Errorf("count examples: %w", err)
	}
	if n > 0 || len(examples) == 0 {
		return 0, nil
	}

	for i, ex := range examples {
		if _, err := store.Create(domain.Example{Name: ex.Name, Description: ex.Description}); err != nil {
			return i, fmt.Errorf("seed example %q: %w", ex.Name, err)
		}
	}
	return len(examples), nil
}
