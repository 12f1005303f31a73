package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/jsonfetch/internal/domain"
)

// Package storage persists examples served by the example API.

// ErrNotFound is returned when no example exists for an id.
var ErrNotFound = errors.New("example not found")

// Store persists examples.
type Store interface {
	Close() error
	List() ([]domain.Example, error)
	Get(id uint64) (domain.Example, error)
	// Create assigns the id and timestamps and returns the stored example.
	Create(ex domain.Example) (domain.Example, error)
	// Update replaces name and description and bumps UpdatedAt.
	Update(id uint64, name, description string) (domain.Example, error)
	Delete(id uint64) error
	Count() (int, error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "memory", "":
		return newMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}
