package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/samvad-hq/jsonfetch/internal/domain"
)

// memoryStore keeps examples in process memory; used by tests and the testing env.
type memoryStore struct {
	mu     sync.RWMutex
	nextID uint64
	items  map[uint64]domain.Example
	now    func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[uint64]domain.Example), now: time.Now}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) List() ([]domain.Example, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Example, 0, len(m.items))
	for _, ex := range m.items {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) Get(id uint64) (domain.Example, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ex, ok := m.items[id]
	if !ok {
		return domain.Example{}, ErrNotFound
	}
	return ex, nil
}

func (m *memoryStore) Create(ex domain.Example) (domain.Example, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := m.now().UTC()
	ex.ID = m.nextID
	ex.CreatedAt = now
	ex.UpdatedAt = now
	m.items[ex.ID] = ex
	return ex, nil
}

func (m *memoryStore) Update(id uint64, name, description string) (domain.Example, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, ok := m.items[id]
	if !ok {
		return domain.Example{}, ErrNotFound
	}
	ex.Name = name
	ex.Description = description
	ex.UpdatedAt = m.now().UTC()
	m.items[id] = ex
	return ex, nil
}

func (m *memoryStore) Delete(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}
