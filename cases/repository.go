package cases

import (
	"context"
	"sync"
)

// Repository is the storage contract the service depends on. ID is the only key.
type Repository interface {
	// GetByID returns ok=false, and no error, when the case does not exist.
	GetByID(ctx context.Context, id string) (c Case, ok bool, err error)
	// Save replaces any stored case with the same ID in full.
	Save(ctx context.Context, c Case) error
	// Seed inserts or overwrites every case by ID. Bootstrap only.
	Seed(ctx context.Context, cs []Case) error
}

// StatusSwapper is implemented by repositories that can persist a case only if
// the stored status still equals expected. It returns ErrStatusConflict otherwise.
type StatusSwapper interface {
	SaveIfStatus(ctx context.Context, c Case, expected Status) error
}

// MemoryRepository keeps cases in a process-local map. Nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]Case
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]Case)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (Case, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.store[id]
	if !ok {
		return Case{}, false, nil
	}
	return c.clone(), true, nil
}

func (r *MemoryRepository) Save(_ context.Context, c Case) error {
	if err := c.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[c.ID] = c.normalized()
	return nil
}

func (r *MemoryRepository) SaveIfStatus(_ context.Context, c Case, expected Status) error {
	if err := c.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.store[c.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Status != expected {
		return ErrStatusConflict
	}
	r.store[c.ID] = c.normalized()
	return nil
}

func (r *MemoryRepository) Seed(_ context.Context, cs []Case) error {
	if err := validateAll(cs); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cs {
		r.store[c.ID] = c.normalized()
	}
	return nil
}

// Reset drops every stored case. Tests use it to start from a clean slate
// without rebuilding the object graph.
func (r *MemoryRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = make(map[string]Case)
}

// Len reports how many cases are stored.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.store)
}
