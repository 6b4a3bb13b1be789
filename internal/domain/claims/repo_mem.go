package claims

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepo is a thread-safe Repository for tests and standalone
// deployments without Postgres.
type InMemoryRepo struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]*Claim
	byJob map[uuid.UUID]uuid.UUID
	order []uuid.UUID
}

// NewInMemoryRepo creates an empty store.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		rows:  make(map[uuid.UUID]*Claim),
		byJob: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, c *Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	cp := *c
	r.rows[c.ID] = &cp
	r.byJob[c.JobID] = c.ID
	r.order = append(r.order, c.ID)
	return nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, ErrClaimNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryRepo) GetByJobID(_ context.Context, jobID uuid.UUID) (*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byJob[jobID]
	if !ok {
		return nil, ErrClaimNotFound
	}
	cp := *r.rows[id]
	return &cp, nil
}

func (r *InMemoryRepo) Update(_ context.Context, c *Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return ErrClaimNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *InMemoryRepo) List(_ context.Context, limit, offset int) ([]*Claim, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.order)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	out := make([]*Claim, 0, end-offset)
	for _, id := range r.order[offset:end] {
		cp := *r.rows[id]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *InMemoryRepo) ListAll(_ context.Context) ([]*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Claim, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.rows[id]
		out = append(out, &cp)
	}
	return out, nil
}
