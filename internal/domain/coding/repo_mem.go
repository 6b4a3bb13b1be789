package coding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryJobRepo is a thread-safe JobRepository for tests and standalone
// deployments without Postgres.
type InMemoryJobRepo struct {
	mu    sync.RWMutex
	jobs  map[uuid.UUID]*CodingJob
	order []uuid.UUID
}

// NewInMemoryJobRepo creates an empty store.
func NewInMemoryJobRepo() *InMemoryJobRepo {
	return &InMemoryJobRepo{jobs: make(map[uuid.UUID]*CodingJob)}
}

func (r *InMemoryJobRepo) Create(_ context.Context, j *CodingJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	cp := *j
	r.jobs[j.ID] = &cp
	r.order = append(r.order, j.ID)
	return nil
}

func (r *InMemoryJobRepo) GetByID(_ context.Context, id uuid.UUID) (*CodingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *InMemoryJobRepo) Update(_ context.Context, j *CodingJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; !ok {
		return ErrJobNotFound
	}
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r *InMemoryJobRepo) List(_ context.Context, limit, offset int) ([]*CodingJob, int, error) {
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
	out := make([]*CodingJob, 0, end-offset)
	for _, id := range r.order[offset:end] {
		cp := *r.jobs[id]
		out = append(out, &cp)
	}
	return out, total, nil
}

func (r *InMemoryJobRepo) ListAll(_ context.Context) ([]*CodingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CodingJob, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.jobs[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *InMemoryJobRepo) ListOpen(_ context.Context) ([]*CodingJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CodingJob
	for _, id := range r.order {
		if j := r.jobs[id]; j.Open() {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}
