package coding

import (
	"context"

	"github.com/google/uuid"
)

// JobRepository is the keyed coding-job collection contract. Postgres is
// the first-party implementation; the in-memory store backs tests and
// standalone mode.
type JobRepository interface {
	Create(ctx context.Context, j *CodingJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*CodingJob, error)
	Update(ctx context.Context, j *CodingJob) error
	List(ctx context.Context, limit, offset int) ([]*CodingJob, int, error)
	// ListOpen returns every job still awaiting coder action, unpaginated:
	// the worklist scores and orders the full open set on each fetch.
	ListOpen(ctx context.Context) ([]*CodingJob, error)
	// ListAll returns the full job collection for aggregate reporting.
	ListAll(ctx context.Context) ([]*CodingJob, error)
}
