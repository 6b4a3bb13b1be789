package claims

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrClaimNotFound = errors.New("claim not found")

// Repository persists claims. GetByJobID backs the one-claim-per-job
// idempotency guarantee.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	List(ctx context.Context, limit, offset int) ([]*Claim, int, error)
	ListAll(ctx context.Context) ([]*Claim, error)
}
