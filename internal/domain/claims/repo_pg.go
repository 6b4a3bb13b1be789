package claims

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const claimCols = `id, job_id, encounter_id, claim_number, clearinghouse_id,
	status, amount, currency, submit_attempts, submitted_at, paid_at,
	paid_amount, rejection_code, rejection_reason, created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.JobID, &c.EncounterID, &c.ClaimNumber, &c.ClearinghouseID,
		&c.Status, &c.Amount, &c.Currency, &c.SubmitAttempts, &c.SubmittedAt, &c.PaidAt,
		&c.PaidAmount, &c.RejectionCode, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Claim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO claims (id, job_id, encounter_id, claim_number, clearinghouse_id,
			status, amount, currency, submit_attempts, submitted_at, paid_at,
			paid_amount, rejection_code, rejection_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.JobID, c.EncounterID, c.ClaimNumber, c.ClearinghouseID,
		c.Status, c.Amount, c.Currency, c.SubmitAttempts, c.SubmittedAt, c.PaidAt,
		c.PaidAmount, c.RejectionCode, c.RejectionReason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id)
	return scanClaim(row)
}

func (r *repoPG) GetByJobID(ctx context.Context, jobID uuid.UUID) (*Claim, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE job_id = $1`, jobID)
	return scanClaim(row)
}

func (r *repoPG) Update(ctx context.Context, c *Claim) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE claims
		SET clearinghouse_id=$2, status=$3, amount=$4, submit_attempts=$5,
			submitted_at=$6, paid_at=$7, paid_amount=$8, rejection_code=$9,
			rejection_reason=$10, updated_at=NOW()
		WHERE id=$1`,
		c.ID, c.ClearinghouseID, c.Status, c.Amount, c.SubmitAttempts,
		c.SubmittedAt, c.PaidAt, c.PaidAmount, c.RejectionCode, c.RejectionReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Claim, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+claimCols+` FROM claims
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Claim, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+claimCols+` FROM claims ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
