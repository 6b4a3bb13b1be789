package coding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type jobRepoPG struct{ pool *pgxpool.Pool }

// NewJobRepoPG returns the Postgres-backed JobRepository.
func NewJobRepoPG(pool *pgxpool.Pool) JobRepository { return &jobRepoPG{pool: pool} }

const jobCols = `id, encounter_id, note_text, meta, suggested_codes,
	confidence_score, phase, status, grouping_result, created_at, updated_at`

func scanJob(row pgx.Row) (*CodingJob, error) {
	var (
		j        CodingJob
		meta     []byte
		codes    []byte
		grouping []byte
	)
	err := row.Scan(&j.ID, &j.EncounterID, &j.NoteText, &meta, &codes,
		&j.ConfidenceScore, &j.Phase, &j.Status, &grouping, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(meta, &j.Meta); err != nil {
		return nil, fmt.Errorf("decode job meta: %w", err)
	}
	if err := json.Unmarshal(codes, &j.SuggestedCodes); err != nil {
		return nil, fmt.Errorf("decode suggested codes: %w", err)
	}
	if len(grouping) > 0 {
		j.Grouping = &GroupingResult{}
		if err := json.Unmarshal(grouping, j.Grouping); err != nil {
			return nil, fmt.Errorf("decode grouping result: %w", err)
		}
	}
	return &j, nil
}

func jobJSON(j *CodingJob) (meta, codes, grouping []byte, err error) {
	if meta, err = json.Marshal(j.Meta); err != nil {
		return nil, nil, nil, fmt.Errorf("encode job meta: %w", err)
	}
	if codes, err = json.Marshal(j.SuggestedCodes); err != nil {
		return nil, nil, nil, fmt.Errorf("encode suggested codes: %w", err)
	}
	if j.Grouping != nil {
		if grouping, err = json.Marshal(j.Grouping); err != nil {
			return nil, nil, nil, fmt.Errorf("encode grouping result: %w", err)
		}
	}
	return meta, codes, grouping, nil
}

func (r *jobRepoPG) Create(ctx context.Context, j *CodingJob) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	meta, codes, grouping, err := jobJSON(j)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO coding_jobs (id, encounter_id, note_text, meta, suggested_codes,
			confidence_score, phase, status, grouping_result)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		j.ID, j.EncounterID, j.NoteText, meta, codes,
		j.ConfidenceScore, j.Phase, j.Status, grouping)
	return err
}

func (r *jobRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CodingJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobCols+` FROM coding_jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *jobRepoPG) Update(ctx context.Context, j *CodingJob) error {
	meta, codes, grouping, err := jobJSON(j)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE coding_jobs
		SET encounter_id=$2, note_text=$3, meta=$4, suggested_codes=$5,
			confidence_score=$6, phase=$7, status=$8, grouping_result=$9, updated_at=NOW()
		WHERE id=$1`,
		j.ID, j.EncounterID, j.NoteText, meta, codes,
		j.ConfidenceScore, j.Phase, j.Status, grouping)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *jobRepoPG) List(ctx context.Context, limit, offset int) ([]*CodingJob, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coding_jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobCols+` FROM coding_jobs
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*CodingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

func (r *jobRepoPG) ListAll(ctx context.Context) ([]*CodingJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobCols+` FROM coding_jobs ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CodingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *jobRepoPG) ListOpen(ctx context.Context) ([]*CodingJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobCols+` FROM coding_jobs
		WHERE status IN ($1, $2)
		ORDER BY created_at ASC`, StatusNeedsReview, StatusAutoDrop)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CodingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
