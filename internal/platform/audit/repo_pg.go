package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type recorderPG struct{ pool *pgxpool.Pool }

// NewRecorderPG returns a Recorder persisting events to the audit_events table.
func NewRecorderPG(pool *pgxpool.Pool) Recorder { return &recorderPG{pool: pool} }

func (r *recorderPG) Record(ctx context.Context, e Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_events (id, actor, action, object_type, object_id, detail, recorded)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Actor, e.Action, e.ObjectType, e.ObjectID, e.Detail, e.Recorded)
	return err
}
