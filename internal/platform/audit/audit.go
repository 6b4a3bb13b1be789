// Package audit records who did what to which object across the coding and
// claims pipeline. Recording is best-effort: a failing recorder is logged
// and never blocks the transition that produced the event.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event is a single audit trail entry.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	ObjectType string    `db:"object_type" json:"object_type"`
	ObjectID   string    `db:"object_id" json:"object_id"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	Recorded   time.Time `db:"recorded" json:"recorded"`
}

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// RecorderFunc is a function adapter for Recorder.
type RecorderFunc func(ctx context.Context, e Event) error

func (f RecorderFunc) Record(ctx context.Context, e Event) error { return f(ctx, e) }

// Trail emits audit events to a Recorder, falling back to structured
// logging when no recorder is configured.
type Trail struct {
	rec Recorder
	log zerolog.Logger
}

// NewTrail builds a Trail. rec may be nil, in which case events are only
// logged.
func NewTrail(rec Recorder, log zerolog.Logger) *Trail {
	return &Trail{rec: rec, log: log}
}

// Emit records one audit event. Errors are logged, never returned: state
// transitions must not be blocked by audit trouble.
func (t *Trail) Emit(ctx context.Context, actor, action, objectType, objectID, detail string) {
	e := Event{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   objectID,
		Detail:     detail,
		Recorded:   time.Now().UTC(),
	}

	t.log.Info().
		Str("actor", e.Actor).
		Str("action", e.Action).
		Str("object_type", e.ObjectType).
		Str("object_id", e.ObjectID).
		Msg("audit")

	if t.rec == nil {
		return
	}
	if err := t.rec.Record(ctx, e); err != nil {
		t.log.Error().Err(err).
			Str("action", e.Action).
			Str("object_id", e.ObjectID).
			Msg("audit event not persisted")
	}
}
