package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/rcm/internal/platform/audit"
	"github.com/brainsait/rcm/internal/platform/db"
)

func TestAuditRecorder_Record(t *testing.T) {
	pool := freshDB(t)
	rec := audit.NewRecorderPG(pool)
	ctx := context.Background()

	e := audit.Event{
		ID:         uuid.New(),
		Actor:      "coder1",
		Action:     "accept",
		ObjectType: "CodingJob",
		ObjectID:   uuid.NewString(),
		Detail:     "manual review",
		Recorded:   time.Now().UTC(),
	}
	if err := rec.Record(ctx, e); err != nil {
		t.Fatalf("record: %v", err)
	}

	var actor, action string
	err := pool.QueryRow(ctx,
		`SELECT actor, action FROM audit_events WHERE id = $1`, e.ID).
		Scan(&actor, &action)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if actor != "coder1" || action != "accept" {
		t.Errorf("unexpected row: %s/%s", actor, action)
	}
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	m := db.NewMigrator(globalPool, migrationsDir())

	// TestMain already applied everything; a second run is a no-op.
	n, err := m.Up(context.Background())
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 newly applied migrations, got %d", n)
	}

	statuses, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 known migrations, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("migration %d (%s) not applied", s.Version, s.Name)
		}
	}
}
