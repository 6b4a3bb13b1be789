package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/rcm/internal/domain/coding"
)

func sampleJob() *coding.CodingJob {
	return &coding.CodingJob{
		ID:          uuid.New(),
		EncounterID: uuid.NewString(),
		NoteText:    "Patient admitted with pneumonia.",
		Meta: coding.EncounterMeta{
			EncounterType:    coding.EncounterInpatient,
			PatientAge:       67,
			DischargeStatus:  "home",
			AdmissionDate:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			EstimatedRevenue: 42000,
		},
		SuggestedCodes: []coding.SuggestedCode{
			{Code: "J18.9", Description: "Pneumonia, unspecified organism", Confidence: 0.85, CodeType: "diagnosis"},
		},
		ConfidenceScore: 0.85,
		Phase:           coding.PhaseCAC,
		Status:          coding.StatusNeedsReview,
		Grouping: &coding.GroupingResult{
			Kind: coding.GroupingInpatient,
			Inpatient: &coding.InpatientResult{
				BaseGroupCode:   "ADRG-139",
				Description:     "Simple pneumonia",
				MDC:             "04",
				SOI:             2,
				ROM:             1,
				RelativeWeight:  0.96,
				ExpectedLOSDays: 3.5,
			},
		},
	}
}

func TestCodingJobRepo_CreateAndGet(t *testing.T) {
	repo := coding.NewJobRepoPG(freshDB(t))
	ctx := context.Background()

	job := sampleJob()
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EncounterID != job.EncounterID || got.NoteText != job.NoteText {
		t.Errorf("scalar fields did not round-trip")
	}
	if got.Meta.PatientAge != 67 || got.Meta.EncounterType != coding.EncounterInpatient {
		t.Errorf("meta did not round-trip: %+v", got.Meta)
	}
	if len(got.SuggestedCodes) != 1 || got.SuggestedCodes[0].Code != "J18.9" {
		t.Errorf("suggested codes did not round-trip: %+v", got.SuggestedCodes)
	}
	if got.Grouping == nil || got.Grouping.Inpatient == nil {
		t.Fatalf("grouping result did not round-trip")
	}
	if got.Grouping.Inpatient.RelativeWeight != 0.96 {
		t.Errorf("expected weight 0.96, got %v", got.Grouping.Inpatient.RelativeWeight)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("expected database-assigned timestamps")
	}
}

func TestCodingJobRepo_GetMissing(t *testing.T) {
	repo := coding.NewJobRepoPG(freshDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, coding.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestCodingJobRepo_Update(t *testing.T) {
	repo := coding.NewJobRepoPG(freshDB(t))
	ctx := context.Background()

	job := sampleJob()
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	job.Status = coding.StatusSentToClearinghouse
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != coding.StatusSentToClearinghouse {
		t.Errorf("expected updated status, got %s", got.Status)
	}

	missing := sampleJob()
	if err := repo.Update(ctx, missing); !errors.Is(err, coding.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound for unknown job, got %v", err)
	}
}

func TestCodingJobRepo_ListOpen(t *testing.T) {
	repo := coding.NewJobRepoPG(freshDB(t))
	ctx := context.Background()

	open := sampleJob()
	sent := sampleJob()
	sent.Status = coding.StatusSentToClearinghouse
	rejected := sampleJob()
	rejected.Status = coding.StatusRejected

	for _, j := range []*coding.CodingJob{open, sent, rejected} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(got) != 1 || got[0].ID != open.ID {
		t.Errorf("expected only the open job, got %d rows", len(got))
	}
}

func TestCodingJobRepo_ListPagination(t *testing.T) {
	repo := coding.NewJobRepoPG(freshDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, sampleJob()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, total, err := repo.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 jobs, got %d", len(all))
	}
}
