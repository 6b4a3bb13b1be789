package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brainsait/rcm/internal/domain/coding"
	"github.com/brainsait/rcm/internal/platform/audit"
	"github.com/brainsait/rcm/internal/platform/clearinghouse"
	"github.com/brainsait/rcm/internal/platform/refdata"
)

type fakeConnector struct {
	submitCalls int
	submitErr   error
	submitted   []*clearinghouse.ClaimPayload

	statusResult *clearinghouse.StatusResult
	statusErr    error

	reconcileResult *clearinghouse.ReconcileResult
}

func (f *fakeConnector) SubmitClaim(_ context.Context, p *clearinghouse.ClaimPayload) (*clearinghouse.SubmissionResult, error) {
	f.submitCalls++
	f.submitted = append(f.submitted, p)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &clearinghouse.SubmissionResult{Status: "accepted", ClearinghouseID: "CH-100"}, nil
}

func (f *fakeConnector) ClaimStatus(_ context.Context, _ string) (*clearinghouse.StatusResult, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResult, nil
}

func (f *fakeConnector) RequestPreAuth(_ context.Context, _ *clearinghouse.PreAuthRequest) (*clearinghouse.PreAuthResult, error) {
	return &clearinghouse.PreAuthResult{AuthorizationID: "AUTH-1", Approved: true}, nil
}

func (f *fakeConnector) ReconcilePayment(_ context.Context, _ *clearinghouse.PaymentReconciliation) (*clearinghouse.ReconcileResult, error) {
	return f.reconcileResult, nil
}

func newTestService(conn Connector) (*Service, *InMemoryRepo) {
	repo := NewInMemoryRepo()
	trail := audit.NewTrail(nil, zerolog.Nop())
	svc := NewService(repo, conn, Config{
		ProviderCRNumber: "1010101010",
		BaseRate:         1000,
	}, trail, zerolog.Nop())
	return svc, repo
}

func testJob() *coding.CodingJob {
	return &coding.CodingJob{
		ID:          uuid.New(),
		EncounterID: "enc-1",
		Meta: coding.EncounterMeta{
			EncounterID:       "enc-1",
			EncounterType:     coding.EncounterOutpatient,
			PatientID:         "pat-1",
			PatientNationalID: "1023456784",
		},
		SuggestedCodes: []coding.SuggestedCode{
			{Code: "J18.9", Description: "Pneumonia, unspecified organism", Confidence: 0.85, CodeType: "ICD-10-CM"},
		},
		ConfidenceScore: 0.85,
		Grouping: &coding.GroupingResult{
			Kind:       coding.GroupingOutpatient,
			Outpatient: &coding.OutpatientResult{GroupCode: "EAPG-561", RelativeWeight: 1.2},
		},
	}
}

func TestSubmitCreatesAndSendsClaim(t *testing.T) {
	conn := &fakeConnector{}
	svc, repo := newTestService(conn)
	job := testJob()

	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	claim, err := repo.GetByJobID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if claim.Status != StatusSent {
		t.Fatalf("status = %s, want SENT", claim.Status)
	}
	if claim.ClearinghouseID != "CH-100" {
		t.Fatalf("clearinghouse id = %q", claim.ClearinghouseID)
	}
	if claim.Amount != 1200 { // 1.2 weight at base rate 1000
		t.Fatalf("amount = %v, want 1200", claim.Amount)
	}
	if claim.SubmitAttempts != 1 {
		t.Fatalf("attempts = %d, want 1", claim.SubmitAttempts)
	}
	if claim.SubmittedAt == nil {
		t.Fatal("submitted_at not set")
	}
}

func TestSubmitIsIdempotentPerJob(t *testing.T) {
	conn := &fakeConnector{}
	svc, repo := newTestService(conn)
	job := testJob()

	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	if conn.submitCalls != 1 {
		t.Fatalf("clearinghouse hit %d times, want 1", conn.submitCalls)
	}
	all, _ := repo.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("%d claims exist, want 1", len(all))
	}
}

func TestSubmitRetryReusesDraftAndClaimNumber(t *testing.T) {
	conn := &fakeConnector{submitErr: &clearinghouse.TransientError{Op: "submit", Err: errors.New("timeout")}}
	svc, repo := newTestService(conn)
	job := testJob()

	err := svc.Submit(context.Background(), job)
	var te *clearinghouse.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransientError, got %v", err)
	}

	first, _ := repo.GetByJobID(context.Background(), job.ID)
	if first.Status != StatusDraft {
		t.Fatalf("status after transient failure = %s, want DRAFT", first.Status)
	}

	conn.submitErr = nil
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatalf("retry: %v", err)
	}

	second, _ := repo.GetByJobID(context.Background(), job.ID)
	if second.ID != first.ID {
		t.Fatal("retry created a second claim")
	}
	if second.ClaimNumber != first.ClaimNumber {
		t.Fatalf("claim number changed on retry: %q vs %q", first.ClaimNumber, second.ClaimNumber)
	}
	if second.SubmitAttempts != 2 {
		t.Fatalf("attempts = %d, want 2", second.SubmitAttempts)
	}
	if second.Status != StatusSent {
		t.Fatalf("status = %s, want SENT", second.Status)
	}
}

func TestSubmitRejectionPropagatesToCoding(t *testing.T) {
	conn := &fakeConnector{submitErr: &clearinghouse.RejectionError{
		StatusCode: 422, Code: "COV-EXPIRED", Message: "coverage expired",
	}}
	svc, repo := newTestService(conn)
	job := testJob()

	err := svc.Submit(context.Background(), job)
	var rej *coding.RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected coding.RejectionError, got %v", err)
	}
	if rej.Code != "COV-EXPIRED" {
		t.Fatalf("code = %q", rej.Code)
	}

	claim, _ := repo.GetByJobID(context.Background(), job.ID)
	if claim.Status != StatusRejected {
		t.Fatalf("status = %s, want REJECTED", claim.Status)
	}
	if claim.RejectionReason != "coverage expired" {
		t.Fatalf("reason = %q", claim.RejectionReason)
	}
}

func TestSubmitPayloadContents(t *testing.T) {
	conn := &fakeConnector{}
	svc, _ := newTestService(conn)
	job := testJob()
	job.Meta.PrimaryProcedure = "92920"

	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	p := conn.submitted[0]
	if p.Patient.NationalID != "1023456784" || p.Patient.ID != "pat-1" {
		t.Fatalf("patient = %+v", p.Patient)
	}
	if p.Provider.CRNumber != "1010101010" {
		t.Fatalf("provider = %+v", p.Provider)
	}
	if p.Currency != "SAR" || p.Total != 1200 {
		t.Fatalf("total/currency = %v %s", p.Total, p.Currency)
	}
	if len(p.Items) != 2 { // principal diagnosis + primary procedure
		t.Fatalf("items = %+v", p.Items)
	}
	if p.Items[0].ServiceCode != "J18.9" || p.Items[1].ServiceCode != "92920" {
		t.Fatalf("item order unexpected: %+v", p.Items)
	}
}

func TestPollStatusMapsPaid(t *testing.T) {
	paid := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	conn := &fakeConnector{statusResult: &clearinghouse.StatusResult{
		ClaimID: "CH-100", Status: "paid", PaymentDate: &paid, PaidAmount: 1100,
	}}
	svc, repo := newTestService(conn)
	job := testJob()
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	claim, _ := repo.GetByJobID(context.Background(), job.ID)

	updated, err := svc.PollStatus(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("PollStatus: %v", err)
	}
	if updated.Status != StatusApproved || updated.PaidAmount != 1100 {
		t.Fatalf("claim = %+v", updated)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(paid) {
		t.Fatalf("paid_at = %v", updated.PaidAt)
	}
}

func TestPollStatusMapsRejected(t *testing.T) {
	conn := &fakeConnector{statusResult: &clearinghouse.StatusResult{
		ClaimID: "CH-100", Status: "rejected", Reason: "service not covered",
	}}
	svc, repo := newTestService(conn)
	job := testJob()
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	claim, _ := repo.GetByJobID(context.Background(), job.ID)

	updated, err := svc.PollStatus(context.Background(), claim.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != StatusRejected || updated.RejectionReason != "service not covered" {
		t.Fatalf("claim = %+v", updated)
	}
}

type fakeRejector struct {
	calls  int
	jobID  uuid.UUID
	reason string
}

func (f *fakeRejector) MarkRejected(_ context.Context, id uuid.UUID, reason string) error {
	f.calls++
	f.jobID = id
	f.reason = reason
	return nil
}

func TestPollStatusRejectionReachesCodingJob(t *testing.T) {
	conn := &fakeConnector{statusResult: &clearinghouse.StatusResult{
		ClaimID: "CH-100", Status: "rejected", Reason: "service not covered",
	}}
	svc, repo := newTestService(conn)

	jobs := coding.NewInMemoryJobRepo()
	codingSvc := coding.NewService(jobs, coding.NewMatcher(refdata.Default(), nil),
		coding.NewGrouper(refdata.Default()), svc, audit.NewTrail(nil, zerolog.Nop()), zerolog.Nop())
	svc.SetJobRejector(codingSvc)

	job := testJob()
	job.Status = coding.StatusSentToClearinghouse
	if err := jobs.Create(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	claim, _ := repo.GetByJobID(context.Background(), job.ID)

	if _, err := svc.PollStatus(context.Background(), claim.ID); err != nil {
		t.Fatalf("PollStatus: %v", err)
	}

	got, err := jobs.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != coding.StatusRejected {
		t.Fatalf("coding job status = %s, want REJECTED", got.Status)
	}
}

func TestPollStatusRejectionCallbackOnce(t *testing.T) {
	conn := &fakeConnector{statusResult: &clearinghouse.StatusResult{
		ClaimID: "CH-100", Status: "denied", Reason: "duplicate claim",
	}}
	svc, repo := newTestService(conn)
	rej := &fakeRejector{}
	svc.SetJobRejector(rej)

	job := testJob()
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	claim, _ := repo.GetByJobID(context.Background(), job.ID)

	for i := 0; i < 2; i++ {
		if _, err := svc.PollStatus(context.Background(), claim.ID); err != nil {
			t.Fatalf("PollStatus #%d: %v", i+1, err)
		}
	}

	if rej.calls != 1 {
		t.Fatalf("rejector called %d times, want 1", rej.calls)
	}
	if rej.jobID != job.ID {
		t.Fatalf("rejector got job %s, want %s", rej.jobID, job.ID)
	}
	if rej.reason != "duplicate claim" {
		t.Fatalf("reason = %q", rej.reason)
	}
}

func TestPollStatusRequiresSubmission(t *testing.T) {
	svc, repo := newTestService(&fakeConnector{})
	draft := &Claim{JobID: uuid.New(), EncounterID: "enc-2", ClaimNumber: "CLM-X", Status: StatusDraft, Currency: "SAR"}
	if err := repo.Create(context.Background(), draft); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PollStatus(context.Background(), draft.ID); err == nil {
		t.Fatal("expected error for unsubmitted claim")
	}
}

func TestReconcileMarksPaid(t *testing.T) {
	conn := &fakeConnector{reconcileResult: &clearinghouse.ReconcileResult{ClaimID: "CH-100", Matched: true}}
	svc, repo := newTestService(conn)
	job := testJob()
	if err := svc.Submit(context.Background(), job); err != nil {
		t.Fatal(err)
	}
	claim, _ := repo.GetByJobID(context.Background(), job.ID)

	when := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Reconcile(context.Background(), claim.ID, "PAY-9", 1150, when)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if updated.Status != StatusApproved || updated.PaidAmount != 1150 {
		t.Fatalf("claim = %+v", updated)
	}
}

func TestClaimNumberIsStable(t *testing.T) {
	id := uuid.New()
	if claimNumber(id) != claimNumber(id) {
		t.Fatal("claim number not deterministic")
	}
	if claimNumber(id) == claimNumber(uuid.New()) {
		t.Fatal("claim numbers collide across jobs")
	}
}
