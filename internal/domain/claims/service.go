package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brainsait/rcm/internal/domain/coding"
	"github.com/brainsait/rcm/internal/platform/audit"
	"github.com/brainsait/rcm/internal/platform/clearinghouse"
)

// Connector is the slice of the clearinghouse client the claims service
// uses. An interface so tests can swap in a fake payer.
type Connector interface {
	SubmitClaim(ctx context.Context, payload *clearinghouse.ClaimPayload) (*clearinghouse.SubmissionResult, error)
	ClaimStatus(ctx context.Context, clearinghouseID string) (*clearinghouse.StatusResult, error)
	RequestPreAuth(ctx context.Context, req *clearinghouse.PreAuthRequest) (*clearinghouse.PreAuthResult, error)
	ReconcilePayment(ctx context.Context, rec *clearinghouse.PaymentReconciliation) (*clearinghouse.ReconcileResult, error)
}

// Config carries the billing parameters applied when a coding job is
// turned into a claim.
type Config struct {
	ProviderCRNumber string
	BaseRate         float64 // SAR per unit of relative weight
	SourceSystem     string
}

// JobRejector moves a coding job to REJECTED when status polling reveals
// that the payer bounced its claim. Implemented by the coding service; an
// interface here because the two services are wired to each other after
// construction.
type JobRejector interface {
	MarkRejected(ctx context.Context, id uuid.UUID, reason string) error
}

// Service turns finished coding jobs into claims and tracks them through
// adjudication. It implements coding.ClaimSubmitter.
type Service struct {
	repo      Repository
	connector Connector
	cfg       Config
	rejector  JobRejector
	trail     *audit.Trail
	log       zerolog.Logger
}

func NewService(repo Repository, connector Connector, cfg Config, trail *audit.Trail, log zerolog.Logger) *Service {
	if cfg.BaseRate <= 0 {
		cfg.BaseRate = 1000
	}
	if cfg.SourceSystem == "" {
		cfg.SourceSystem = "rcm"
	}
	return &Service{repo: repo, connector: connector, cfg: cfg, trail: trail, log: log}
}

// SetJobRejector attaches the coding-side rejection hook. Counterpart of
// coding.Service.SetSubmitter in the two-step wiring.
func (s *Service) SetJobRejector(r JobRejector) { s.rejector = r }

// Submit drops the claim for a coding job at the clearinghouse. Idempotent
// per job: if a claim for this job was already billed, Submit is a no-op;
// otherwise the existing draft is reused and its attempt counter bumped,
// so retries never create a second claim.
func (s *Service) Submit(ctx context.Context, job *coding.CodingJob) error {
	claim, err := s.repo.GetByJobID(ctx, job.ID)
	switch {
	case err == nil:
		if claim.Billed() {
			s.log.Debug().Str("claim_id", claim.ID.String()).Msg("claim already billed, skipping submission")
			return nil
		}
	case errors.Is(err, ErrClaimNotFound):
		claim = s.draftFrom(job)
		if err := s.repo.Create(ctx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}
	default:
		return fmt.Errorf("load claim for job %s: %w", job.ID, err)
	}

	claim.SubmitAttempts++

	result, err := s.connector.SubmitClaim(ctx, s.payloadFrom(job, claim))
	if err != nil {
		return s.recordOutcome(ctx, claim, err)
	}

	now := time.Now().UTC()
	claim.Status = StatusSent
	claim.ClearinghouseID = result.ClearinghouseID
	claim.SubmittedAt = &now
	if err := s.repo.Update(ctx, claim); err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	s.trail.Emit(ctx, "clearinghouse", "submit", "Claim", claim.ID.String(), claim.ClaimNumber)
	return nil
}

// recordOutcome persists the failure on the claim and translates it for
// the coding state machine: rejections become coding.RejectionError,
// everything else is returned as-is so the job stays retryable.
func (s *Service) recordOutcome(ctx context.Context, claim *Claim, err error) error {
	var rej *clearinghouse.RejectionError
	var val *clearinghouse.ValidationErrors

	switch {
	case errors.As(err, &rej):
		claim.Status = StatusRejected
		claim.RejectionCode = rej.Code
		claim.RejectionReason = rej.Message
		if uerr := s.repo.Update(ctx, claim); uerr != nil {
			s.log.Error().Err(uerr).Str("claim_id", claim.ID.String()).Msg("failed to persist claim rejection")
		}
		s.trail.Emit(ctx, "clearinghouse", "reject", "Claim", claim.ID.String(), rej.Message)
		return &coding.RejectionError{Code: rej.Code, Message: rej.Message}

	case errors.As(err, &val):
		claim.Status = StatusNeedsReview
		claim.RejectionReason = strings.Join(val.Problems, "; ")
		if uerr := s.repo.Update(ctx, claim); uerr != nil {
			s.log.Error().Err(uerr).Str("claim_id", claim.ID.String()).Msg("failed to persist claim validation failure")
		}
		return &coding.RejectionError{Code: "INVALID_PAYLOAD", Message: claim.RejectionReason}

	default:
		// Transient: leave the claim in DRAFT with the attempt recorded.
		if uerr := s.repo.Update(ctx, claim); uerr != nil {
			s.log.Error().Err(uerr).Str("claim_id", claim.ID.String()).Msg("failed to persist submission attempt")
		}
		return err
	}
}

func (s *Service) draftFrom(job *coding.CodingJob) *Claim {
	return &Claim{
		ID:          uuid.New(),
		JobID:       job.ID,
		EncounterID: job.EncounterID,
		ClaimNumber: claimNumber(job.ID),
		Status:      StatusDraft,
		Amount:      round2(job.Grouping.RelativeWeight() * s.cfg.BaseRate),
		Currency:    "SAR",
	}
}

// claimNumber derives a stable claim number from the job id, so retries
// of the same job always present the same number to the payer.
func claimNumber(jobID uuid.UUID) string {
	return "CLM-" + strings.ToUpper(strings.ReplaceAll(jobID.String(), "-", "")[:12])
}

func (s *Service) payloadFrom(job *coding.CodingJob, claim *Claim) *clearinghouse.ClaimPayload {
	principal, secondary := job.PrincipalDiagnosis()

	items := []clearinghouse.ClaimItem{
		{ServiceCode: principal.Code, Description: principal.Description, Amount: claim.Amount},
	}
	for _, c := range secondary {
		items = append(items, clearinghouse.ClaimItem{ServiceCode: c.Code, Description: c.Description})
	}
	if p := job.Meta.PrimaryProcedure; p != "" {
		items = append(items, clearinghouse.ClaimItem{ServiceCode: p, Description: "primary procedure"})
	}

	patientID := job.Meta.PatientID
	if patientID == "" {
		patientID = job.EncounterID
	}

	return &clearinghouse.ClaimPayload{
		ClaimNumber: claim.ClaimNumber,
		Patient: clearinghouse.Patient{
			ID:         patientID,
			NationalID: job.Meta.PatientNationalID,
			IqamaID:    job.Meta.PatientIqamaID,
		},
		Provider:     clearinghouse.Provider{CRNumber: s.cfg.ProviderCRNumber},
		Items:        items,
		Total:        claim.Amount,
		Currency:     claim.Currency,
		SourceSystem: s.cfg.SourceSystem,
	}
}

// PollStatus asks the clearinghouse for the adjudication state of a sent
// claim and folds the answer into the stored row.
func (s *Service) PollStatus(ctx context.Context, id uuid.UUID) (*Claim, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.ClearinghouseID == "" {
		return nil, fmt.Errorf("claim %s has not been submitted", id)
	}

	status, err := s.connector.ClaimStatus(ctx, claim.ClearinghouseID)
	if err != nil {
		return nil, err
	}

	rejected := false
	switch strings.ToLower(status.Status) {
	case "paid", "approved":
		claim.Status = StatusApproved
		claim.PaidAmount = status.PaidAmount
		claim.PaidAt = status.PaymentDate
	case "rejected", "denied":
		rejected = claim.Status != StatusRejected
		claim.Status = StatusRejected
		claim.RejectionReason = status.Reason
	case "pending", "in_review":
		// no change
	default:
		s.log.Warn().Str("status", status.Status).Str("claim_id", id.String()).Msg("unrecognized clearinghouse status")
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		return nil, fmt.Errorf("update claim: %w", err)
	}
	s.trail.Emit(ctx, "clearinghouse", "status", "Claim", claim.ID.String(), string(claim.Status))

	// A rejection found by polling must reach the coding job too, or it
	// stays parked in SENT_TO_CLEARINGHOUSE with no transition left.
	if rejected && s.rejector != nil {
		if err := s.rejector.MarkRejected(ctx, claim.JobID, claim.RejectionReason); err != nil {
			s.log.Error().Err(err).Str("job_id", claim.JobID.String()).Msg("failed to propagate rejection to coding job")
		}
	}
	return claim, nil
}

// Reconcile reports a received remittance and marks the claim paid when
// the clearinghouse confirms the match.
func (s *Service) Reconcile(ctx context.Context, id uuid.UUID, paymentRef string, amount float64, date time.Time) (*Claim, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim.ClearinghouseID == "" {
		return nil, fmt.Errorf("claim %s has not been submitted", id)
	}

	result, err := s.connector.ReconcilePayment(ctx, &clearinghouse.PaymentReconciliation{
		ClaimID:     claim.ClearinghouseID,
		PaymentRef:  paymentRef,
		PaidAmount:  amount,
		PaymentDate: date,
	})
	if err != nil {
		return nil, err
	}

	if result.Matched {
		claim.Status = StatusApproved
		claim.PaidAmount = amount
		claim.PaidAt = &date
		if err := s.repo.Update(ctx, claim); err != nil {
			return nil, fmt.Errorf("update claim: %w", err)
		}
		s.trail.Emit(ctx, "clearinghouse", "reconcile", "Claim", claim.ID.String(), paymentRef)
	}
	return claim, nil
}

// PreAuth requests payer pre-authorization for planned services.
func (s *Service) PreAuth(ctx context.Context, req *clearinghouse.PreAuthRequest) (*clearinghouse.PreAuthResult, error) {
	return s.connector.RequestPreAuth(ctx, req)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByJobID returns the claim derived from a coding job, if any.
func (s *Service) GetByJobID(ctx context.Context, jobID uuid.UUID) (*Claim, error) {
	return s.repo.GetByJobID(ctx, jobID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Claim, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
