package coding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brainsait/rcm/internal/platform/audit"
)

const maxPatientAge = 130

// ClaimSubmitter drops a finished coding job's claim at the clearinghouse.
// Implemented by the claims service; an interface here keeps the claims
// package depending on coding and not the other way round.
type ClaimSubmitter interface {
	Submit(ctx context.Context, job *CodingJob) error
}

// RejectionError marks a business (4xx) rejection by the clearinghouse.
// Submitters return it to move the job to REJECTED instead of leaving it
// retryable.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return "claim rejected: " + e.Message
}

// Service runs the three-phase automation state machine: it ingests notes,
// assigns phase and status once at creation, and applies the accept and
// resubmit actions afterwards.
type Service struct {
	jobs      JobRepository
	matcher   *Matcher
	grouper   *Grouper
	submitter ClaimSubmitter
	trail     *audit.Trail
	log       zerolog.Logger
}

// NewService wires the pipeline. submitter may be nil when no
// clearinghouse is configured; autonomous jobs then stay retryable.
func NewService(jobs JobRepository, matcher *Matcher, grouper *Grouper, submitter ClaimSubmitter, trail *audit.Trail, log zerolog.Logger) *Service {
	return &Service{jobs: jobs, matcher: matcher, grouper: grouper, submitter: submitter, trail: trail, log: log}
}

// SetSubmitter attaches the claim submitter after construction. The claims
// service needs the coding service to propagate rejections, so the two are
// wired in two steps.
func (s *Service) SetSubmitter(sub ClaimSubmitter) { s.submitter = sub }

func validateIngest(note string, meta *EncounterMeta) error {
	if strings.TrimSpace(note) == "" {
		return &ValidationError{Field: "clinical_note", Reason: "must not be empty"}
	}
	if meta.PatientAge < 0 || meta.PatientAge > maxPatientAge {
		return &ValidationError{Field: "patient_age", Reason: "must be between 0 and 130"}
	}
	switch meta.EncounterType {
	case EncounterInpatient, EncounterOutpatient, EncounterEmergency:
	case "":
		meta.EncounterType = EncounterOutpatient
	default:
		return &ValidationError{Field: "encounter_type", Reason: "unknown value " + string(meta.EncounterType)}
	}
	if meta.EstimatedRevenue < 0 {
		return &ValidationError{Field: "estimated_revenue", Reason: "must not be negative"}
	}
	if meta.EncounterID == "" {
		meta.EncounterID = uuid.NewString()
	}
	if meta.AdmissionDate.IsZero() {
		meta.AdmissionDate = time.Now().UTC()
	}
	return nil
}

// decide evaluates the transition rule exactly once, at job creation.
func decide(confidence float64, meta EncounterMeta) (Phase, Status) {
	switch {
	case confidence > 0.98 && meta.VisitComplexity == VisitComplexityLow:
		return PhaseAutonomous, StatusSentToClearinghouse
	case confidence > 0.90:
		return PhaseSemiAutonomous, StatusAutoDrop
	default:
		return PhaseCAC, StatusNeedsReview
	}
}

// Ingest runs the full pipeline for one clinical note: suggestion,
// grouping, phase assignment, and, for autonomous jobs, an immediate claim
// drop. A failed drop leaves the job in its pre-submission state with a
// manual retry available.
func (s *Service) Ingest(ctx context.Context, note string, meta EncounterMeta) (*CodingJob, error) {
	if err := validateIngest(note, &meta); err != nil {
		return nil, err
	}

	codes := s.matcher.Suggest(note)
	confidence := MeanConfidence(codes)
	phase, status := decide(confidence, meta)

	job := &CodingJob{
		ID:              uuid.New(),
		EncounterID:     meta.EncounterID,
		NoteText:        note,
		Meta:            meta,
		SuggestedCodes:  codes,
		ConfidenceScore: confidence,
		Phase:           phase,
		Status:          status,
		Grouping:        s.grouper.Group(codes, meta),
		CreatedAt:       time.Now().UTC(),
	}

	// Autonomous jobs are persisted before the network call so a failed
	// drop cannot lose the job; the status only advances on success.
	autonomous := status == StatusSentToClearinghouse
	if autonomous {
		job.Status = StatusNeedsReview
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	s.trail.Emit(ctx, "pipeline", "ingest", "CodingJob", job.ID.String(), string(job.Phase))

	if autonomous {
		if err := s.submit(ctx, job, "pipeline"); err != nil {
			s.log.Warn().Err(err).
				Str("job_id", job.ID.String()).
				Msg("autonomous claim drop failed, job left retryable")
		}
	}
	return job, nil
}

// submit performs one claim drop and applies the resulting transition.
// Transient failures leave the job unchanged; business rejections move it
// to REJECTED.
func (s *Service) submit(ctx context.Context, job *CodingJob, actor string) error {
	if s.submitter == nil {
		return ErrNoSubmitter
	}
	if err := s.submitter.Submit(ctx, job); err != nil {
		var rej *RejectionError
		if errors.As(err, &rej) {
			job.Status = StatusRejected
			if uerr := s.jobs.Update(ctx, job); uerr != nil {
				return uerr
			}
			s.trail.Emit(ctx, actor, "reject", "CodingJob", job.ID.String(), rej.Message)
		}
		return err
	}
	job.Status = StatusSentToClearinghouse
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	s.trail.Emit(ctx, actor, "submit", "CodingJob", job.ID.String(), "")
	return nil
}

// Accept applies the manual accept action: NEEDS_REVIEW becomes AUTO_DROP,
// with no recomputation of codes or confidence.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, actor string) (*CodingJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Terminal() {
		return nil, ErrJobTerminal
	}
	if job.Status != StatusNeedsReview {
		return nil, ErrNotAwaitingReview
	}
	job.Status = StatusAutoDrop
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	s.trail.Emit(ctx, actor, "accept", "CodingJob", job.ID.String(), "")
	return job, nil
}

// Resubmit retries the claim drop for a job whose earlier submission
// failed. Jobs already sent are refused: the same claim id must never
// produce a second claim.
func (s *Service) Resubmit(ctx context.Context, id uuid.UUID, actor string) (*CodingJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Terminal() {
		return nil, ErrJobTerminal
	}
	if job.Status == StatusSentToClearinghouse {
		return nil, ErrAlreadySubmitted
	}
	if err := s.submit(ctx, job, actor); err != nil {
		return job, err
	}
	return job, nil
}

// MarkRejected moves a job to REJECTED after a clearinghouse rejection
// discovered out of band (status polling).
func (s *Service) MarkRejected(ctx context.Context, id uuid.UUID, reason string) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == StatusRejected {
		return nil
	}
	job.Status = StatusRejected
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	s.trail.Emit(ctx, "clearinghouse", "reject", "CodingJob", job.ID.String(), reason)
	return nil
}

// Get returns one job by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CodingJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// List returns a page of jobs with the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*CodingJob, int, error) {
	return s.jobs.List(ctx, limit, offset)
}

// Worklist scores the open jobs for manual review, highest opportunity
// first.
func (s *Service) Worklist(ctx context.Context) ([]WorklistItem, error) {
	open, err := s.jobs.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return BuildWorklist(open, time.Now().UTC()), nil
}
