package claims

import (
	"time"

	"github.com/google/uuid"
)

// ClaimStatus is the billing lifecycle state of a claim.
type ClaimStatus string

const (
	StatusDraft       ClaimStatus = "DRAFT"
	StatusSent        ClaimStatus = "SENT"
	StatusApproved    ClaimStatus = "APPROVED"
	StatusRejected    ClaimStatus = "REJECTED"
	StatusNeedsReview ClaimStatus = "NEEDS_REVIEW"
)

// Claim is one billable submission derived from a coding job. At most one
// claim exists per job; resubmission attempts reuse the existing row and
// bump SubmitAttempts.
type Claim struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	JobID           uuid.UUID   `db:"job_id" json:"job_id"`
	EncounterID     string      `db:"encounter_id" json:"encounter_id"`
	ClaimNumber     string      `db:"claim_number" json:"claim_number"`
	ClearinghouseID string      `db:"clearinghouse_id" json:"clearinghouse_id,omitempty"`
	Status          ClaimStatus `db:"status" json:"status"`
	Amount          float64     `db:"amount" json:"amount"`
	Currency        string      `db:"currency" json:"currency"`
	SubmitAttempts  int         `db:"submit_attempts" json:"submit_attempts"`
	SubmittedAt     *time.Time  `db:"submitted_at" json:"submitted_at,omitempty"`
	PaidAt          *time.Time  `db:"paid_at" json:"paid_at,omitempty"`
	PaidAmount      float64     `db:"paid_amount" json:"paid_amount,omitempty"`
	RejectionCode   string      `db:"rejection_code" json:"rejection_code,omitempty"`
	RejectionReason string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// Billed reports whether the claim has reached the clearinghouse and must
// not be submitted again.
func (c *Claim) Billed() bool {
	return c.Status == StatusSent || c.Status == StatusApproved
}
