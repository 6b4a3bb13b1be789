package clearinghouse

import (
	"regexp"
	"strconv"
	"time"
)

// ClaimPayload is the wire shape of a claim submission.
type ClaimPayload struct {
	ClaimNumber         string      `json:"claimNumber"`
	Patient             Patient     `json:"patient"`
	Provider            Provider    `json:"provider"`
	Items               []ClaimItem `json:"items"`
	Total               float64     `json:"total"`
	Currency            string      `json:"currency"`
	SubmissionTimestamp time.Time   `json:"submissionTimestamp"`
	SourceSystem        string      `json:"sourceSystem,omitempty"`
}

// Patient identifies the claim subject. Either NationalID or IqamaID must
// be present and checksum-valid.
type Patient struct {
	ID         string `json:"id"`
	NationalID string `json:"nationalId,omitempty"`
	IqamaID    string `json:"iqamaId,omitempty"`
	IDType     string `json:"idType,omitempty"`
}

// Provider identifies the submitting facility.
type Provider struct {
	CRNumber   string `json:"cr_number"`
	ProviderID string `json:"provider_id,omitempty"`
}

// ClaimItem is one billed service line.
type ClaimItem struct {
	ServiceCode string  `json:"serviceCode"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount,omitempty"`
}

// SubmissionResult is the clearinghouse response to a claim drop.
type SubmissionResult struct {
	Status            string `json:"status"`
	ClearinghouseID   string `json:"clearinghouseClaimId"`
	AdjudicationNotes string `json:"adjudicationNotes,omitempty"`
}

// StatusResult is the response to a claim status poll.
type StatusResult struct {
	ClaimID     string     `json:"claimId"`
	Status      string     `json:"status"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
	PaidAmount  float64    `json:"paidAmount,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// PreAuthRequest asks the payer for advance approval of planned services.
type PreAuthRequest struct {
	EncounterID string      `json:"encounterId"`
	Patient     Patient     `json:"patient"`
	Items       []ClaimItem `json:"items"`
}

// PreAuthResult is the payer's pre-authorization decision.
type PreAuthResult struct {
	AuthorizationID string `json:"authorizationId"`
	Approved        bool   `json:"approved"`
	Reason          string `json:"reason,omitempty"`
}

// PaymentReconciliation matches a remittance against a submitted claim.
type PaymentReconciliation struct {
	ClaimID     string    `json:"claimId"`
	PaymentRef  string    `json:"paymentRef"`
	PaidAmount  float64   `json:"paidAmount"`
	PaymentDate time.Time `json:"paymentDate"`
}

// ReconcileResult is the clearinghouse acknowledgement of a reconciliation.
type ReconcileResult struct {
	ClaimID string  `json:"claimId"`
	Matched bool    `json:"matched"`
	Balance float64 `json:"balance"`
}

var crNumberPattern = regexp.MustCompile(`^\d{10}$`)

// ValidatePayload checks a claim against the clearinghouse schema rules
// before submission. Returns every problem found, not just the first.
func ValidatePayload(p *ClaimPayload) []string {
	var problems []string

	if p.ClaimNumber == "" {
		problems = append(problems, "claimNumber is required")
	}
	if p.Patient.ID == "" {
		problems = append(problems, "patient id is required")
	}
	if p.Patient.NationalID == "" && p.Patient.IqamaID == "" {
		problems = append(problems, "either national id or iqama id is required")
	}
	if p.Patient.NationalID != "" && !ValidNationalID(p.Patient.NationalID) {
		problems = append(problems, "invalid national id: "+p.Patient.NationalID)
	}
	if p.Patient.IqamaID != "" && !ValidIqamaID(p.Patient.IqamaID) {
		problems = append(problems, "invalid iqama id: "+p.Patient.IqamaID)
	}
	if !crNumberPattern.MatchString(p.Provider.CRNumber) {
		problems = append(problems, "provider cr_number must be 10 digits")
	}
	if len(p.Items) == 0 {
		problems = append(problems, "items must be a non-empty list")
	}
	for i, item := range p.Items {
		if item.ServiceCode == "" {
			problems = append(problems, "item "+strconv.Itoa(i)+": serviceCode is required")
		}
	}
	if p.Total <= 0 {
		problems = append(problems, "total amount must be positive")
	}
	if p.Currency != "SAR" {
		problems = append(problems, "currency must be SAR")
	}
	return problems
}

// ValidNationalID checks a Saudi national id: 10 digits, leading 1, and a
// passing checksum.
func ValidNationalID(id string) bool {
	return len(id) == 10 && id[0] == '1' && digitsOnly(id) && checksumOK(id)
}

// ValidIqamaID checks a residency id: 10 digits, leading 2, and a passing
// checksum.
func ValidIqamaID(id string) bool {
	return len(id) == 10 && id[0] == '2' && digitsOnly(id) && checksumOK(id)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func checksumOK(id string) bool {
	sum := 0
	for _, r := range id {
		sum += int(r - '0')
	}
	return sum%10 == 0
}
