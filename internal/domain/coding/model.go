package coding

import (
	"time"

	"github.com/google/uuid"
)

// EncounterType classifies the care setting of an encounter.
type EncounterType string

const (
	EncounterInpatient  EncounterType = "INPATIENT"
	EncounterOutpatient EncounterType = "OUTPATIENT"
	EncounterEmergency  EncounterType = "ED"
)

// VisitComplexityLow is the visit_complexity value that, together with a
// high enough confidence score, allows fully autonomous claim drop.
const VisitComplexityLow = "low-complexity outpatient"

// DischargeExpired is the discharge disposition of an in-hospital death.
const DischargeExpired = "expired"

// EncounterMeta carries the structured metadata ingested alongside the
// clinical note. AdmissionDate and EstimatedRevenue feed the worklist
// opportunity score.
type EncounterMeta struct {
	EncounterID       string        `json:"encounter_id"`
	EncounterType     EncounterType `json:"encounter_type"`
	PatientID         string        `json:"patient_id,omitempty"`
	PatientNationalID string        `json:"patient_national_id,omitempty"`
	PatientIqamaID    string        `json:"patient_iqama_id,omitempty"`
	PatientAge        int           `json:"patient_age"`
	VisitComplexity   string        `json:"visit_complexity"`
	DischargeStatus   string        `json:"discharge_status"`
	PrimaryProcedure  string        `json:"primary_procedure,omitempty"`
	AncillaryServices []string      `json:"ancillary_services,omitempty"`
	AdmissionDate     time.Time     `json:"admission_date"`
	EstimatedRevenue  float64       `json:"estimated_revenue"`
}

// SuggestedCode is one candidate code produced by the term matcher.
type SuggestedCode struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	CodeType    string  `json:"code_type"`
}

// Phase is the automation phase assigned at job creation.
type Phase string

const (
	PhaseCAC            Phase = "CAC"
	PhaseSemiAutonomous Phase = "SEMI_AUTONOMOUS"
	PhaseAutonomous     Phase = "AUTONOMOUS"
)

// Status is the review status of a coding job.
type Status string

const (
	StatusNeedsReview         Status = "NEEDS_REVIEW"
	StatusAutoDrop            Status = "AUTO_DROP"
	StatusSentToClearinghouse Status = "SENT_TO_CLEARINGHOUSE"
	StatusRejected            Status = "REJECTED"
)

// GroupingKind discriminates the two grouping result variants.
type GroupingKind string

const (
	GroupingInpatient  GroupingKind = "inpatient"
	GroupingOutpatient GroupingKind = "outpatient"
)

// InpatientResult is the severity-adjusted inpatient grouping outcome.
type InpatientResult struct {
	BaseGroupCode   string  `json:"base_group_code"`
	Description     string  `json:"description"`
	MDC             string  `json:"mdc"`
	SOI             int     `json:"soi"`
	ROM             int     `json:"rom"`
	RelativeWeight  float64 `json:"relative_weight"`
	ExpectedLOSDays float64 `json:"expected_los_days"`
}

// OutpatientResult is the ambulatory grouping outcome.
type OutpatientResult struct {
	GroupCode            string  `json:"group_code"`
	Description          string  `json:"description"`
	SignificantProcedure bool    `json:"significant_procedure"`
	AncillaryWeight      float64 `json:"ancillary_weight"`
	RelativeWeight       float64 `json:"relative_weight"`
}

// GroupingResult is a tagged union: exactly one of Inpatient or Outpatient
// is non-nil, indicated by Kind.
type GroupingResult struct {
	Kind       GroupingKind      `json:"kind"`
	Inpatient  *InpatientResult  `json:"inpatient,omitempty"`
	Outpatient *OutpatientResult `json:"outpatient,omitempty"`
}

// RelativeWeight returns the weight of whichever variant is set.
func (g *GroupingResult) RelativeWeight() float64 {
	switch {
	case g == nil:
		return 0
	case g.Kind == GroupingInpatient && g.Inpatient != nil:
		return g.Inpatient.RelativeWeight
	case g.Kind == GroupingOutpatient && g.Outpatient != nil:
		return g.Outpatient.RelativeWeight
	}
	return 0
}

// CodingJob is one ingested encounter moving through the automation
// pipeline. Created once per ingestion; only the state machine and the
// accept action mutate status and phase afterwards.
type CodingJob struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	EncounterID     string          `db:"encounter_id" json:"encounter_id"`
	NoteText        string          `db:"note_text" json:"note_text"`
	Meta            EncounterMeta   `db:"meta" json:"encounter_meta"`
	SuggestedCodes  []SuggestedCode `db:"suggested_codes" json:"suggested_codes"`
	ConfidenceScore float64         `db:"confidence_score" json:"confidence_score"`
	Phase           Phase           `db:"phase" json:"phase"`
	Status          Status          `db:"status" json:"status"`
	Grouping        *GroupingResult `db:"grouping_result" json:"grouping_result,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the job can no longer change state.
func (j *CodingJob) Terminal() bool {
	return j.Status == StatusRejected
}

// Open reports whether the job still belongs on a coder worklist.
func (j *CodingJob) Open() bool {
	return j.Status == StatusNeedsReview || j.Status == StatusAutoDrop
}

// PrincipalDiagnosis returns the highest-confidence suggested code; earlier
// codes win ties so the selection is stable. The remaining codes are the
// secondary set.
func (j *CodingJob) PrincipalDiagnosis() (SuggestedCode, []SuggestedCode) {
	return principalOf(j.SuggestedCodes)
}

func principalOf(codes []SuggestedCode) (SuggestedCode, []SuggestedCode) {
	if len(codes) == 0 {
		return SuggestedCode{}, nil
	}
	best := 0
	for i, c := range codes {
		if c.Confidence > codes[best].Confidence {
			best = i
		}
	}
	secondary := make([]SuggestedCode, 0, len(codes)-1)
	for i, c := range codes {
		if i != best {
			secondary = append(secondary, c)
		}
	}
	return codes[best], secondary
}
