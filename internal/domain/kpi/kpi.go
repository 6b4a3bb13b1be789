// Package kpi derives revenue-cycle summary metrics from the stored job
// and claim collections. All aggregation functions are total: empty input
// yields 0, never an error.
package kpi

import (
	"time"

	"github.com/brainsait/rcm/internal/domain/claims"
	"github.com/brainsait/rcm/internal/domain/coding"
)

// DefaultDNFBThreshold is how long a discharged encounter may sit without
// a billed claim before it counts against the DNFB rate.
const DefaultDNFBThreshold = 48 * time.Hour

// Metrics is one KPI report. Derived per request, never persisted.
type Metrics struct {
	ARDays         float64   `json:"ar_days"`
	DNFBRate       float64   `json:"dnfb_rate"`
	CleanClaimRate float64   `json:"clean_claim_rate"`
	CaseMixIndex   float64   `json:"case_mix_index"`
	AutomationRate float64   `json:"automation_rate"`
	JobCount       int       `json:"job_count"`
	ClaimCount     int       `json:"claim_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ARDays is the mean number of days from submission to payment over
// approved claims that carry both timestamps.
func ARDays(rows []*claims.Claim) float64 {
	var sum float64
	var n int
	for _, c := range rows {
		if c.Status != claims.StatusApproved || c.SubmittedAt == nil || c.PaidAt == nil {
			continue
		}
		sum += c.PaidAt.Sub(*c.SubmittedAt).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// DNFBRate is the share of jobs discharged longer ago than threshold that
// still have no billed claim (discharged-not-final-billed).
func DNFBRate(jobs []*coding.CodingJob, threshold time.Duration, now time.Time) float64 {
	if len(jobs) == 0 {
		return 0
	}
	if threshold <= 0 {
		threshold = DefaultDNFBThreshold
	}
	stale := 0
	for _, j := range jobs {
		if j.Open() && now.Sub(j.CreatedAt) > threshold {
			stale++
		}
	}
	return float64(stale) / float64(len(jobs))
}

// CleanClaimRate is the share of claims approved on the first submission
// attempt.
func CleanClaimRate(rows []*claims.Claim) float64 {
	if len(rows) == 0 {
		return 0
	}
	clean := 0
	for _, c := range rows {
		if c.Status == claims.StatusApproved && c.SubmitAttempts == 1 {
			clean++
		}
	}
	return float64(clean) / float64(len(rows))
}

// CaseMixIndex is the mean relative weight over inpatient grouping
// results. Jobs without an inpatient result are excluded from both
// numerator and denominator.
func CaseMixIndex(jobs []*coding.CodingJob) float64 {
	var sum float64
	var n int
	for _, j := range jobs {
		g := j.Grouping
		if g == nil || g.Kind != coding.GroupingInpatient || g.Inpatient == nil {
			continue
		}
		sum += g.Inpatient.RelativeWeight
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// AutomationRate is the share of jobs the pipeline handled beyond plain
// computer-assisted coding.
func AutomationRate(jobs []*coding.CodingJob) float64 {
	if len(jobs) == 0 {
		return 0
	}
	automated := 0
	for _, j := range jobs {
		if j.Phase == coding.PhaseSemiAutonomous || j.Phase == coding.PhaseAutonomous {
			automated++
		}
	}
	return float64(automated) / float64(len(jobs))
}
