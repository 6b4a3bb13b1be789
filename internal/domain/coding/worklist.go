package coding

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// WorklistItem is one scored entry in the manual review queue.
type WorklistItem struct {
	JobID            uuid.UUID `json:"job_id"`
	EncounterID      string    `json:"encounter_id"`
	OpportunityScore float64   `json:"opportunity_score"`
	Status           Status    `json:"status"`
	Phase            Phase     `json:"phase"`
}

// OpportunityScore ranks a job by remediation value on a 0..100 scale.
// Weighted blend: low confidence (30), coding volume (40), revenue at
// stake (20), and case age with logarithmic damping (10). Recomputed on
// every fetch; the inputs drift as encounters accrue charges.
func OpportunityScore(job *CodingJob, now time.Time) float64 {
	confidence := 30 * (1 - job.ConfidenceScore)

	volume := 40 * math.Min(float64(len(job.SuggestedCodes))/5, 1)

	revenue := 20 * math.Min(job.Meta.EstimatedRevenue/100000, 1)

	days := now.Sub(job.Meta.AdmissionDate).Hours() / 24
	if days < 0 {
		days = 0
	}
	age := 10 * math.Min(math.Log10(days+1)/math.Log10(31), 1)

	return confidence + volume + revenue + age
}

// BuildWorklist scores the open jobs and returns them in stable descending
// score order; ties go to the earlier admission.
func BuildWorklist(jobs []*CodingJob, now time.Time) []WorklistItem {
	type scored struct {
		item      WorklistItem
		admission time.Time
	}
	var rows []scored
	for _, j := range jobs {
		if !j.Open() {
			continue
		}
		rows = append(rows, scored{
			item: WorklistItem{
				JobID:            j.ID,
				EncounterID:      j.EncounterID,
				OpportunityScore: OpportunityScore(j, now),
				Status:           j.Status,
				Phase:            j.Phase,
			},
			admission: j.Meta.AdmissionDate,
		})
	}

	sort.SliceStable(rows, func(i, k int) bool {
		if rows[i].item.OpportunityScore != rows[k].item.OpportunityScore {
			return rows[i].item.OpportunityScore > rows[k].item.OpportunityScore
		}
		return rows[i].admission.Before(rows[k].admission)
	})

	items := make([]WorklistItem, len(rows))
	for i, r := range rows {
		items[i] = r.item
	}
	return items
}
