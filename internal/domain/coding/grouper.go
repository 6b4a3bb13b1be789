package coding

import (
	"math"
	"strconv"

	"github.com/brainsait/rcm/internal/platform/refdata"
)

// Length-of-stay multiplier per severity-of-illness subclass. Fixed by the
// grouping methodology, not part of the swappable dataset.
var soiLOSMultiplier = map[int]float64{1: 0.7, 2: 1.0, 3: 1.4, 4: 2.0}

const defaultBaseLOS = 3.0

// Grouper assigns reimbursement groups to coded encounters. All methods
// are total: unknown codes resolve to the dataset's fallback category.
type Grouper struct {
	store *refdata.Store
}

// NewGrouper builds a Grouper over the reference dataset.
func NewGrouper(store *refdata.Store) *Grouper {
	return &Grouper{store: store}
}

// Group dispatches on encounter type. Inpatient grouping needs at least
// one suggested code; the matcher guarantees that.
func (g *Grouper) Group(codes []SuggestedCode, meta EncounterMeta) *GroupingResult {
	if meta.EncounterType == EncounterInpatient {
		return &GroupingResult{Kind: GroupingInpatient, Inpatient: g.GroupInpatient(codes, meta)}
	}
	return &GroupingResult{Kind: GroupingOutpatient, Outpatient: g.GroupOutpatient(codes, meta)}
}

// GroupInpatient maps the principal diagnosis to a base group, computes the
// SOI and ROM subclasses, and derives relative weight and expected length
// of stay.
func (g *Grouper) GroupInpatient(codes []SuggestedCode, meta EncounterMeta) *InpatientResult {
	principal, secondary := principalOf(codes)
	base, _ := g.store.LookupDiagnosisGroup(principal.Code)

	majors := MajorComplicationCount(g.store, secondary)
	soi := SeverityOfIllness(meta.PatientAge, majors)
	rom := RiskOfMortality(g.store, principal.Code, meta.PatientAge, majors, meta.DischargeStatus)

	weight := base.Weights[soi-1]
	if weight <= 0 {
		weight = 1.0
	}

	baseLOS := base.BaseLOS
	if baseLOS <= 0 {
		baseLOS = defaultBaseLOS
	}
	los := baseLOS * soiLOSMultiplier[soi] * ageLOSAdjustment(meta.PatientAge)

	return &InpatientResult{
		BaseGroupCode:   base.Code,
		Description:     base.Description,
		MDC:             base.MDC,
		SOI:             soi,
		ROM:             rom,
		RelativeWeight:  weight,
		ExpectedLOSDays: round2(los),
	}
}

func ageLOSAdjustment(age int) float64 {
	switch {
	case age < 1:
		return 1.3
	case age > 75:
		return 1.2
	default:
		return 1.0
	}
}

// GroupOutpatient selects the ambulatory group by precedence (emergency,
// preventive, procedure band, office visit), adds ancillary weight, and
// flags significant procedures.
func (g *Grouper) GroupOutpatient(codes []SuggestedCode, meta EncounterMeta) *OutpatientResult {
	principal, _ := principalOf(codes)
	procCode, hasProc := numericProcedure(meta.PrimaryProcedure)

	group := g.store.OfficeVisitGroup()
	switch {
	case meta.EncounterType == EncounterEmergency:
		group = g.store.EmergencyGroup()
	case g.store.IsPreventive(principal.Code):
		group = g.store.PreventiveGroup()
	case hasProc && g.store.InProcedureBand(procCode):
		group = g.store.MinorProcedureGroup()
	}

	ancillary := float64(len(meta.AncillaryServices)) * g.store.AncillaryIncrement()

	return &OutpatientResult{
		GroupCode:            group.Code,
		Description:          group.Description,
		SignificantProcedure: hasProc && g.store.IsSignificantProcedure(procCode),
		AncillaryWeight:      ancillary,
		RelativeWeight:       round4(group.Weight + ancillary),
	}
}

func numericProcedure(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, false
	}
	return n, true
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
