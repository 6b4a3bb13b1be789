package coding

import "github.com/brainsait/rcm/internal/platform/refdata"

// Severity subclass bounds for both SOI and ROM.
const (
	severityMin = 1
	severityMax = 4
)

// MajorComplicationCount counts secondary diagnoses whose prefix is in the
// major complication/comorbidity set. Each distinct diagnosis code counts
// once even when several share a prefix.
func MajorComplicationCount(store *refdata.Store, secondary []SuggestedCode) int {
	seen := make(map[string]struct{}, len(secondary))
	n := 0
	for _, c := range secondary {
		if _, dup := seen[c.Code]; dup {
			continue
		}
		seen[c.Code] = struct{}{}
		if store.IsMajorComplication(c.Code) {
			n++
		}
	}
	return n
}

// SeverityOfIllness computes the SOI subclass from patient age and the
// major-complication count. Total and deterministic; always in [1,4].
func SeverityOfIllness(age, majorComplications int) int {
	soi := severityMin
	if age < 1 || age > 75 {
		soi++
	}
	switch {
	case majorComplications >= 3:
		soi += 2
	case majorComplications >= 1:
		soi++
	}
	return clampSeverity(soi)
}

// RiskOfMortality computes the ROM subclass. A discharge disposition of
// "expired" overrides everything to 4.
func RiskOfMortality(store *refdata.Store, principal string, age, majorComplications int, dischargeStatus string) int {
	if dischargeStatus == DischargeExpired {
		return severityMax
	}
	rom := severityMin
	if store.IsLifeThreatening(principal) {
		rom++
	}
	if age < 1 || age > 80 {
		rom++
	}
	if majorComplications >= 2 {
		rom++
	}
	return clampSeverity(rom)
}

func clampSeverity(v int) int {
	if v < severityMin {
		return severityMin
	}
	if v > severityMax {
		return severityMax
	}
	return v
}
