// Package refdata holds the reference tables the coding and grouping
// pipeline runs against: the clinical term synonym table, the inpatient
// base-group prefix map with per-severity weights, the complication and
// risk prefix sets, and the ambulatory group definitions.
//
// A Store is loaded once at startup and is read-only afterwards, so it is
// safe for unlimited concurrent readers. Production grouping tables are a
// deployment artifact: the built-in tables are demonstration data and any
// of them can be replaced by pointing REF_DATA_PATH at a JSON file.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// CodeType distinguishes diagnosis codes from procedure codes in the
// synonym table.
type CodeType string

const (
	CodeTypeDiagnosis CodeType = "diagnosis"
	CodeTypeProcedure CodeType = "procedure"
)

// SynonymEntry maps a set of free-text clinical terms to one billable code.
type SynonymEntry struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	CodeType    CodeType `json:"code_type"`
	Synonyms    []string `json:"synonyms"`
}

// BaseGroup is one severity-adjusted inpatient group. Weights holds the
// relative weight per severity-of-illness subclass 1..4.
type BaseGroup struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	MDC         string     `json:"mdc"`
	Weights     [4]float64 `json:"weights"`
	BaseLOS     float64    `json:"base_los_days"`
}

// AmbulatoryGroup is one outpatient visit group with its base weight.
type AmbulatoryGroup struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// CodeRange is an inclusive numeric procedure-code range.
type CodeRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Contains reports whether n falls inside the range.
func (r CodeRange) Contains(n int) bool { return n >= r.Low && n <= r.High }

// Dataset is the full versioned table set. It is plain data so an entire
// replacement can be shipped as JSON without code changes.
type Dataset struct {
	Version string `json:"version"`

	Synonyms []SynonymEntry `json:"synonyms"`

	// FallbackCode is emitted when no synonym matches a note.
	FallbackCode SynonymEntry `json:"fallback_code"`

	// DiagnosisGroups maps a 3-character diagnosis prefix to its base group.
	DiagnosisGroups map[string]BaseGroup `json:"diagnosis_groups"`
	FallbackGroup   BaseGroup            `json:"fallback_group"`

	// MajorComplicationPrefixes mark secondary diagnoses that count toward
	// the severity bonus; LifeThreateningPrefixes mark principal diagnoses
	// that raise risk of mortality.
	MajorComplicationPrefixes []string `json:"major_complication_prefixes"`
	LifeThreateningPrefixes   []string `json:"life_threatening_prefixes"`

	EmergencyGroup      AmbulatoryGroup `json:"emergency_group"`
	PreventiveGroup     AmbulatoryGroup `json:"preventive_group"`
	MinorProcedureGroup AmbulatoryGroup `json:"minor_procedure_group"`
	OfficeVisitGroup    AmbulatoryGroup `json:"office_visit_group"`

	PreventivePrefixes []string `json:"preventive_prefixes"`

	// ProcedureBands select the minor-procedure ambulatory group;
	// SignificantProcedureRanges drive the significant-procedure flag.
	ProcedureBands             []CodeRange `json:"procedure_bands"`
	SignificantProcedureRanges []CodeRange `json:"significant_procedure_ranges"`

	// AncillaryIncrement is the weight added per ancillary service.
	AncillaryIncrement float64 `json:"ancillary_increment"`
}

// Store wraps an immutable Dataset with prefix sets prepared for lookup and
// a counter for fallback-group usage. Unknown codes are not errors, but how
// often the fallback fires is worth watching.
type Store struct {
	ds        Dataset
	majorSet  map[string]struct{}
	lethalSet map[string]struct{}
	log       zerolog.Logger

	fallbacks atomic.Int64
}

// New builds a Store from a Dataset.
func New(ds Dataset, log zerolog.Logger) (*Store, error) {
	if len(ds.Synonyms) == 0 {
		return nil, fmt.Errorf("refdata: dataset %q has no synonym entries", ds.Version)
	}
	if ds.FallbackCode.Code == "" {
		return nil, fmt.Errorf("refdata: dataset %q has no fallback code", ds.Version)
	}
	if ds.FallbackGroup.Code == "" {
		return nil, fmt.Errorf("refdata: dataset %q has no fallback group", ds.Version)
	}
	s := &Store{
		ds:        ds,
		majorSet:  prefixSet(ds.MajorComplicationPrefixes),
		lethalSet: prefixSet(ds.LifeThreateningPrefixes),
		log:       log,
	}
	return s, nil
}

// Load reads a Dataset from a JSON file, or returns the built-in tables
// when path is empty.
func Load(path string, log zerolog.Logger) (*Store, error) {
	if path == "" {
		return New(defaultDataset(), log)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: read %s: %w", path, err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("refdata: parse %s: %w", path, err)
	}
	log.Info().Str("path", path).Str("version", ds.Version).Msg("reference dataset loaded")
	return New(ds, log)
}

func prefixSet(prefixes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		set[strings.ToUpper(p)] = struct{}{}
	}
	return set
}

// Version returns the dataset version string.
func (s *Store) Version() string { return s.ds.Version }

// Synonyms returns the synonym table.
func (s *Store) Synonyms() []SynonymEntry { return s.ds.Synonyms }

// FallbackCode returns the entry emitted when nothing in a note matches.
func (s *Store) FallbackCode() SynonymEntry { return s.ds.FallbackCode }

// Prefix normalizes a diagnosis code to its 3-character grouping prefix.
func Prefix(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) > 3 {
		c = c[:3]
	}
	return c
}

// LookupDiagnosisGroup resolves a principal diagnosis to its base group.
// Unknown prefixes resolve to the fallback group; the second return value
// reports whether the fallback was used.
func (s *Store) LookupDiagnosisGroup(code string) (BaseGroup, bool) {
	if g, ok := s.ds.DiagnosisGroups[Prefix(code)]; ok {
		return g, false
	}
	n := s.fallbacks.Add(1)
	s.log.Debug().Str("code", code).Int64("fallback_uses", n).Msg("diagnosis not in grouping table, using fallback group")
	return s.ds.FallbackGroup, true
}

// FallbackUses returns how many times grouping fell back to the default
// category since load.
func (s *Store) FallbackUses() int64 { return s.fallbacks.Load() }

// IsMajorComplication reports whether a secondary diagnosis counts as a
// major complication or comorbidity.
func (s *Store) IsMajorComplication(code string) bool {
	_, ok := s.majorSet[Prefix(code)]
	return ok
}

// IsLifeThreatening reports whether a principal diagnosis prefix is in the
// life-threatening set.
func (s *Store) IsLifeThreatening(code string) bool {
	_, ok := s.lethalSet[Prefix(code)]
	return ok
}

// IsPreventive reports whether a diagnosis selects the preventive
// ambulatory group.
func (s *Store) IsPreventive(code string) bool {
	p := Prefix(code)
	for _, pre := range s.ds.PreventivePrefixes {
		if strings.EqualFold(p, pre) {
			return true
		}
	}
	return false
}

// InProcedureBand reports whether a numeric procedure code selects the
// minor-procedure ambulatory group.
func (s *Store) InProcedureBand(code int) bool {
	for _, b := range s.ds.ProcedureBands {
		if b.Contains(code) {
			return true
		}
	}
	return false
}

// IsSignificantProcedure reports whether a numeric procedure code falls in
// a significant range.
func (s *Store) IsSignificantProcedure(code int) bool {
	for _, r := range s.ds.SignificantProcedureRanges {
		if r.Contains(code) {
			return true
		}
	}
	return false
}

// EmergencyGroup returns the ED ambulatory group.
func (s *Store) EmergencyGroup() AmbulatoryGroup { return s.ds.EmergencyGroup }

// PreventiveGroup returns the preventive-care ambulatory group.
func (s *Store) PreventiveGroup() AmbulatoryGroup { return s.ds.PreventiveGroup }

// MinorProcedureGroup returns the minor-procedure ambulatory group.
func (s *Store) MinorProcedureGroup() AmbulatoryGroup { return s.ds.MinorProcedureGroup }

// OfficeVisitGroup returns the default office-visit ambulatory group.
func (s *Store) OfficeVisitGroup() AmbulatoryGroup { return s.ds.OfficeVisitGroup }

// AncillaryIncrement returns the weight added per ancillary service.
func (s *Store) AncillaryIncrement() float64 { return s.ds.AncillaryIncrement }
