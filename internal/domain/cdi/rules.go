// Package cdi analyzes draft clinical notes for documentation gaps and
// produces "nudges" prompting the physician for greater specificity
// before the note is saved.
package cdi

import "regexp"

// Severity grades how much a documentation gap matters for coding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// NudgeType categorizes the documentation improvement being asked for.
type NudgeType string

const (
	NudgeSpecificity  NudgeType = "SPECIFICITY"
	NudgeLaterality   NudgeType = "LATERALITY"
	NudgeSeverity     NudgeType = "SEVERITY"
	NudgeOrganism     NudgeType = "ORGANISM"
	NudgeComplication NudgeType = "COMPLICATION"
)

// Nudge is one physician-facing documentation prompt.
type Nudge struct {
	ID              string    `json:"id"`
	Severity        Severity  `json:"severity"`
	Prompt          string    `json:"prompt"`
	Type            NudgeType `json:"nudge_type"`
	ClinicalContext string    `json:"clinical_context,omitempty"`
}

// Rule fires when any keyword appears in the note and none of the
// negation keywords do. A negation keyword present means the physician
// already documented the detail the rule asks for.
type Rule struct {
	ID               string
	Keywords         []string
	NegationKeywords []string
	Nudge            Nudge
}

// DefaultRules is the built-in deterministic ruleset for common
// specificity gaps.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:               "pneumonia_specificity",
			Keywords:         []string{"pneumonia", "pneumonitis"},
			NegationKeywords: []string{"organism", "bacterial", "viral", "lobar", "atypical", "streptococcus", "pneumococcal"},
			Nudge: Nudge{
				ID:              "pneumonia_specificity",
				Severity:        SeverityWarning,
				Prompt:          "Specify the causative organism for pneumonia if known (e.g., bacterial, viral, or a specific organism such as Streptococcus pneumoniae).",
				Type:            NudgeOrganism,
				ClinicalContext: "Pneumonia requires organism specificity for optimal group assignment",
			},
		},
		{
			ID:               "uti_specificity",
			Keywords:         []string{"urinary tract infection", "uti"},
			NegationKeywords: []string{"cystitis", "pyelonephritis", "urosepsis", "catheter-associated", "complicated", "uncomplicated"},
			Nudge: Nudge{
				ID:              "uti_specificity",
				Severity:        SeverityWarning,
				Prompt:          "Specify the site and type of urinary tract infection (e.g., cystitis, pyelonephritis, catheter-associated UTI).",
				Type:            NudgeSpecificity,
				ClinicalContext: "UTI site specificity affects group assignment and severity scoring",
			},
		},
		{
			ID:               "fracture_laterality",
			Keywords:         []string{"fracture", "broken bone"},
			NegationKeywords: []string{"left", "right", "bilateral"},
			Nudge: Nudge{
				ID:              "fracture_laterality",
				Severity:        SeverityCritical,
				Prompt:          "Specify laterality (left, right, or bilateral) for the fracture diagnosis.",
				Type:            NudgeLaterality,
				ClinicalContext: "Fracture laterality is mandatory for ICD-10 coding compliance",
			},
		},
		{
			ID:               "mi_type_specificity",
			Keywords:         []string{"myocardial infarction", "heart attack"},
			NegationKeywords: []string{"stemi", "nstemi", "st-elevation", "non-st-elevation", "anterior", "inferior", "lateral"},
			Nudge: Nudge{
				ID:              "mi_type_specificity",
				Severity:        SeverityCritical,
				Prompt:          "Specify the type of myocardial infarction (STEMI, NSTEMI) and location (anterior, inferior, lateral).",
				Type:            NudgeSeverity,
				ClinicalContext: "Infarction type and location drive severity and relative weight",
			},
		},
		{
			ID:               "diabetes_complications",
			Keywords:         []string{"diabetes", "diabetic"},
			NegationKeywords: []string{"complications", "nephropathy", "retinopathy", "neuropathy", "ketoacidosis", "hypoglycemia"},
			Nudge: Nudge{
				ID:              "diabetes_complications",
				Severity:        SeverityWarning,
				Prompt:          "Document any diabetes complications (nephropathy, retinopathy, neuropathy, ketoacidosis) to capture full disease complexity.",
				Type:            NudgeComplication,
				ClinicalContext: "Diabetes complications reflect true patient acuity",
			},
		},
		{
			ID:               "hypertension_severity",
			Keywords:         []string{"hypertension", "high blood pressure"},
			NegationKeywords: []string{"crisis", "emergency", "urgency", "malignant", "controlled", "uncontrolled"},
			Nudge: Nudge{
				ID:              "hypertension_severity",
				Severity:        SeverityInfo,
				Prompt:          "Consider documenting hypertension severity (controlled, uncontrolled, crisis, emergency).",
				Type:            NudgeSeverity,
				ClinicalContext: "Hypertension severity affects risk stratification",
			},
		},
	}
}

// Analyzer evaluates notes against a fixed ruleset. Patterns are
// compiled once at construction; Analyze is pure, deterministic, and
// safe for concurrent use.
type Analyzer struct {
	rules    []Rule
	triggers []*regexp.Regexp
	negators []*regexp.Regexp
}

func NewAnalyzer(rules []Rule) *Analyzer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	a := &Analyzer{
		rules:    rules,
		triggers: make([]*regexp.Regexp, len(rules)),
		negators: make([]*regexp.Regexp, len(rules)),
	}
	for i, r := range rules {
		a.triggers[i] = compileAny(r.Keywords)
		a.negators[i] = compileAny(r.NegationKeywords)
	}
	return a
}

// compileAny builds one whole-word, case-insensitive alternation so a
// short keyword like "uti" never matches inside "routine". An empty word
// list compiles to a pattern that matches nothing.
func compileAny(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return regexp.MustCompile(`\z.`)
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	alt := quoted[0]
	for _, q := range quoted[1:] {
		alt += "|" + q
	}
	return regexp.MustCompile(`(?i)\b(?:` + alt + `)\b`)
}

// Analyze returns the nudges for every rule the note triggers, in rule
// order.
func (a *Analyzer) Analyze(note string) []Nudge {
	var out []Nudge
	for i, r := range a.rules {
		if !a.triggers[i].MatchString(note) {
			continue
		}
		if a.negators[i].MatchString(note) {
			continue
		}
		out = append(out, r.Nudge)
	}
	return out
}
