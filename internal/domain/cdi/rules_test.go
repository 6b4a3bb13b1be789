package cdi

import "testing"

func nudgeIDs(nudges []Nudge) map[string]bool {
	ids := make(map[string]bool, len(nudges))
	for _, n := range nudges {
		ids[n.ID] = true
	}
	return ids
}

func TestAnalyzeFlagsUnspecifiedPneumonia(t *testing.T) {
	a := NewAnalyzer(nil)
	nudges := a.Analyze("Patient admitted with pneumonia, started on empiric antibiotics.")
	if !nudgeIDs(nudges)["pneumonia_specificity"] {
		t.Fatalf("expected pneumonia nudge, got %+v", nudges)
	}
}

func TestAnalyzeNegationSatisfiesRule(t *testing.T) {
	a := NewAnalyzer(nil)
	nudges := a.Analyze("Patient admitted with bacterial pneumonia, streptococcus suspected.")
	if nudgeIDs(nudges)["pneumonia_specificity"] {
		t.Fatalf("organism already documented, nudge should not fire: %+v", nudges)
	}
}

func TestAnalyzeFractureLateralityCritical(t *testing.T) {
	a := NewAnalyzer(nil)
	nudges := a.Analyze("X-ray shows a femur fracture.")
	found := false
	for _, n := range nudges {
		if n.ID == "fracture_laterality" {
			found = true
			if n.Severity != SeverityCritical {
				t.Fatalf("severity = %s, want critical", n.Severity)
			}
		}
	}
	if !found {
		t.Fatalf("expected laterality nudge, got %+v", nudges)
	}

	if nudgeIDs(a.Analyze("X-ray shows a left femur fracture."))["fracture_laterality"] {
		t.Fatal("laterality documented, nudge should not fire")
	}
}

func TestAnalyzeMultipleGaps(t *testing.T) {
	a := NewAnalyzer(nil)
	note := "Diabetic patient with hypertension presents with pneumonia."
	ids := nudgeIDs(a.Analyze(note))
	for _, want := range []string{"pneumonia_specificity", "diabetes_complications", "hypertension_severity"} {
		if !ids[want] {
			t.Errorf("missing nudge %s in %v", want, ids)
		}
	}
}

func TestAnalyzeCleanNote(t *testing.T) {
	a := NewAnalyzer(nil)
	if nudges := a.Analyze("Routine follow-up visit, patient doing well."); len(nudges) != 0 {
		t.Fatalf("unexpected nudges: %+v", nudges)
	}
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	a := NewAnalyzer(nil)
	if !nudgeIDs(a.Analyze("PNEUMONIA noted on imaging."))["pneumonia_specificity"] {
		t.Fatal("matching must be case-insensitive")
	}
}
