package clearinghouse

import (
	"strings"
	"testing"
)

func TestValidNationalID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"1023456784", true},  // sum 40
		{"1000000009", true},  // sum 10
		{"1023456780", false}, // checksum fails
		{"2023456783", false}, // leading 2 is an iqama id
		{"102345678", false},  // too short
		{"10234567x4", false}, // non-digit
	}
	for _, c := range cases {
		if got := ValidNationalID(c.id); got != c.want {
			t.Errorf("ValidNationalID(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestValidIqamaID(t *testing.T) {
	if !ValidIqamaID("2023456783") { // sum 40
		t.Error("expected valid iqama id")
	}
	if ValidIqamaID("1023456784") {
		t.Error("national id accepted as iqama")
	}
}

func TestValidatePayloadCollectsAllProblems(t *testing.T) {
	p := &ClaimPayload{
		Patient:  Patient{ID: "pat-1", NationalID: "12345"},
		Provider: Provider{CRNumber: "99"},
		Currency: "USD",
	}
	problems := ValidatePayload(p)
	if len(problems) < 4 {
		t.Fatalf("expected several problems, got %v", problems)
	}
	joined := strings.Join(problems, "; ")
	for _, want := range []string{"claim", "national", "CR", "item", "SAR"} {
		if !strings.Contains(strings.ToLower(joined), strings.ToLower(want)) {
			t.Errorf("problems missing %q: %v", want, problems)
		}
	}
}

func TestValidatePayloadAcceptsValidClaim(t *testing.T) {
	if problems := ValidatePayload(validPayload()); len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
}
