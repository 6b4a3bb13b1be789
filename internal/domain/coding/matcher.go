package coding

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/brainsait/rcm/internal/platform/refdata"
)

// JitterFunc returns a small confidence perturbation. Injectable so tests
// can pin confidences to exact values.
type JitterFunc func() float64

const jitterSpread = 0.05

func defaultJitter() float64 {
	return (rand.Float64()*2 - 1) * jitterSpread
}

// NoJitter returns zero perturbation.
func NoJitter() float64 { return 0 }

// Matcher maps free-text clinical notes to ranked candidate codes using
// whole-word, case-insensitive matching against the reference synonym
// table. It is a deterministic lexical matcher, not an NLP model.
type Matcher struct {
	store   *refdata.Store
	jitter  JitterFunc
	entries []matcherEntry
}

type matcherEntry struct {
	src      refdata.SynonymEntry
	patterns []*regexp.Regexp
}

// NewMatcher compiles a Matcher over the store's synonym table. A nil
// jitter uses the default random perturbation.
func NewMatcher(store *refdata.Store, jitter JitterFunc) *Matcher {
	if jitter == nil {
		jitter = defaultJitter
	}
	m := &Matcher{store: store, jitter: jitter}
	for _, e := range store.Synonyms() {
		me := matcherEntry{src: e}
		for _, syn := range e.Synonyms {
			me.patterns = append(me.patterns, wordPattern(syn))
		}
		m.entries = append(m.entries, me)
	}
	return m
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(term)) + `\b`)
}

// Suggest returns the candidate codes found in a note. Each base code is
// emitted at most once, the first matching synonym of an entry wins, and
// the result is never empty: an unmatched note yields the fallback
// examination code. All confidences land in (0, 0.99].
func (m *Matcher) Suggest(note string) []SuggestedCode {
	var out []SuggestedCode
	seen := make(map[string]struct{})

	for _, e := range m.entries {
		if _, dup := seen[e.src.Code]; dup {
			continue
		}
		for _, p := range e.patterns {
			if p.MatchString(note) {
				seen[e.src.Code] = struct{}{}
				out = append(out, SuggestedCode{
					Code:        e.src.Code,
					Description: e.src.Description,
					Confidence:  clampConfidence(e.src.Confidence + m.jitter()),
					CodeType:    string(e.src.CodeType),
				})
				break
			}
		}
	}

	if len(out) == 0 {
		fb := m.store.FallbackCode()
		out = append(out, SuggestedCode{
			Code:        fb.Code,
			Description: fb.Description,
			Confidence:  fb.Confidence,
			CodeType:    string(fb.CodeType),
		})
	}
	return out
}

func clampConfidence(c float64) float64 {
	if c > 0.99 {
		return 0.99
	}
	if c < 0.01 {
		return 0.01
	}
	return c
}

// MeanConfidence averages the confidences of a suggestion set.
func MeanConfidence(codes []SuggestedCode) float64 {
	if len(codes) == 0 {
		return 0
	}
	var sum float64
	for _, c := range codes {
		sum += c.Confidence
	}
	return sum / float64(len(codes))
}
