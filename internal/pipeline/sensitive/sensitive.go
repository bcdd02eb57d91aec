// Package sensitive classifies free text into crisis and self-harm
// categories and produces two redaction strengths: an operator-facing
// variant that masks only the matched spans, and a training variant hardened
// against re-identification.
package sensitive

import (
	"regexp"

	"github.com/oakline/callbridge/internal/pipeline/redact"
)

const (
	CategorySelfHarm = "self_harm"
	CategoryCrisis   = "crisis"
)

const (
	spanMarker   = "[SENSITIVE]"
	personMarker = "[CALLER]"
)

// Assessment is the transient result for one text field. Training is only a
// hardened variant when at least one category matched; otherwise it is the
// unmodified input.
type Assessment struct {
	Categories []string `json:"categories"`
	Sanitized  string   `json:"sanitized"`
	Training   string   `json:"training"`
}

type phraseGroup struct {
	category string
	patterns []*regexp.Regexp
}

var selfHarmGroup = phraseGroup{
	category: CategorySelfHarm,
	patterns: compile(
		`kill(ing)?\s+(myself|himself|herself|themselves)`,
		`suicid(e|al)`,
		`end(ing)?\s+(my|his|her|their)\s+life`,
		`take\s+(my|his|her|their)\s+own\s+life`,
		`hurt(ing)?\s+(myself|himself|herself|themselves)`,
		`self[\-\s]harm`,
		`want(ed)?\s+to\s+die`,
		`better\s+off\s+dead`,
		`overdos(e|ed|ing)`,
	),
}

var crisisGroup = phraseGroup{
	category: CategoryCrisis,
	patterns: compile(
		`abus(e|ed|ive|ing)`,
		`domestic\s+violence`,
		`psychiatric\s+emergency`,
		`mental\s+breakdown`,
		`hearing\s+voices`,
		`detox(ing)?`,
		`withdrawal\s+symptoms`,
		`relaps(e|ed|ing)`,
		`addict(ed|ion)?`,
		`assault(ed)?`,
	),
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, x := range exprs {
		out = append(out, regexp.MustCompile(`(?i)\b`+x+`\b`))
	}
	return out
}

// firstPerson strips the narrator's own pronoun forms from training text.
// Sensitive narratives carry materially higher re-identification risk even
// after standard redaction, so the twin loses the first person entirely.
// The bare "I" alternative also catches initials and roman numerals; in a
// hardening pass over-masking beats under-masking.
var firstPerson = regexp.MustCompile(`(?i)\b(i['’](m|ve|ll|d)|i|me|my|mine|myself)\b`)

// Detector applies both phrase groups. The redaction engine is consulted
// only for the training variant.
type Detector struct {
	groups   []phraseGroup
	redactor *redact.Engine
}

func New(r *redact.Engine) *Detector {
	return &Detector{groups: []phraseGroup{selfHarmGroup, crisisGroup}, redactor: r}
}

// Assess classifies text and builds both redaction strengths. knownNames is
// forwarded to the redaction engine's allow-list pass for the training
// variant. Non-sensitive text comes back untouched in both variants.
func (d *Detector) Assess(text string, knownNames []string) Assessment {
	a := Assessment{Sanitized: text, Training: text}
	if text == "" {
		return a
	}

	for _, g := range d.groups {
		matched := false
		for _, p := range g.patterns {
			if p.MatchString(a.Sanitized) {
				matched = true
				a.Sanitized = p.ReplaceAllString(a.Sanitized, spanMarker)
			}
		}
		if matched {
			a.Categories = append(a.Categories, g.category)
		}
	}

	if len(a.Categories) > 0 {
		a.Training = firstPerson.ReplaceAllString(
			d.redactor.Redact(a.Sanitized, knownNames), personMarker)
	}
	return a
}
