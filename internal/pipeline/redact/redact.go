// Package redact removes regulated identifier categories from free text via
// an ordered sequence of pattern substitution passes, then anonymizes an
// explicit allow-list of names. It performs no general name detection: only
// supplied names are replaced, so the remaining narrative stays legible.
package redact

import (
	"regexp"
	"strings"

	"github.com/oakline/callbridge/internal/pipeline/pseudo"
)

// Rule is one substitution pass. Rules run in slice order, which matters:
// categories overlap in character class, so specific formats (labeled fax
// numbers, formatted phones, dated month names) must run before the generic
// digit-run rules at the tail.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
	Marker   string
}

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec`

// phoneShape is shared by the fax and phone rules. Three anchored forms
// (plus-prefixed, paren-grouped, bare with a leading word boundary) so the
// rule can never fire in the middle of a longer digit run.
const phoneShape = `(?:\+1?[\-.\s]?\(?\d{3}\)?[\-.\s]?\d{3}[\-.\s]?\d{4}\b|\(\d{3}\)[\-.\s]?\d{3}[\-.\s]?\d{4}\b|\b1?\d{3}[\-.\s]?\d{3}[\-.\s]?\d{4}\b)`

// defaultRules is the canonical ordered redaction pipeline. Every marker is
// letters-in-brackets, which no rule can match, so redaction is idempotent.
var defaultRules = []Rule{
	{"fax", regexp.MustCompile(`(?i)\bfax(\s*(number|no\.?|#))?\s*[:.]?\s*` + phoneShape), "[FAX]"},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	{"phone", regexp.MustCompile(phoneShape), "[PHONE]"},
	{"ssn", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{"url", regexp.MustCompile(`(?i)\b(https?://|www\.)[^\s<>"]+`), "[URL]"},
	{"ip", regexp.MustCompile(`\b(\d{1,3}\.){3}\d{1,3}\b`), "[IP]"},
	{"date", regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+\d{1,2}(st|nd|rd|th)?(,?\s*\d{4})?\b`), "[DATE]"},
	{"date", regexp.MustCompile(`(?i)\b\d{1,2}(st|nd|rd|th)?\s+(` + monthNames + `)\.?(,?\s*\d{4})?\b`), "[DATE]"},
	{"date", regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "[DATE]"},
	{"date", regexp.MustCompile(`\b\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}\b`), "[DATE]"},
	{"age", regexp.MustCompile(`(?i)\b(9\d|1[0-2]\d)([\-\s]*years?[\-\s]*old|\s*y/?o\b)`), "[AGE]"},
	{"age", regexp.MustCompile(`(?i)\baged?[:\s]+(9\d|1[0-2]\d)\b`), "[AGE]"},
	{"address", regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z][A-Za-z\s]*?\s(street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|circle|cir|place|pl|way|terrace|ter)\b\.?`), "[ADDRESS]"},
	{"postal", regexp.MustCompile(`\b\d{5}(-\d{4})?\b`), "[POSTAL]"},
	{"mrn", regexp.MustCompile(`(?i)\b(mrn|medical record(\s*(number|no\.?|#))?)\s*[:#]?\s*[A-Za-z]*\d[A-Za-z0-9\-]*\b`), "[MRN]"},
	{"account", regexp.MustCompile(`(?i)\b(account|acct)(\s*(number|no\.?|#))?\s*[:#]?\s*\d[\d\-]*\b`), "[ACCOUNT]"},
	{"license", regexp.MustCompile(`(?i)\b(license|licence|lic|certificate|cert)(\s*(number|no\.?|#))?\s*[:#]?\s*[A-Za-z]*\d[A-Za-z0-9\-]*\b`), "[LICENSE]"},
	// Generic digit runs, strictly last: nine digits reads as an unformatted
	// national ID, anything six-plus reads as an account-style number.
	{"ssn", regexp.MustCompile(`\b\d{9}\b`), "[SSN]"},
	{"account", regexp.MustCompile(`\b\d{6,}\b`), "[ACCOUNT]"},
}

// Engine runs the rule pipeline and the allow-list name pass. Name tokens
// come from the pseudonymization engine so a given name maps to the same
// token in every call record.
type Engine struct {
	rules  []Rule
	pseudo *pseudo.Engine
}

func New(p *pseudo.Engine) *Engine {
	return &Engine{rules: defaultRules, pseudo: p}
}

// Rules exposes the ordered pipeline for inspection and tests.
func (e *Engine) Rules() []Rule { return e.rules }

// Redact replaces every regulated-identifier match with its category marker,
// then replaces each allow-listed name (case-insensitive, whole word) with
// its deterministic token. Empty input passes through unchanged.
func (e *Engine) Redact(text string, knownNames []string) string {
	if text == "" {
		return text
	}
	out := text
	for _, r := range e.rules {
		out = r.Pattern.ReplaceAllString(out, r.Marker)
	}

	// Per-invocation memo: a repeated name resolves its token once.
	tokens := make(map[string]string, len(knownNames))
	for _, name := range knownNames {
		n := strings.TrimSpace(name)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		tok, ok := tokens[key]
		if !ok {
			tok = e.pseudo.Token(n, pseudo.NamespaceName)
			tokens[key] = tok
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)
		if err != nil {
			continue
		}
		out = re.ReplaceAllString(out, tok)
	}
	return out
}
