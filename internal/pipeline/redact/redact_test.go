package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakline/callbridge/internal/pipeline/pseudo"
)

func newEngine() *Engine {
	return New(pseudo.New("test-salt"))
}

func TestRedact_Categories(t *testing.T) {
	e := newEngine()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"phone formatted", "call me at (555) 123-4567 please", "call me at [PHONE] please"},
		{"phone plus one", "my number is +1 555-123-4567", "my number is [PHONE]"},
		{"fax labeled", "send it to fax: 555-123-4567 today", "send it to [FAX] today"},
		{"email", "reach jane.doe+x@example.com anytime", "reach [EMAIL] anytime"},
		{"ssn formatted", "SSN is 123-45-6789", "SSN is [SSN]"},
		{"ssn bare nine digits", "id 123456789 on file", "id [SSN] on file"},
		{"url", "see https://example.com/portal?id=7 for info", "see [URL] for info"},
		{"ip", "from 192.168.1.100 last night", "from [IP] last night"},
		{"date month name", "on March 14, 2025 at noon", "on [DATE] at noon"},
		{"date day first", "on 14 March 2025 at noon", "on [DATE] at noon"},
		{"date iso", "scheduled 2025-03-14 morning", "scheduled [DATE] morning"},
		{"date slashes", "born 03/14/1985 in town", "born [DATE] in town"},
		{"age over 89", "she is 92 years old now", "she is [AGE] now"},
		{"street address", "lives at 42 Maple Street nearby", "lives at [ADDRESS] nearby"},
		{"postal", "zip is 60614 here", "zip is [POSTAL] here"},
		{"mrn", "MRN: A1234567 noted", "[MRN] noted"},
		{"account labeled", "account #9876543 overdue", "[ACCOUNT] overdue"},
		{"license", "license no. D400-7788 expired", "[LICENSE] expired"},
		{"account bare run", "ref 48271934820 held", "ref [ACCOUNT] held"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Redact(tc.in, nil))
		})
	}
}

func TestRedact_OrderingSpecificBeforeGeneric(t *testing.T) {
	e := newEngine()

	// A formatted phone must not be consumed by the digit-run rules.
	got := e.Redact("call 555.123.4567", nil)
	assert.Equal(t, "call [PHONE]", got)

	// An email with a long digit local part stays an email.
	got = e.Redact("write to 5551234567@carrier.net", nil)
	assert.Equal(t, "write to [EMAIL]", got)
}

func TestRedact_Idempotent(t *testing.T) {
	e := newEngine()

	in := "Jane at (555) 123-4567, jane@example.com, 42 Maple Street, born 03/14/1985, MRN: X99871"
	once := e.Redact(in, []string{"Jane"})
	twice := e.Redact(once, []string{"Jane"})
	assert.Equal(t, once, twice)
}

func TestRedact_AllowListNames(t *testing.T) {
	e := newEngine()

	got := e.Redact("Jane spoke to JANE about jane's refill", []string{"Jane"})

	assert.NotContains(t, strings.ToLower(got), "jane")
	tok := pseudo.New("test-salt").Token("Jane", pseudo.NamespaceName)
	// Every occurrence maps to the one token.
	assert.Equal(t, 3, strings.Count(got, tok))
}

func TestRedact_AllowListWholeWordOnly(t *testing.T) {
	e := newEngine()

	// "Ann" must not fire inside "Anne" or "annual".
	got := e.Redact("Anne reviewed the annual report with Ann", []string{"Ann"})
	assert.Contains(t, got, "Anne")
	assert.Contains(t, got, "annual")
	assert.NotContains(t, strings.Fields(got), "Ann")
}

func TestRedact_AllowListSpecialChars(t *testing.T) {
	e := newEngine()

	got := e.Redact("Dr. O'Brien called back", []string{"O'Brien"})
	assert.NotContains(t, got, "O'Brien")
}

func TestRedact_EmptyPassthrough(t *testing.T) {
	e := newEngine()
	assert.Equal(t, "", e.Redact("", []string{"Jane"}))
}

func TestRedact_MarkersSurviveAllRules(t *testing.T) {
	e := newEngine()
	for _, r := range e.Rules() {
		for _, m := range []string{"[PHONE]", "[EMAIL]", "[SSN]", "[DATE]", "[ADDRESS]", "[ACCOUNT]"} {
			assert.False(t, r.Pattern.MatchString(m), "rule %s matches marker %s", r.Category, m)
		}
	}
}
