package sensitive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakline/callbridge/internal/pipeline/pseudo"
	"github.com/oakline/callbridge/internal/pipeline/redact"
)

func newDetector() *Detector {
	return New(redact.New(pseudo.New("test-salt")))
}

func TestAssess_SelfHarm(t *testing.T) {
	d := newDetector()

	a := d.Assess("I have been feeling suicidal since last week", nil)

	assert.Contains(t, a.Categories, CategorySelfHarm)
	// Only the matched span is replaced; surrounding context survives.
	assert.Equal(t, "I have been feeling [SENSITIVE] since last week", a.Sanitized)
}

func TestAssess_Crisis(t *testing.T) {
	d := newDetector()

	a := d.Assess("she mentioned domestic violence at home", nil)

	assert.Equal(t, []string{CategoryCrisis}, a.Categories)
	assert.Contains(t, a.Sanitized, "[SENSITIVE]")
	assert.Contains(t, a.Sanitized, "at home")
}

func TestAssess_BothCategories(t *testing.T) {
	d := newDetector()

	a := d.Assess("he talked about overdose and his addiction", nil)

	assert.ElementsMatch(t, []string{CategorySelfHarm, CategoryCrisis}, a.Categories)
}

func TestAssess_TrainingStripsIdentifiersAndFirstPerson(t *testing.T) {
	d := newDetector()

	in := "I want to die, call me back at (555) 123-4567 or jane@example.com"
	a := d.Assess(in, []string{"Jane"})

	assert.Contains(t, a.Categories, CategorySelfHarm)
	assert.NotContains(t, a.Training, "555")
	assert.NotContains(t, a.Training, "jane@example.com")
	assert.NotContains(t, a.Training, "I ")
	assert.NotContains(t, a.Training, " me ")
	assert.Contains(t, a.Training, "[CALLER]")
	assert.Contains(t, a.Training, "[PHONE]")
	assert.Contains(t, a.Training, "[EMAIL]")
}

func TestAssess_TrainingPronounPassCatchesBareI(t *testing.T) {
	d := newDetector()

	// The pronoun pass is broad on purpose: a standalone "I" goes to
	// [CALLER] even when it is an initial rather than the pronoun.
	a := d.Assess("Dr. I said I should stop self-harm", nil)

	assert.Contains(t, a.Categories, CategorySelfHarm)
	assert.Equal(t, "Dr. [CALLER] said [CALLER] should stop [SENSITIVE]", a.Training)
}

func TestAssess_NoMatch_Untouched(t *testing.T) {
	d := newDetector()

	in := "I'd like to reschedule my cleaning to next Tuesday"
	a := d.Assess(in, nil)

	assert.Empty(t, a.Categories)
	assert.Equal(t, in, a.Sanitized)
	// The detector does not alter non-sensitive text, including the
	// training variant: no redaction, no pronoun pass.
	assert.Equal(t, in, a.Training)
}

func TestAssess_Empty(t *testing.T) {
	d := newDetector()
	a := d.Assess("", nil)
	assert.Empty(t, a.Categories)
	assert.Empty(t, a.Sanitized)
	assert.Empty(t, a.Training)
}
