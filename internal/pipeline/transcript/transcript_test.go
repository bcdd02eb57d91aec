package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/callbridge/internal/models"
)

func TestReconstruct_ObjectArrayFiltersToolCalls(t *testing.T) {
	msgs := []map[string]any{
		{"role": "user", "message": "I'd like to book a cleaning"},
		{"role": "tool_calls", "toolCalls": []any{map[string]any{"name": "checkAvailability"}}},
		{"role": "bot", "message": "Sure, what day works for you?"},
	}

	turns := Reconstruct(msgs)

	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleCaller, turns[0].Role)
	assert.Equal(t, "I'd like to book a cleaning", turns[0].Text)
	assert.Equal(t, 1, turns[0].TurnNumber)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, 2, turns[1].TurnNumber)
}

func TestReconstruct_ObjectArrayDropsSystemAndEmpty(t *testing.T) {
	msgs := []map[string]any{
		{"role": "system", "message": "You are a helpful receptionist."},
		{"role": "user", "message": "   "},
		{"role": "user", "message": "hello?"},
		{"role": "tool_call_result", "result": "ok"},
	}

	turns := Reconstruct(msgs)

	require.Len(t, turns, 1)
	assert.Equal(t, "hello?", turns[0].Text)
}

func TestReconstruct_ObjectTimes(t *testing.T) {
	msgs := []map[string]any{
		{"role": "user", "message": "hi", "time": float64(1710430200000), "secondsFromStart": 4.2},
	}

	turns := Reconstruct(msgs)

	require.Len(t, turns, 1)
	require.NotNil(t, turns[0].Timestamp)
	assert.Equal(t, 4.2, turns[0].SecondsFromStart)
}

func TestReconstruct_MarkedString(t *testing.T) {
	turns := Reconstruct("User: Hi\nBot: Hello, how can I help?")

	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleCaller, turns[0].Role)
	assert.Equal(t, "Hi", turns[0].Text)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Hello, how can I help?", turns[1].Text)
}

func TestReconstruct_BracketedMarkers(t *testing.T) {
	turns := Reconstruct("[Assistant]: Good morning, how may I help you?\n[Customer]: I need to cancel.")

	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleAssistant, turns[0].Role)
	assert.Equal(t, models.RoleCaller, turns[1].Role)
}

func TestReconstruct_UnlabeledContinuationKeepsRole(t *testing.T) {
	turns := Reconstruct("User: my tooth hurts\nit started on Monday\nBot: sorry to hear that")

	require.Len(t, turns, 2)
	assert.Equal(t, "my tooth hurts it started on Monday", turns[0].Text)
	assert.Equal(t, models.RoleCaller, turns[0].Role)
}

func TestReconstruct_UnmarkedGreetingHeuristic(t *testing.T) {
	turns := Reconstruct("Thank you for calling Lakeside Dental, how can I help?\nI'd like an appointment\nOf course, when?")

	require.Len(t, turns, 3)
	// greeting seeds assistant, then roles alternate as a last resort
	assert.Equal(t, models.RoleAssistant, turns[0].Role)
	assert.Equal(t, models.RoleCaller, turns[1].Role)
	assert.Equal(t, models.RoleAssistant, turns[2].Role)
}

func TestReconstruct_UnmarkedNonGreetingStartsCaller(t *testing.T) {
	turns := Reconstruct("my prescription ran out")

	require.Len(t, turns, 1)
	assert.Equal(t, models.RoleCaller, turns[0].Role)
	assert.Equal(t, "my prescription ran out", turns[0].Text)
}

func TestReconstruct_InlineToolCallFragmentStripped(t *testing.T) {
	turns := Reconstruct("User: book it {\"toolCalls\":[{\"function\":{\"name\":\"book\"}}]} please\nBot: done")

	require.Len(t, turns, 2)
	assert.Equal(t, "book it  please", turns[0].Text)
	assert.NotContains(t, turns[0].Text, "toolCalls")
}

func TestReconstruct_IterativeFragmentRemovalBounded(t *testing.T) {
	in := `hello {"toolCalls":1} there {"tool_call_id":"a"} again {"function_call":{}} end`
	turns := Reconstruct(in)

	require.Len(t, turns, 1)
	assert.NotContains(t, turns[0].Text, "toolCalls")
	assert.NotContains(t, turns[0].Text, "tool_call_id")
	assert.NotContains(t, turns[0].Text, "function_call")
}

func TestReconstruct_UnparseableInput(t *testing.T) {
	assert.Empty(t, Reconstruct(nil))
	assert.Empty(t, Reconstruct(42))
	assert.Empty(t, Reconstruct("   \n  "))
	assert.Empty(t, Reconstruct([]any{"not", "maps"}))
}
