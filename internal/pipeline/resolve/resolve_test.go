package resolve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/callbridge/internal/models"
)

func TestParseEvent_MessageWrapper(t *testing.T) {
	body := []byte(`{"message":{"type":"status-update","status":"ringing","call":{"id":"call-1"}}}`)

	ev, err := ParseEvent(body)

	require.NoError(t, err)
	assert.Equal(t, "status-update", ev.Type)
	assert.Equal(t, "call-1", ev.Call.ID)
}

func TestParseEvent_FlatBody(t *testing.T) {
	body := []byte(`{"type":"end-of-call-report","call":{"id":"call-2"}}`)

	ev, err := ParseEvent(body)

	require.NoError(t, err)
	assert.Equal(t, models.EventEndOfCallReport, ev.Type)
}

func TestParseEvent_Malformed(t *testing.T) {
	_, err := ParseEvent([]byte(`{not json`))
	assert.Error(t, err)
}

func TestStatus_Derivation(t *testing.T) {
	cases := []struct {
		name string
		ev   models.CallEvent
		want string
	}{
		{"terminal always ended",
			models.CallEvent{Type: models.EventEndOfCallReport, Status: "whatever"}, models.StatusEnded},
		{"status update passes nested status",
			models.CallEvent{Type: models.EventStatusUpdate, Status: "ringing"}, "ringing"},
		{"status update falls back to call status",
			models.CallEvent{Type: models.EventStatusUpdate, Call: &models.EventCall{Status: "queued"}}, "queued"},
		{"status update empty defaults",
			models.CallEvent{Type: models.EventStatusUpdate}, models.StatusInProgress},
		{"conversation update prefers call status",
			models.CallEvent{Type: models.EventConversationUpdate, Status: "msg", Call: &models.EventCall{Status: "ongoing"}}, "ongoing"},
		{"conversation update message status fallback",
			models.CallEvent{Type: models.EventConversationUpdate, Status: "speaking"}, "speaking"},
		{"null string is absent",
			models.CallEvent{Type: models.EventStatusUpdate, Status: "null"}, models.StatusInProgress},
		{"undefined string is absent",
			models.CallEvent{Type: models.EventStatusUpdate, Status: "undefined"}, models.StatusInProgress},
		{"unknown kind defaults",
			models.CallEvent{Type: "speech-update"}, models.StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, New(&tc.ev, nil).Status())
		})
	}
}

func TestCallerFields_FallbackOrder(t *testing.T) {
	ev := models.CallEvent{
		Call:     &models.EventCall{Customer: &models.EventCustomer{Number: "+15551230001"}},
		Customer: &models.EventCustomer{Number: "+15551230002", Name: "Jane"},
		Assistant: &models.EventAssistant{VariableValues: map[string]any{
			"customerName":  "Janet",
			"customerEmail": "jane@example.com",
		}},
	}
	r := New(&ev, nil)

	// call.customer wins over top-level customer
	assert.Equal(t, "+15551230001", r.CallerPhone())
	// top-level customer wins over variables
	assert.Equal(t, "Jane", r.CallerName())
	// variables are the last resort
	assert.Equal(t, "jane@example.com", r.CallerEmail())
}

func TestCallerFields_AbsentBranches(t *testing.T) {
	r := New(&models.CallEvent{}, nil)

	assert.Empty(t, r.CallID())
	assert.Empty(t, r.CallerPhone())
	assert.Empty(t, r.CallerName())
	assert.Empty(t, r.Transcript())
	assert.Nil(t, r.Messages())
	assert.Nil(t, r.Escalation())
	assert.Nil(t, r.StartedAt())
	assert.Nil(t, r.Booking())
	assert.Zero(t, r.Confidence())
}

func TestStructuredOutputs_MappedByID(t *testing.T) {
	ev := models.CallEvent{
		Artifact: &models.EventArtifact{
			StructuredOutputs: map[string]models.StructuredOutput{
				"so_8f2k1": {Result: json.RawMessage(`{"date":"2025-03-14","time":"2:30 PM"}`)},
				"so_9q0x7": {Result: json.RawMessage(`true`)},
				"so_1summ": {Result: json.RawMessage(`"caller booked a cleaning"`)},
			},
		},
	}
	outputs := map[string]string{
		"so_8f2k1": OutBookingConfirmed,
		"so_9q0x7": OutAppointmentBooked,
		"so_1summ": OutCallSummary,
	}
	r := New(&ev, outputs)

	booking := r.Booking()
	require.NotNil(t, booking)
	assert.Equal(t, "2025-03-14", booking["date"])
	assert.True(t, r.Flag(OutAppointmentBooked))
	assert.False(t, r.Flag(OutUpsellOpportunity))
	assert.Equal(t, "caller booked a cleaning", r.Summary())
	assert.Equal(t, "book_appointment", r.Intent())
}

func TestStructuredOutputs_MatchedByName(t *testing.T) {
	ev := models.CallEvent{
		Artifact: &models.EventArtifact{
			StructuredOutputs: map[string]models.StructuredOutput{
				"opaque": {Name: "booking_confirmed", Result: json.RawMessage(`{"date":"2025-03-14"}`)},
			},
		},
	}
	r := New(&ev, nil)
	assert.NotNil(t, r.Booking())
}

func TestSummary_AnalysisWins(t *testing.T) {
	ev := models.CallEvent{
		Analysis: &models.EventAnalysis{Summary: "from analysis"},
		Artifact: &models.EventArtifact{
			StructuredOutputs: map[string]models.StructuredOutput{
				"s": {Name: OutCallSummary, Result: json.RawMessage(`"from output"`)},
			},
		},
	}
	assert.Equal(t, "from analysis", New(&ev, nil).Summary())
}

func TestEscalation_OnlyWhenConcrete(t *testing.T) {
	ev := models.CallEvent{
		Call: &models.EventCall{ForwardedPhoneNumber: "+15559998888"},
		Analysis: &models.EventAnalysis{StructuredData: map[string]any{
			"transfer_type": "warm",
		}},
	}
	esc := New(&ev, nil).Escalation()

	require.NotNil(t, esc)
	assert.Equal(t, "+15559998888", esc.Number)
	assert.Equal(t, "warm", esc.Type)

	assert.Nil(t, New(&models.CallEvent{Call: &models.EventCall{}}, nil).Escalation())
}

func TestTimestamps(t *testing.T) {
	ev := models.CallEvent{Call: &models.EventCall{
		StartedAt: "2025-03-14T14:30:00Z",
		EndedAt:   "bogus",
	}}
	r := New(&ev, nil)

	require.NotNil(t, r.StartedAt())
	assert.Equal(t, 14, r.StartedAt().Hour())
	assert.Nil(t, r.EndedAt())
}
