// Package resolve extracts canonical scalar fields from a webhook event via
// ordered fallback paths. Every accessor is total: absent branches resolve
// to the zero value, never a panic or error. The one hard requirement, the
// call identifier, is validated by the caller.
package resolve

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oakline/callbridge/internal/models"
)

// Semantic meanings for structured-output entries. The platform keys
// entries by opaque IDs; configuration maps each ID to one of these.
const (
	OutBookingConfirmed       = "booking_confirmed"
	OutAppointmentBooked      = "appointment_booked"
	OutAppointmentRescheduled = "appointment_rescheduled"
	OutAppointmentCancelled   = "appointment_cancelled"
	OutUpsellOpportunity      = "upsell_opportunity"
	OutCallSummary            = "call_summary"
)

// ParseEvent decodes a webhook body, unwrapping the optional "message"
// envelope some event kinds arrive under.
func ParseEvent(body []byte) (*models.CallEvent, error) {
	var wrapper struct {
		Message json.RawMessage `json:"message"`
	}
	payload := body
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper.Message) > 0 && string(wrapper.Message) != "null" {
		payload = wrapper.Message
	}
	var ev models.CallEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Resolver reads one event. outputs maps opaque structured-output IDs to
// their semantic meaning; a nil map still resolves outputs whose Name field
// matches the semantic directly.
type Resolver struct {
	ev      *models.CallEvent
	outputs map[string]string
}

func New(ev *models.CallEvent, outputs map[string]string) *Resolver {
	return &Resolver{ev: ev, outputs: outputs}
}

func (r *Resolver) Kind() string { return r.ev.Type }

func (r *Resolver) IsTerminal() bool { return r.ev.Type == models.EventEndOfCallReport }

func (r *Resolver) CallID() string {
	if r.ev.Call != nil {
		return strings.TrimSpace(r.ev.Call.ID)
	}
	return ""
}

// Status derives the visible call status from the event kind. The terminal
// report is authoritative; the update kinds probe their nested status
// strings. Empty, "null", and "undefined" all count as absent and fall back
// to "in progress" so an active call never loses its visible state.
func (r *Resolver) Status() string {
	switch r.ev.Type {
	case models.EventEndOfCallReport:
		return models.StatusEnded
	case models.EventStatusUpdate:
		if s := scrub(r.ev.Status); s != "" {
			return s
		}
		if r.ev.Call != nil {
			if s := scrub(r.ev.Call.Status); s != "" {
				return s
			}
		}
	case models.EventConversationUpdate:
		if r.ev.Call != nil {
			if s := scrub(r.ev.Call.Status); s != "" {
				return s
			}
		}
		if s := scrub(r.ev.Status); s != "" {
			return s
		}
	default:
		if s := scrub(r.ev.Status); s != "" {
			return s
		}
	}
	return models.StatusInProgress
}

func scrub(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "undefined":
		return ""
	}
	return s
}

// Caller identity probes: event-kind-specific customer object first, then
// the top-level customer, then slot-filling variables.

func (r *Resolver) CallerPhone() string {
	return first(
		r.callCustomer().Number,
		r.topCustomer().Number,
		r.variable("customerPhone", "customer_phone", "phone"),
	)
}

func (r *Resolver) CallerName() string {
	return first(
		r.callCustomer().Name,
		r.topCustomer().Name,
		r.variable("customerName", "customer_name", "name"),
	)
}

func (r *Resolver) CallerEmail() string {
	return first(
		r.callCustomer().Email,
		r.topCustomer().Email,
		r.variable("customerEmail", "customer_email", "email"),
	)
}

// CalledNumber is the business line the caller dialed, used for tenant
// resolution.
func (r *Resolver) CalledNumber() string {
	if r.ev.PhoneNumber != nil {
		return r.ev.PhoneNumber.Number
	}
	return ""
}

func (r *Resolver) WorkflowID() string {
	if r.ev.Call != nil && r.ev.Call.WorkflowID != "" {
		return r.ev.Call.WorkflowID
	}
	if r.ev.Assistant != nil {
		return r.ev.Assistant.ID
	}
	return ""
}

func (r *Resolver) Transcript() string {
	if r.ev.Artifact != nil && r.ev.Artifact.Transcript != "" {
		return r.ev.Artifact.Transcript
	}
	return r.ev.Transcript
}

func (r *Resolver) Messages() []map[string]any {
	if r.ev.Artifact != nil && len(r.ev.Artifact.Messages) > 0 {
		return r.ev.Artifact.Messages
	}
	return r.ev.Messages
}

func (r *Resolver) RecordingURL() string {
	if r.ev.Artifact != nil {
		return r.ev.Artifact.RecordingURL
	}
	return ""
}

func (r *Resolver) Summary() string {
	if r.ev.Analysis != nil && strings.TrimSpace(r.ev.Analysis.Summary) != "" {
		return r.ev.Analysis.Summary
	}
	if raw, ok := r.structuredOutput(OutCallSummary); ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

// Intent is a field-mapping over values already produced upstream: the
// analysis block first, then slot variables, then the boolean outcome
// flags.
func (r *Resolver) Intent() string {
	if r.ev.Analysis != nil {
		if s, ok := r.ev.Analysis.StructuredData["intent"].(string); ok && s != "" {
			return s
		}
		if s, ok := r.ev.Analysis.StructuredData["call_intent"].(string); ok && s != "" {
			return s
		}
	}
	if s := r.variable("intent", "call_intent"); s != "" {
		return s
	}
	switch {
	case r.Flag(OutAppointmentBooked):
		return "book_appointment"
	case r.Flag(OutAppointmentRescheduled):
		return "reschedule_appointment"
	case r.Flag(OutAppointmentCancelled):
		return "cancel_appointment"
	case r.Flag(OutUpsellOpportunity):
		return "upsell_opportunity"
	}
	return ""
}

func (r *Resolver) Confidence() float64 {
	if r.ev.Analysis == nil {
		return 0
	}
	switch v := r.ev.Analysis.StructuredData["confidence"].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// Escalation exists only when a concrete forwarding destination is present.
func (r *Resolver) Escalation() *models.Escalation {
	if r.ev.Call == nil || r.ev.Call.ForwardedPhoneNumber == "" {
		return nil
	}
	esc := &models.Escalation{Number: r.ev.Call.ForwardedPhoneNumber}
	if r.ev.Analysis != nil {
		esc.Type, _ = r.ev.Analysis.StructuredData["transfer_type"].(string)
		esc.Reason, _ = r.ev.Analysis.StructuredData["escalation_reason"].(string)
	}
	return esc
}

func (r *Resolver) StartedAt() *time.Time {
	if r.ev.Call == nil {
		return nil
	}
	return parseTime(r.ev.Call.StartedAt)
}

func (r *Resolver) EndedAt() *time.Time {
	if r.ev.Call == nil {
		return nil
	}
	return parseTime(r.ev.Call.EndedAt)
}

func (r *Resolver) EndedReason() string { return r.ev.EndedReason }

// Booking returns the confirmed structured booking payload, or nil.
func (r *Resolver) Booking() map[string]any {
	raw, ok := r.structuredOutput(OutBookingConfirmed)
	if !ok {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// SlotVariables exposes the raw slot-filling variables for the low-trust
// schedule fallback.
func (r *Resolver) SlotVariables() map[string]any {
	if r.ev.Assistant == nil {
		return nil
	}
	return r.ev.Assistant.VariableValues
}

// Flag resolves a boolean structured output, tolerating the string and
// numeric encodings workflows emit.
func (r *Resolver) Flag(semantic string) bool {
	raw, ok := r.structuredOutput(semantic)
	if !ok {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		s := strings.ToLower(strings.TrimSpace(b))
		return s == "true" || s == "yes"
	case float64:
		return b != 0
	}
	return false
}

func (r *Resolver) structuredOutput(semantic string) (json.RawMessage, bool) {
	if r.ev.Artifact == nil {
		return nil, false
	}
	for id, so := range r.ev.Artifact.StructuredOutputs {
		if r.outputs[id] == semantic || strings.EqualFold(so.Name, semantic) {
			if len(so.Result) > 0 {
				return so.Result, true
			}
		}
	}
	return nil, false
}

func (r *Resolver) callCustomer() models.EventCustomer {
	if r.ev.Call != nil && r.ev.Call.Customer != nil {
		return *r.ev.Call.Customer
	}
	return models.EventCustomer{}
}

func (r *Resolver) topCustomer() models.EventCustomer {
	if r.ev.Customer != nil {
		return *r.ev.Customer
	}
	return models.EventCustomer{}
}

func (r *Resolver) variable(keys ...string) string {
	if r.ev.Assistant == nil {
		return ""
	}
	for _, k := range keys {
		if s, ok := r.ev.Assistant.VariableValues[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
