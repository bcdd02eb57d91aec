package models

import "encoding/json"

// Event kinds delivered by the voice platform webhook.
const (
	EventEndOfCallReport    = "end-of-call-report"
	EventStatusUpdate       = "status-update"
	EventConversationUpdate = "conversation-update"
)

// CallEvent is one webhook delivery. The platform nests the payload under a
// "message" wrapper for some event kinds and flattens it for others, and the
// populated sub-objects vary by Type, so everything past the tag is optional.
// Events are never persisted in this shape; the resolver reads them and the
// raw body goes to the audit log.
type CallEvent struct {
	Type        string            `json:"type"`
	Timestamp   int64             `json:"timestamp,omitempty"`
	Status      string            `json:"status,omitempty"`
	EndedReason string            `json:"endedReason,omitempty"`
	Call        *EventCall        `json:"call,omitempty"`
	Customer    *EventCustomer    `json:"customer,omitempty"`
	PhoneNumber *EventPhoneNumber `json:"phoneNumber,omitempty"`
	Assistant   *EventAssistant   `json:"assistant,omitempty"`
	Artifact    *EventArtifact    `json:"artifact,omitempty"`
	Analysis    *EventAnalysis    `json:"analysis,omitempty"`

	// conversation-update deliveries carry the running message list at the
	// top level as well as under artifact.
	Messages   []map[string]any `json:"messages,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
}

type EventCall struct {
	ID                   string         `json:"id"`
	Status               string         `json:"status,omitempty"`
	Type                 string         `json:"type,omitempty"`
	StartedAt            string         `json:"startedAt,omitempty"`
	EndedAt              string         `json:"endedAt,omitempty"`
	Customer             *EventCustomer `json:"customer,omitempty"`
	PhoneNumberID        string         `json:"phoneNumberId,omitempty"`
	AssistantID          string         `json:"assistantId,omitempty"`
	WorkflowID           string         `json:"workflowId,omitempty"`
	ForwardedPhoneNumber string         `json:"forwardedPhoneNumber,omitempty"`
}

type EventCustomer struct {
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

type EventPhoneNumber struct {
	ID     string `json:"id,omitempty"`
	Number string `json:"number,omitempty"`
}

type EventAssistant struct {
	ID             string         `json:"id,omitempty"`
	VariableValues map[string]any `json:"variableValues,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// EventArtifact holds the conversation artifacts attached to a delivery.
// Messages is kept loosely typed: entries mix role-tagged turns with
// tool-call objects of several shapes, and the reconstructor sorts that out.
type EventArtifact struct {
	Messages          []map[string]any            `json:"messages,omitempty"`
	Transcript        string                      `json:"transcript,omitempty"`
	RecordingURL      string                      `json:"recordingUrl,omitempty"`
	StructuredOutputs map[string]StructuredOutput `json:"structuredOutputs,omitempty"`
}

// StructuredOutput is a platform-extracted field keyed by an opaque output
// ID; the semantic meaning of each ID comes from configuration.
type StructuredOutput struct {
	Name   string          `json:"name,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

type EventAnalysis struct {
	Summary           string         `json:"summary,omitempty"`
	StructuredData    map[string]any `json:"structuredData,omitempty"`
	SuccessEvaluation string         `json:"successEvaluation,omitempty"`
}
