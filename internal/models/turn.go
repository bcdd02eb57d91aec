package models

import "time"

// Turn roles. Everything that is not the caller is the assistant; tool and
// system traffic never survives reconstruction.
const (
	RoleCaller    = "caller"
	RoleAssistant = "assistant"
)

// ConversationTurn is one ordered unit of reconstructed dialogue. Ordering is
// positional from the source payload; TurnNumber is assigned sequentially
// over retained turns starting at 1.
type ConversationTurn struct {
	TurnNumber       int        `json:"turn_number"`
	Role             string     `json:"role"` // caller | assistant
	Text             string     `json:"text"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	SecondsFromStart float64    `json:"seconds_from_start,omitempty"`
	Confidence       float64    `json:"confidence,omitempty"`
}
