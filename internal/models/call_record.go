package models

import (
	"time"

	"gorm.io/datatypes"
)

// Call statuses as shown to operators. StatusInProgress doubles as the
// default for unmapped or missing platform statuses so an active call is
// never rendered with an empty state.
const (
	StatusInProgress = "in progress"
	StatusEnded      = "ended"
)

// Schedule is a normalized appointment interval, stored as jsonb on the
// call record. Source distinguishes a confirmed structured booking from a
// lower-trust inference out of raw slot variables.
type Schedule struct {
	Start   time.Time  `json:"start"`
	End     *time.Time `json:"end,omitempty"`
	Service string     `json:"service,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Source  string     `json:"source"` // confirmed | inferred
}

const (
	ScheduleConfirmed = "confirmed"
	ScheduleInferred  = "inferred"
)

// Escalation records a concrete call forwarding that actually happened.
// Never speculative: no destination, no record.
type Escalation struct {
	Number string `json:"number"`
	Type   string `json:"type,omitempty"` // warm | cold | voicemail
	Reason string `json:"reason,omitempty"`
}

// CallRecord is the durable operational record, exactly one per platform
// call ID. Created on the first event for a call and mutated by every
// subsequent one; never deleted. Identity fields are full fidelity here;
// the de-identified sibling lives in TrainingCallRecord.
type CallRecord struct {
	CallID     string  `gorm:"column:call_id;primaryKey" json:"call_id"`
	BusinessID *string `gorm:"column:business_id;type:uuid;index" json:"business_id,omitempty"`
	ProgramID  *string `gorm:"column:program_id;type:uuid" json:"program_id,omitempty"`
	Status     string  `gorm:"column:status;type:text;not null" json:"status"`

	CallerName  string `gorm:"column:caller_name;type:text" json:"caller_name,omitempty"`
	CallerPhone string `gorm:"column:caller_phone;type:text;index" json:"caller_phone,omitempty"`
	CallerEmail string `gorm:"column:caller_email;type:text" json:"caller_email,omitempty"`

	Transcript string         `gorm:"column:transcript;type:text" json:"transcript,omitempty"`
	Turns      datatypes.JSON `gorm:"column:turns;type:jsonb" json:"turns,omitempty"`
	Summary    string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Intent     string         `gorm:"column:intent;type:text" json:"intent,omitempty"`
	Confidence float64        `gorm:"column:confidence" json:"confidence,omitempty"`

	Schedule   datatypes.JSON `gorm:"column:schedule;type:jsonb" json:"schedule,omitempty"`
	Escalation datatypes.JSON `gorm:"column:escalation;type:jsonb" json:"escalation,omitempty"`

	PatientFingerprint string `gorm:"column:patient_fingerprint;type:text;index" json:"patient_fingerprint,omitempty"`

	StartedAt   *time.Time `gorm:"column:started_at;type:timestamptz" json:"started_at,omitempty"`
	EndedAt     *time.Time `gorm:"column:ended_at;type:timestamptz" json:"ended_at,omitempty"`
	EndedReason string     `gorm:"column:ended_reason;type:text" json:"ended_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (CallRecord) TableName() string { return "call_records" }
