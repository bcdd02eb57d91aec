package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrainingCallRecord is the de-identified twin of a CallRecord, built only
// when the terminal event arrives. Identity fields carry one-way tokens,
// text fields are redacted, and timestamps are truncated to year-month.
// Re-derivable at any time from the operational record plus the event, so
// writes are idempotent upserts on call_id.
type TrainingCallRecord struct {
	CallID     string  `gorm:"column:call_id;primaryKey" json:"call_id"`
	BusinessID *string `gorm:"column:business_id;type:uuid;index" json:"business_id,omitempty"`
	Status     string  `gorm:"column:status;type:text;not null" json:"status"`

	CallerNameToken  string `gorm:"column:caller_name_token;type:text" json:"caller_name_token,omitempty"`
	CallerPhoneToken string `gorm:"column:caller_phone_token;type:text" json:"caller_phone_token,omitempty"`
	CallerEmailToken string `gorm:"column:caller_email_token;type:text" json:"caller_email_token,omitempty"`

	// Cross-call linkage without the underlying identity.
	PatientFingerprint string `gorm:"column:patient_fingerprint;type:text;index" json:"patient_fingerprint,omitempty"`

	Transcript string         `gorm:"column:transcript;type:text" json:"transcript,omitempty"`
	Turns      datatypes.JSON `gorm:"column:turns;type:jsonb" json:"turns,omitempty"`
	Summary    string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Intent     string         `gorm:"column:intent;type:text" json:"intent,omitempty"`
	Confidence float64        `gorm:"column:confidence" json:"confidence,omitempty"`

	SensitiveCategories datatypes.JSON `gorm:"column:sensitive_categories;type:jsonb" json:"sensitive_categories,omitempty"`
	Escalated           bool           `gorm:"column:escalated" json:"escalated"`

	// Year-month only ("2006-01"): day-level dates are regulated identifiers.
	CallMonth string `gorm:"column:call_month;type:text" json:"call_month,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (TrainingCallRecord) TableName() string { return "training_call_records" }
