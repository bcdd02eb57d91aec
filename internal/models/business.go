package models

import (
	"time"

	"gorm.io/datatypes"
)

// Business is one row of the tenant directory: an operator account that
// inbound calls resolve to, either by the dialed phone number or by the
// platform workflow ID. KnownNames feeds the redaction allow-list (staff
// and practitioner names the business has registered for anonymization).
type Business struct {
	ID          string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProgramID   *string `gorm:"column:program_id;type:uuid" json:"program_id,omitempty"`
	Name        string  `gorm:"column:name;type:text;not null" json:"name"`
	PhoneNumber string  `gorm:"column:phone_number;type:text;uniqueIndex" json:"phone_number"`
	WorkflowID  string  `gorm:"column:workflow_id;type:text;index" json:"workflow_id,omitempty"`

	// IANA zone for schedule parsing, e.g. "America/Chicago".
	Timezone string `gorm:"column:timezone;type:text" json:"timezone,omitempty"`

	KnownNames datatypes.JSONSlice[string] `gorm:"column:known_names;type:jsonb" json:"known_names,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Business) TableName() string { return "businesses" }
