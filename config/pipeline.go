package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Pipeline holds the ingestion pipeline's own settings, injected explicitly
// rather than read from globals so tests can run with per-case salts.
type Pipeline struct {
	// Salt keys the one-way tokenization. Changing it breaks cross-call
	// linkage for everything already written.
	Salt string

	// StructuredOutputs maps the platform's opaque structured-output IDs
	// to semantic meanings (booking_confirmed, appointment_booked,
	// appointment_rescheduled, appointment_cancelled, upsell_opportunity,
	// call_summary).
	StructuredOutputs map[string]string

	// WebhookSecret guards POST /webhook when set.
	WebhookSecret string

	// TrainingBucket enables the JSONL training export when set.
	TrainingBucket string

	// GCPCredentialsFile is passed to the speech and storage clients when
	// set; otherwise application default credentials apply.
	GCPCredentialsFile string
}

func LoadPipeline() (*Pipeline, error) {
	p := &Pipeline{
		Salt:               os.Getenv("PSEUDONYM_SALT"),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
		TrainingBucket:     os.Getenv("GCS_TRAINING_BUCKET"),
		GCPCredentialsFile: os.Getenv("GCP_CREDENTIALS_FILE"),
		StructuredOutputs:  map[string]string{},
	}
	if p.Salt == "" {
		return nil, errors.New("PSEUDONYM_SALT environment variable is not set")
	}

	if raw := os.Getenv("STRUCTURED_OUTPUT_MAP"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.StructuredOutputs); err != nil {
			return nil, fmt.Errorf("STRUCTURED_OUTPUT_MAP is not valid JSON: %w", err)
		}
	}
	return p, nil
}
