package stt

import "context"

// Provider transcribes a call recording by its URI. Used as the terminal
// report fallback when the platform delivers a recording but no transcript.
type Provider interface {
	TranscribeURI(ctx context.Context, uri, language string) (text string, confidence float64, err error)
	Close() error
}
