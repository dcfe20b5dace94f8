// Package api defines the narrow contracts to the external transcription and
// analysis services. The pipelines only ever see these two interfaces.
package api

import (
	"context"

	"coachlens/internal/app/model"
)

// Transcriber converts stored media into a speaker-labeled, timestamped
// transcript. The only expected long-blocking call besides analysis; callers
// pass a context so a deadline can be attached.
type Transcriber interface {
	Transcribe(ctx context.Context, sourceURL string) (*model.Transcript, error)
}

// Analyzer sends a prompt to the analysis model and returns its raw text
// response. Parsing into structured findings happens in the analysis
// package, never inside a client.
type Analyzer interface {
	Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}
