package openai

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"coachlens/internal/app/model"
)

// Transcriber implements api.Transcriber on the OpenAI transcription
// endpoint. The verbose JSON format gives per-segment timestamps; whisper
// does not diarize, so all utterances carry a single speaker label and
// speaker-dependent metrics degrade gracefully.
type Transcriber struct {
	client *openai.Client
}

func NewTranscriber(client *openai.Client) *Transcriber {
	return &Transcriber{client: client}
}

func (t *Transcriber) Transcribe(ctx context.Context, sourceURL string) (*model.Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}

	filename := path.Base(strings.SplitN(sourceURL, "?", 2)[0])
	audioResp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   resp.Body,
		FilePath: filename,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	utterances := make([]model.Utterance, 0, len(audioResp.Segments))
	for _, seg := range audioResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		utterances = append(utterances, model.Utterance{
			Speaker: "Speaker A",
			StartMS: int64(seg.Start * 1000),
			EndMS:   int64(seg.End * 1000),
			Text:    text,
		})
	}

	return &model.Transcript{
		ID:              uuid.New().String(),
		Text:            audioResp.Text,
		Utterances:      utterances,
		DurationSeconds: int(audioResp.Duration),
		CreatedAt:       time.Now().UTC(),
	}, nil
}
