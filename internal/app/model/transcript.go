package model

import (
	"fmt"
	"strings"
	"time"
)

// Utterance is one speaker-labeled, timestamped span of the transcript.
type Utterance struct {
	Speaker string `json:"speaker"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// Transcript is the full speaker-labeled transcript of one video. It is
// written once by the transcription stage and never mutated afterwards.
type Transcript struct {
	ID              string      `json:"id" db:"id"`
	VideoID         string      `json:"video_id" db:"video_id"`
	Text            string      `json:"text" db:"text"`
	Utterances      []Utterance `json:"utterances" db:"utterances"`
	WordCount       int         `json:"word_count" db:"word_count"`
	SpeakerCount    int         `json:"speaker_count" db:"speaker_count"`
	DurationSeconds int         `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// FormatLines renders utterances as "[HH:MM:SS] Speaker A: text" lines, the
// shape the analysis prompt expects.
func (t *Transcript) FormatLines() string {
	lines := make([]string, 0, len(t.Utterances))
	for _, u := range t.Utterances {
		total := u.StartMS / 1000
		ts := fmt.Sprintf("[%02d:%02d:%02d]", total/3600, (total%3600)/60, total%60)
		lines = append(lines, fmt.Sprintf("%s %s: %s", ts, u.Speaker, u.Text))
	}
	return strings.Join(lines, "\n")
}
