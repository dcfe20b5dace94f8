package metrics

import (
	"strings"

	"coachlens/internal/app/model"
)

// Base metric keys computed directly from the transcript, before any
// analysis runs.
const (
	KeyWordCount       = "word_count"
	KeyDurationSeconds = "duration_seconds"
	KeySpeakerCount    = "speaker_count"
	KeySpeakerTurns    = "speaker_turns"
)

// TranscriptBase derives the countable metrics from a transcript: total
// words, session duration, distinct speakers, and speaker turns (changes of
// speaker between consecutive utterances).
func TranscriptBase(t *model.Transcript) map[string]float64 {
	words := 0
	speakers := make(map[string]struct{})
	turns := 0
	prev := ""
	for _, u := range t.Utterances {
		words += len(strings.Fields(u.Text))
		speakers[u.Speaker] = struct{}{}
		if prev != "" && u.Speaker != prev {
			turns++
		}
		prev = u.Speaker
	}
	if words == 0 {
		words = len(strings.Fields(t.Text))
	}
	return map[string]float64{
		KeyWordCount:       float64(words),
		KeyDurationSeconds: float64(t.DurationSeconds),
		KeySpeakerCount:    float64(len(speakers)),
		KeySpeakerTurns:    float64(turns),
	}
}
