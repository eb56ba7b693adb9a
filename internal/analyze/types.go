package analyze

import (
	"context"
	"errors"

	"github.com/vidpoint/vidpoint/internal/transcribe"
)

// ErrNoKeyPointsExtracted is reported by the pipeline runner when an analyzer
// returns no valid points. It is content-related and never retried: the
// transcript itself lacks extractable structure.
var ErrNoKeyPointsExtracted = errors.New("no key points extracted")

// KeyPoint is one salient idea from the transcript. Score is used for
// selection only; Position preserves transcript order for presentation.
type KeyPoint struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

// Summary is a short natural-language digest of the whole transcript.
type Summary struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Analyzer derives ranked key points and a summary from a transcript.
// Implementations return an empty point slice, not an error, when the
// transcript yields nothing extractable; errors are reserved for backend
// failures such as an unreachable generation API.
type Analyzer interface {
	Extract(ctx context.Context, transcript transcribe.Transcript, n int) ([]KeyPoint, Summary, error)
}
