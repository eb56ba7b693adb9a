package transcribe

import (
	"context"
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/vidpoint/vidpoint/internal/media"
	"github.com/vidpoint/vidpoint/internal/source"
)

// ErrTranscriptionFailed marks content failures: empty, whitespace-only or
// too-short output. A transcript below minTranscriptWords cannot support
// key-point extraction, and a retry will not improve it, so callers must not
// retry this error. Transient backend faults (a killed process, a non-zero
// exit) surface as plain wrapped errors instead and stay retryable.
var ErrTranscriptionFailed = errors.New("transcription failed")

const minTranscriptWords = 10

// Transcript is immutable once produced and is the caching unit for
// skip-if-exists logic: a cached transcript for a VideoID short-circuits the
// fetch, normalize and transcribe stages entirely.
type Transcript struct {
	VideoID  source.VideoID `json:"video_id"`
	Text     string         `json:"text"`
	Language string         `json:"language"`
}

// Transcriber converts audio into text. Backends may be local models or
// remote APIs; the interface hides the distinction.
type Transcriber interface {
	Transcribe(ctx context.Context, audio media.AudioFile, id source.VideoID) (Transcript, error)
}

// newTranscript validates raw backend output and attaches the detected
// language. Shared by all backends so the short-transcript rule is uniform.
func newTranscript(id source.VideoID, raw string) (Transcript, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Transcript{}, errors.New("empty transcript")
	}
	if words := len(strings.Fields(text)); words < minTranscriptWords {
		return Transcript{}, errors.New("transcript too short")
	}

	info := whatlanggo.Detect(text)
	return Transcript{
		VideoID:  id,
		Text:     text,
		Language: info.Lang.Iso6391(),
	}, nil
}
