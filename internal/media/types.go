package media

import (
	"errors"
	"path/filepath"
	"strings"
)

// Transient fetch failures. The pipeline runner retries both a bounded number
// of times before marking the job failed.
var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrDownloadIncomplete = errors.New("download incomplete")
)

type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// MediaFile is the fetcher's output: a local file plus the detected container
// kind, which decides whether the normalizer has to strip a video track.
type MediaFile struct {
	Path string
	Kind Kind
}

// AudioFile is a mono 16kHz PCM WAV stream the transcriber accepts.
type AudioFile struct {
	Path string
}

var audioExts = []string{".m4a", ".mp3", ".wav", ".opus", ".oga", ".ogg", ".aac", ".flac"}

// detectKind classifies a downloaded file by extension. Anything that is not
// a known audio-only container is treated as video and goes through ffmpeg.
func detectKind(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	for _, audioExt := range audioExts {
		if ext == audioExt {
			return KindAudio
		}
	}
	return KindVideo
}
