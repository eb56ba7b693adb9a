package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vidpoint/vidpoint/pkg/file"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// Normalizer transcodes fetched media into the mono 16kHz PCM WAV stream the
// transcriber accepts. Re-running on the same input produces an equivalent
// output, and a file that is already WAV passes through untouched.
type Normalizer struct {
	ffmpegPath string
	runner     commandRunner
}

func NewNormalizer(ffmpegPath string) *Normalizer {
	return &Normalizer{
		ffmpegPath: ffmpegPath,
		runner:     &execRunner{},
	}
}

func (n *Normalizer) Normalize(ctx context.Context, media MediaFile) (AudioFile, error) {
	if strings.EqualFold(filepath.Ext(media.Path), ".wav") {
		return AudioFile{Path: media.Path}, nil
	}

	outPath := file.ReplaceExt(media.Path, ".wav")
	args := normalizeArgs(media.Path, outPath)

	result, err := n.runner.Run(ctx, n.ffmpegPath, args...)
	if err != nil {
		log.Error("ffmpeg failed for %s (exit=%d): %s", filepath.Base(media.Path), result.ExitCode, strings.TrimSpace(result.Stderr))
		return AudioFile{}, fmt.Errorf("ffmpeg audio conversion: %w", err)
	}

	if file.SizeOf(outPath) == 0 {
		return AudioFile{}, fmt.Errorf("ffmpeg completed but output %s is missing or empty", filepath.Base(outPath))
	}

	return AudioFile{Path: outPath}, nil
}

// normalizeArgs builds ffmpeg CLI args for mono 16k PCM WAV output.
func normalizeArgs(inputPath, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath,
	}
}
