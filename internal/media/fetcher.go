package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/pkg/file"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// Fetcher downloads media for a video URL into the scratch directory using
// the local yt-dlp binary. Output files are namespaced by VideoID plus a
// per-run suffix so concurrent jobs never collide on a shared path.
type Fetcher struct {
	ytDlpPath  string
	scratchDir string
	runner     commandRunner
	glob       func(pattern string) ([]string, error)
}

func NewFetcher(ytDlpPath, scratchDir string) *Fetcher {
	return &Fetcher{
		ytDlpPath:  ytDlpPath,
		scratchDir: scratchDir,
		runner:     &execRunner{},
		glob:       filepath.Glob,
	}
}

// Fetch downloads the best audio-only stream (falling back to a full video
// container) and returns the local file. Network or platform errors surface
// as ErrSourceUnavailable; a missing or zero-byte output file surfaces as
// ErrDownloadIncomplete. Both are transient and are retried by the caller.
func (f *Fetcher) Fetch(ctx context.Context, url string, id source.VideoID) (MediaFile, error) {
	if err := file.EnsureDir(f.scratchDir); err != nil {
		return MediaFile{}, fmt.Errorf("create scratch dir: %w", err)
	}

	stem := fmt.Sprintf("%s-%s", id, uuid.NewString()[:8])
	template := filepath.Join(f.scratchDir, stem+".%(ext)s")

	args := f.fetchArgs(url, template)
	log.Info("Fetching media for video %s", id)

	result, err := f.runner.Run(ctx, f.ytDlpPath, args...)
	if err != nil {
		log.Error("yt-dlp failed for video %s (exit=%d): %s", id, result.ExitCode, strings.TrimSpace(result.Stderr))
		return MediaFile{}, fmt.Errorf("%w: yt-dlp: %v", ErrSourceUnavailable, err)
	}

	matches, err := f.glob(filepath.Join(f.scratchDir, stem+".*"))
	if err != nil {
		return MediaFile{}, fmt.Errorf("scan scratch dir: %w", err)
	}
	if len(matches) == 0 {
		return MediaFile{}, fmt.Errorf("%w: no output file for video %s", ErrDownloadIncomplete, id)
	}

	path := matches[0]
	if file.SizeOf(path) == 0 {
		return MediaFile{}, fmt.Errorf("%w: zero-byte output %s", ErrDownloadIncomplete, filepath.Base(path))
	}

	media := MediaFile{Path: path, Kind: detectKind(path)}
	log.Info("Fetched %s media for video %s: %s", media.Kind, id, filepath.Base(path))
	return media, nil
}

func (f *Fetcher) fetchArgs(url, outputTemplate string) []string {
	return []string{
		"-f", "bestaudio/best",
		"-o", outputTemplate,
		"--no-playlist",
		"--no-warnings",
		url,
	}
}
