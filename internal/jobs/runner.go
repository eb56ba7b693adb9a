package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vidpoint/vidpoint/internal/analyze"
	"github.com/vidpoint/vidpoint/internal/deck"
	"github.com/vidpoint/vidpoint/internal/media"
	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/internal/transcribe"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// MediaFetcher downloads the source media for a video into scratch storage.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string, id source.VideoID) (media.MediaFile, error)
}

// AudioNormalizer converts fetched media into transcription-ready audio.
type AudioNormalizer interface {
	Normalize(ctx context.Context, m media.MediaFile) (media.AudioFile, error)
}

// RunnerConfig tunes the pipeline stages.
type RunnerConfig struct {
	NumPoints      int
	PointsPerSlide int
	FetchRetries   int
	StageTimeout   time.Duration
}

// Runner executes the full pipeline for one video: fetch, normalize,
// transcribe, analyze, compose, render. It is the queue's Executor.
type Runner struct {
	cfg         RunnerConfig
	tracker     *Tracker
	store       Store
	fetcher     MediaFetcher
	normalizer  AudioNormalizer
	transcriber transcribe.Transcriber
	analyzer    analyze.Analyzer
	renderer    deck.Renderer
	backoff     func(attempt int) time.Duration
}

func NewRunner(
	cfg RunnerConfig,
	tracker *Tracker,
	store Store,
	fetcher MediaFetcher,
	normalizer AudioNormalizer,
	transcriber transcribe.Transcriber,
	analyzer analyze.Analyzer,
	renderer deck.Renderer,
) *Runner {
	if cfg.FetchRetries < 1 {
		cfg.FetchRetries = 1
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 10 * time.Minute
	}
	return &Runner{
		cfg:         cfg,
		tracker:     tracker,
		store:       store,
		fetcher:     fetcher,
		normalizer:  normalizer,
		transcriber: transcriber,
		analyzer:    analyzer,
		renderer:    renderer,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

// Execute runs the pipeline for task and records progress on the tracker.
// It never panics out to the worker; a panic becomes a failed job.
func (r *Runner) Execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pipeline panic for video %s: %v", task.VideoID, rec)
			r.fail(ctx, task.VideoID, "internal processing error")
		}
	}()

	transcript, cached, err := r.store.GetTranscript(ctx, task.VideoID)
	if err != nil {
		log.Warn("transcript lookup for %s failed: %v", task.VideoID, err)
		cached = false
	}

	if !cached {
		transcript, err = r.produceTranscript(ctx, task)
		if err != nil {
			return err
		}
		if err := r.store.PutTranscript(ctx, transcript); err != nil {
			log.Warn("caching transcript for %s failed: %v", task.VideoID, err)
		}
	}

	if _, err := r.tracker.Advance(ctx, task.VideoID, StatusExtracting); err != nil {
		return err
	}
	points, summary, err := r.analyzeStage(ctx, transcript)
	if err != nil {
		if errors.Is(err, analyze.ErrNoKeyPointsExtracted) {
			r.fail(ctx, task.VideoID, "no key points could be extracted from this video")
		} else {
			r.fail(ctx, task.VideoID, "key point extraction failed")
		}
		return err
	}

	if _, err := r.tracker.Advance(ctx, task.VideoID, StatusComposing); err != nil {
		return err
	}
	resultRef, err := r.composeStage(ctx, task.VideoID, points, summary)
	if err != nil {
		r.fail(ctx, task.VideoID, "slide deck creation failed")
		return err
	}

	_, err = r.tracker.Advance(ctx, task.VideoID, StatusCompleted, WithResultRef(resultRef))
	return err
}

// produceTranscript runs the download, normalize and transcribe stages and
// removes scratch files before returning.
func (r *Runner) produceTranscript(ctx context.Context, task Task) (transcribe.Transcript, error) {
	if _, err := r.tracker.Advance(ctx, task.VideoID, StatusDownloading); err != nil {
		return transcribe.Transcript{}, err
	}

	mediaFile, err := r.fetchStage(ctx, task)
	if err != nil {
		if errors.Is(err, media.ErrSourceUnavailable) {
			r.fail(ctx, task.VideoID, "video could not be downloaded")
		} else {
			r.fail(ctx, task.VideoID, "download produced no usable media")
		}
		return transcribe.Transcript{}, err
	}
	defer removeScratch(mediaFile.Path)

	audio, err := r.normalizeStage(ctx, mediaFile)
	if err != nil {
		r.fail(ctx, task.VideoID, "audio conversion failed")
		return transcribe.Transcript{}, err
	}
	if audio.Path != mediaFile.Path {
		defer removeScratch(audio.Path)
	}

	if _, err := r.tracker.Advance(ctx, task.VideoID, StatusTranscribing); err != nil {
		return transcribe.Transcript{}, err
	}
	transcript, err := r.transcribeStage(ctx, audio, task.VideoID)
	if err != nil {
		r.fail(ctx, task.VideoID, "transcription failed or produced no usable speech")
		return transcribe.Transcript{}, err
	}
	return transcript, nil
}

func (r *Runner) fetchStage(ctx context.Context, task Task) (media.MediaFile, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.FetchRetries; attempt++ {
		stageCtx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
		mediaFile, err := r.fetcher.Fetch(stageCtx, task.URL, task.VideoID)
		cancel()
		if err == nil {
			return mediaFile, nil
		}
		lastErr = err
		if attempt < r.cfg.FetchRetries {
			log.Warn("fetch attempt %d/%d for %s failed: %v", attempt, r.cfg.FetchRetries, task.VideoID, err)
			select {
			case <-ctx.Done():
				return media.MediaFile{}, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}
	return media.MediaFile{}, lastErr
}

func (r *Runner) normalizeStage(ctx context.Context, m media.MediaFile) (media.AudioFile, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	defer cancel()
	return r.normalizer.Normalize(stageCtx, m)
}

func (r *Runner) transcribeStage(ctx context.Context, audio media.AudioFile, id source.VideoID) (transcribe.Transcript, error) {
	// Transcription is the most expensive stage, so one retry only.
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		stageCtx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
		transcript, err := r.transcriber.Transcribe(stageCtx, audio, id)
		cancel()
		if err == nil {
			return transcript, nil
		}
		lastErr = err
		// A short or empty transcript will not improve on retry.
		if errors.Is(err, transcribe.ErrTranscriptionFailed) {
			break
		}
	}
	return transcribe.Transcript{}, lastErr
}

func (r *Runner) analyzeStage(ctx context.Context, transcript transcribe.Transcript) ([]analyze.KeyPoint, analyze.Summary, error) {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	defer cancel()

	points, summary, err := r.analyzer.Extract(stageCtx, transcript, r.cfg.NumPoints)
	if err != nil {
		return nil, analyze.Summary{}, err
	}
	if len(points) == 0 {
		return nil, analyze.Summary{}, analyze.ErrNoKeyPointsExtracted
	}
	return points, summary, nil
}

func (r *Runner) composeStage(ctx context.Context, id source.VideoID, points []analyze.KeyPoint, summary analyze.Summary) (string, error) {
	slides, err := deck.Compose(points, summary, r.cfg.PointsPerSlide)
	if err != nil {
		return "", err
	}

	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout)
	defer cancel()
	return r.renderer.Render(stageCtx, id, slides)
}

func (r *Runner) fail(ctx context.Context, id source.VideoID, message string) {
	if err := r.tracker.Fail(ctx, id, message); err != nil {
		log.Error("marking job %s failed: %v", id, err)
	}
}

func removeScratch(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("removing scratch file %s: %v", path, err)
	}
}
