package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/vidpoint/vidpoint/internal/analyze"
	"github.com/vidpoint/vidpoint/internal/config"
	"github.com/vidpoint/vidpoint/internal/deck"
	"github.com/vidpoint/vidpoint/internal/httpapi"
	"github.com/vidpoint/vidpoint/internal/jobs"
	"github.com/vidpoint/vidpoint/internal/llm"
	"github.com/vidpoint/vidpoint/internal/media"
	"github.com/vidpoint/vidpoint/internal/persistence"
	"github.com/vidpoint/vidpoint/internal/transcribe"
	"github.com/vidpoint/vidpoint/pkg/file"
	"github.com/vidpoint/vidpoint/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("loading configuration: %v", err)
	}

	for _, dir := range []string{cfg.Storage.ScratchDir, cfg.Storage.OutputDir} {
		if err := file.EnsureDir(dir); err != nil {
			log.Fatal("creating directory %s: %v", dir, err)
		}
	}

	store, err := persistence.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal("opening job store: %v", err)
	}
	defer store.Close()

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		log.Fatal("building analyzer: %v", err)
	}

	tracker := jobs.NewTracker(store)
	runner := jobs.NewRunner(
		jobs.RunnerConfig{
			NumPoints:      cfg.Pipeline.NumPoints,
			PointsPerSlide: cfg.Pipeline.PointsPerSlide,
			FetchRetries:   cfg.Pipeline.FetchRetries,
			StageTimeout:   time.Duration(cfg.Pipeline.StageTimeoutSec) * time.Second,
		},
		tracker,
		store,
		media.NewFetcher(cfg.Tools.YtDlpPath, cfg.Storage.ScratchDir),
		media.NewNormalizer(cfg.Tools.FfmpegPath),
		transcribe.NewWhisperTranscriber(cfg.Tools.WhisperPath, cfg.Tools.WhisperModel),
		analyzer,
		deck.NewJSONRenderer(cfg.Storage.OutputDir),
	)

	queue := jobs.NewQueue(cfg.Pipeline.Workers)
	queue.Start(runner.Execute)
	defer queue.Stop()

	// Jobs interrupted by a previous crash are still non-terminal in the
	// store; demote them to pending and put them back on the queue.
	recovered, err := tracker.RecoverInterrupted(context.Background())
	if err != nil {
		log.Fatal("recovering interrupted jobs: %v", err)
	}
	for _, task := range recovered {
		if task.URL == "" || !queue.Submit(task.VideoID, task.URL) {
			log.Warn("could not re-enqueue recovered job %s", task.VideoID)
			if err := tracker.Fail(context.Background(), task.VideoID, "interrupted job could not be resumed"); err != nil {
				log.Error("failing unresumable job %s: %v", task.VideoID, err)
			}
		}
	}
	if len(recovered) > 0 {
		log.Info("re-enqueued %d interrupted jobs", len(recovered))
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Retention.SweepCron, func() {
		runRetentionSweep(cfg, store)
	}); err != nil {
		log.Fatal("scheduling retention sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := httpapi.NewServer(tracker, queue)
	go func() {
		log.Info("listening on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(cfg.HTTP.Addr); err != nil {
			log.Error("http server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown: %v", err)
	}
}

func buildAnalyzer(cfg *config.Config) (analyze.Analyzer, error) {
	switch cfg.Pipeline.Analyzer {
	case "generative":
		client, err := llm.NewClient(&llm.Config{
			APIKey:      cfg.LLM.APIKey,
			APIURL:      cfg.LLM.APIURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return analyze.NewGenerativeAnalyzer(client), nil
	default:
		return analyze.NewExtractiveAnalyzer(), nil
	}
}

// runRetentionSweep removes stale scratch files and trims old terminal jobs.
func runRetentionSweep(cfg *config.Config, store *persistence.SQLiteStore) {
	cutoff := time.Now().Add(-time.Duration(cfg.Retention.ScratchTTLHours) * time.Hour)
	stale, err := file.FindOlderThan(cfg.Storage.ScratchDir, cutoff)
	if err != nil {
		log.Warn("scanning scratch directory: %v", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("removing stale scratch file %s: %v", path, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pruned, err := store.PruneTerminalJobs(ctx, cfg.Retention.MaxTerminalJobs)
	if err != nil {
		log.Warn("pruning terminal jobs: %v", err)
		return
	}
	if len(stale) > 0 || pruned > 0 {
		log.Info("retention sweep removed %d scratch files and %d jobs", len(stale), pruned)
	}
}
