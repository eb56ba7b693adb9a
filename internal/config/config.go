package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// HTTP Configuration:
// - HTTP_ADDR: listen address (default: :8080)
//
// Storage Configuration:
// - DB_PATH: SQLite database path (default: data/vidpoint.db)
// - SCRATCH_DIR: scratch directory for downloaded media (default: scratch)
// - OUTPUT_DIR: directory for rendered decks (default: decks)
//
// Tool Configuration:
// - YTDLP_PATH: yt-dlp binary (default: yt-dlp)
// - FFMPEG_PATH: ffmpeg binary (default: ffmpeg)
// - WHISPER_PATH: whisper-cli binary (default: whisper-cli)
// - WHISPER_MODEL: whisper model file (default: models/ggml-base.bin)
//
// LLM Configuration (generative analyzer only):
// - LLM_API_KEY: API key for the LLM provider
// - LLM_API_URL: API endpoint URL (default: https://api.openai.com/v1)
// - LLM_MODEL: Model name to use (default: gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 500)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.5)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
//
// Pipeline Configuration:
// - PIPELINE_WORKERS: background workers (default: 2)
// - PIPELINE_NUM_POINTS: key points per video (default: 6)
// - PIPELINE_POINTS_PER_SLIDE: bullets per content slide (default: 2)
// - PIPELINE_ANALYZER: "extractive" or "generative" (default: extractive)
// - PIPELINE_FETCH_RETRIES: download attempts (default: 3)
// - PIPELINE_STAGE_TIMEOUT: per-stage timeout in seconds (default: 600)
//
// Retention Configuration:
// - RETENTION_SCRATCH_TTL_HOURS: scratch file TTL (default: 24)
// - RETENTION_MAX_TERMINAL_JOBS: terminal jobs kept in memory (default: 1000)
// - RETENTION_SWEEP_CRON: sweep schedule (default: "0 * * * *")

type Config struct {
	HTTP      HTTPConfig      `json:"http"`
	Storage   StorageConfig   `json:"storage"`
	Tools     ToolsConfig     `json:"tools"`
	LLM       LLMConfig       `json:"llm"`
	Pipeline  PipelineConfig  `json:"pipeline"`
	Retention RetentionConfig `json:"retention"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type StorageConfig struct {
	DBPath     string `json:"db_path"`
	ScratchDir string `json:"scratch_dir"`
	OutputDir  string `json:"output_dir"`
}

// ToolsConfig holds paths of the external binaries the pipeline shells out to.
type ToolsConfig struct {
	YtDlpPath    string `json:"ytdlp_path"`
	FfmpegPath   string `json:"ffmpeg_path"`
	WhisperPath  string `json:"whisper_path"`
	WhisperModel string `json:"whisper_model"`
}

// LLMConfig holds the configuration for the LLM client
// Supports any OpenAI-compatible provider
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
}

type PipelineConfig struct {
	Workers         int    `json:"workers"`
	NumPoints       int    `json:"num_points"`
	PointsPerSlide  int    `json:"points_per_slide"`
	Analyzer        string `json:"analyzer"`
	FetchRetries    int    `json:"fetch_retries"`
	StageTimeoutSec int    `json:"stage_timeout_sec"`
}

type RetentionConfig struct {
	ScratchTTLHours uint   `json:"scratch_ttl_hours"`
	MaxTerminalJobs int    `json:"max_terminal_jobs"`
	SweepCron       string `json:"sweep_cron"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		HTTP: HTTPConfig{
			Addr: getEnvString("HTTP_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			DBPath:     getEnvString("DB_PATH", "data/vidpoint.db"),
			ScratchDir: getEnvString("SCRATCH_DIR", "scratch"),
			OutputDir:  getEnvString("OUTPUT_DIR", "decks"),
		},
		Tools: ToolsConfig{
			YtDlpPath:    getEnvString("YTDLP_PATH", "yt-dlp"),
			FfmpegPath:   getEnvString("FFMPEG_PATH", "ffmpeg"),
			WhisperPath:  getEnvString("WHISPER_PATH", "whisper-cli"),
			WhisperModel: getEnvString("WHISPER_MODEL", "models/ggml-base.bin"),
		},
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://api.openai.com/v1"),
			Model:       getEnvString("LLM_MODEL", "gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 500),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.5),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
		},
		Pipeline: PipelineConfig{
			Workers:         getEnvInt("PIPELINE_WORKERS", 2),
			NumPoints:       getEnvInt("PIPELINE_NUM_POINTS", 6),
			PointsPerSlide:  getEnvInt("PIPELINE_POINTS_PER_SLIDE", 2),
			Analyzer:        getEnvString("PIPELINE_ANALYZER", "extractive"),
			FetchRetries:    getEnvInt("PIPELINE_FETCH_RETRIES", 3),
			StageTimeoutSec: getEnvInt("PIPELINE_STAGE_TIMEOUT", 600),
		},
		Retention: RetentionConfig{
			ScratchTTLHours: uint(getEnvInt("RETENTION_SCRATCH_TTL_HOURS", 24)),
			MaxTerminalJobs: getEnvInt("RETENTION_MAX_TERMINAL_JOBS", 1000),
			SweepCron:       getEnvString("RETENTION_SWEEP_CRON", "0 * * * *"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	if c.Pipeline.NumPoints <= 0 {
		return fmt.Errorf("PIPELINE_NUM_POINTS must be positive")
	}
	if c.Pipeline.PointsPerSlide <= 0 {
		return fmt.Errorf("PIPELINE_POINTS_PER_SLIDE must be positive")
	}
	switch c.Pipeline.Analyzer {
	case "extractive":
	case "generative":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the generative analyzer")
		}
	default:
		return fmt.Errorf("unknown analyzer %q", c.Pipeline.Analyzer)
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
