package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vidpoint/vidpoint/internal/media"
	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/pkg/log"
)

type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// WhisperTranscriber shells out to a local whisper.cpp CLI binary and reads
// back the exported .txt transcript.
type WhisperTranscriber struct {
	whisperPath string
	modelPath   string
	runner      commandRunner
	readFile    func(name string) ([]byte, error)
}

func NewWhisperTranscriber(whisperPath, modelPath string) *WhisperTranscriber {
	return &WhisperTranscriber{
		whisperPath: whisperPath,
		modelPath:   modelPath,
		runner:      &execRunner{},
		readFile:    os.ReadFile,
	}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio media.AudioFile, id source.VideoID) (Transcript, error) {
	textBase := strings.TrimSuffix(audio.Path, filepath.Ext(audio.Path))
	args := whisperArgs(t.modelPath, audio.Path, textBase)

	log.Info("Transcribing audio for video %s", id)
	result, err := t.runner.Run(ctx, t.whisperPath, args...)
	if err != nil {
		log.Error("whisper failed for video %s (exit=%d): %s", id, result.ExitCode, strings.TrimSpace(result.Stderr))
		// Exec failures are transient; callers may retry them.
		return Transcript{}, fmt.Errorf("whisper: %w", err)
	}

	content, err := t.readFile(textBase + ".txt")
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	transcript, err := newTranscript(id, string(content))
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	log.Info("Transcribed video %s: %d chars, language=%s", id, len(transcript.Text), transcript.Language)
	return transcript, nil
}

// whisperArgs builds whisper.cpp args for txt transcript export.
func whisperArgs(modelPath, audioPath, textBase string) []string {
	return []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", textBase,
		"-otxt",
	}
}
