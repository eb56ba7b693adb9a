package jobs

import (
	"context"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/internal/transcribe"
)

// Store persists job records and cached transcripts keyed by VideoID.
type Store interface {
	// CreateJobIfAbsent inserts job unless a record for its VideoID already
	// exists. It returns the stored record and whether this call created it.
	// The insert-if-absent must be atomic so concurrent first requests for
	// the same VideoID never create two Pending records.
	CreateJobIfAbsent(ctx context.Context, job *ProcessingJob) (*ProcessingJob, bool, error)

	GetJob(ctx context.Context, id source.VideoID) (*ProcessingJob, bool, error)

	UpdateJob(ctx context.Context, job *ProcessingJob) error

	// ListActiveJobs returns all non-terminal jobs, oldest first. It feeds
	// startup recovery after a crash.
	ListActiveJobs(ctx context.Context) ([]*ProcessingJob, error)

	// PutTranscript caches a transcript; GetTranscript serves the
	// skip-if-exists logic that bypasses fetch and transcription.
	PutTranscript(ctx context.Context, transcript transcribe.Transcript) error
	GetTranscript(ctx context.Context, id source.VideoID) (transcribe.Transcript, bool, error)

	// PruneTerminalJobs deletes the oldest terminal jobs beyond keep,
	// returning how many were removed.
	PruneTerminalJobs(ctx context.Context, keep int) (int64, error)
}
