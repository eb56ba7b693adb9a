package jobs

import (
	"errors"
	"time"

	"github.com/vidpoint/vidpoint/internal/source"
)

// ErrUnknownJob is returned when a mutation targets a VideoID that has no
// persisted job record.
var ErrUnknownJob = errors.New("unknown job")

type Status string

// Pipeline statuses in execution order. Transitions are one-directional;
// Completed and Failed are terminal, and Failed is reachable from any
// non-terminal status.
const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusTranscribing Status = "transcribing"
	StatusExtracting   Status = "extracting"
	StatusComposing    Status = "composing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var statusRank = map[Status]int{
	StatusPending:      0,
	StatusDownloading:  1,
	StatusTranscribing: 2,
	StatusExtracting:   3,
	StatusComposing:    4,
	StatusCompleted:    5,
}

// stepNames is the free-text substate shown to polling clients.
var stepNames = map[Status]string{
	StatusPending:      "starting",
	StatusDownloading:  "downloading",
	StatusTranscribing: "transcribing",
	StatusExtracting:   "extracting",
	StatusComposing:    "creating_slides",
	StatusCompleted:    "done",
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// canAdvance reports whether a transition from s to next moves strictly
// forward. Terminal states accept nothing.
func (s Status) canAdvance(next Status) bool {
	if s.Terminal() {
		return false
	}
	nextRank, ok := statusRank[next]
	if !ok {
		return false
	}
	return nextRank > statusRank[s]
}

// ProcessingJob is the persisted record for one VideoID. It is created once
// on the first request, mutated only by the pipeline runner (single writer
// per VideoID), and kept after reaching a terminal state as a durable cache.
type ProcessingJob struct {
	VideoID   source.VideoID `json:"video_id"`
	SourceURL string         `json:"source_url,omitempty"`
	Status    Status         `json:"status"`
	Step      string         `json:"step,omitempty"`
	Error     string         `json:"error,omitempty"`
	ResultRef string         `json:"result_ref,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func cloneJob(job *ProcessingJob) *ProcessingJob {
	if job == nil {
		return nil
	}
	tmp := *job
	return &tmp
}
