package jobs

import (
	"context"
	"sort"
	"sync"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/internal/transcribe"
)

// MemoryStore is an in-memory Store used by tests and single-process setups
// that do not need durability.
type MemoryStore struct {
	mu          sync.Mutex
	jobs        map[source.VideoID]*ProcessingJob
	transcripts map[source.VideoID]transcribe.Transcript
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:        make(map[source.VideoID]*ProcessingJob),
		transcripts: make(map[source.VideoID]transcribe.Transcript),
	}
}

func (s *MemoryStore) CreateJobIfAbsent(_ context.Context, job *ProcessingJob) (*ProcessingJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[job.VideoID]; ok {
		return cloneJob(existing), false, nil
	}
	s.jobs[job.VideoID] = cloneJob(job)
	return cloneJob(job), true, nil
}

func (s *MemoryStore) GetJob(_ context.Context, id source.VideoID) (*ProcessingJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false, nil
	}
	return cloneJob(job), true, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, job *ProcessingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.VideoID]; !ok {
		return ErrUnknownJob
	}
	s.jobs[job.VideoID] = cloneJob(job)
	return nil
}

func (s *MemoryStore) ListActiveJobs(_ context.Context) ([]*ProcessingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]*ProcessingJob, 0)
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			active = append(active, cloneJob(job))
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartedAt.Before(active[j].StartedAt)
	})
	return active, nil
}

func (s *MemoryStore) PutTranscript(_ context.Context, transcript transcribe.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts[transcript.VideoID] = transcript
	return nil
}

func (s *MemoryStore) GetTranscript(_ context.Context, id source.VideoID) (transcribe.Transcript, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript, ok := s.transcripts[id]
	return transcript, ok, nil
}

func (s *MemoryStore) PruneTerminalJobs(_ context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	terminal := make([]*ProcessingJob, 0)
	for _, job := range s.jobs {
		if job.Status.Terminal() {
			terminal = append(terminal, job)
		}
	}
	if len(terminal) <= keep {
		return 0, nil
	}

	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].UpdatedAt.Before(terminal[j].UpdatedAt)
	})

	var pruned int64
	for _, job := range terminal[:len(terminal)-keep] {
		delete(s.jobs, job.VideoID)
		delete(s.transcripts, job.VideoID)
		pruned++
	}
	return pruned, nil
}
