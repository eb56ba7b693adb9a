package jobs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vidpoint/vidpoint/internal/source"
)

// Mutator applies an extra change to a job during a status transition,
// for example attaching a result reference on completion.
type Mutator func(job *ProcessingJob)

func WithResultRef(ref string) Mutator {
	return func(job *ProcessingJob) {
		job.ResultRef = ref
	}
}

// Tracker owns the job lifecycle on top of a Store. Concurrent GetOrCreate
// calls for the same video collapse into one store round trip.
type Tracker struct {
	store Store
	group singleflight.Group
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{
		store: store,
		now:   time.Now,
	}
}

// GetOrCreate returns the job for id, creating a pending one when absent.
// The second return value reports whether this call created the job.
func (t *Tracker) GetOrCreate(ctx context.Context, id source.VideoID, url string) (*ProcessingJob, bool, error) {
	type result struct {
		job     *ProcessingJob
		created bool
	}

	v, err, _ := t.group.Do(string(id), func() (interface{}, error) {
		now := t.now()
		candidate := &ProcessingJob{
			VideoID:   id,
			SourceURL: url,
			Status:    StatusPending,
			Step:      stepNames[StatusPending],
			StartedAt: now,
			UpdatedAt: now,
		}
		job, created, err := t.store.CreateJobIfAbsent(ctx, candidate)
		if err != nil {
			return nil, err
		}
		return result{job: job, created: created}, nil
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(result)
	return cloneJob(r.job), r.created, nil
}

func (t *Tracker) Get(ctx context.Context, id source.VideoID) (*ProcessingJob, error) {
	job, ok, err := t.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownJob
	}
	return job, nil
}

// Advance moves the job to next. Transitions only run forward through the
// stage order and terminal jobs never change again.
func (t *Tracker) Advance(ctx context.Context, id source.VideoID, next Status, mutators ...Mutator) (*ProcessingJob, error) {
	job, ok, err := t.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownJob
	}
	if !job.Status.canAdvance(next) {
		return nil, fmt.Errorf("job %s: cannot advance from %s to %s", id, job.Status, next)
	}

	job.Status = next
	job.Step = stepNames[next]
	job.UpdatedAt = t.now()
	for _, m := range mutators {
		m(job)
	}
	if err := t.store.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	return cloneJob(job), nil
}

// RecoverInterrupted resets every non-terminal job back to pending and
// returns the tasks to re-enqueue. A crash mid-pipeline otherwise leaves the
// record stuck in an intermediate status that blocks its VideoID forever,
// since later requests only observe the stale snapshot.
func (t *Tracker) RecoverInterrupted(ctx context.Context) ([]Task, error) {
	active, err := t.store.ListActiveJobs(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(active))
	for _, job := range active {
		if job.Status != StatusPending {
			job.Status = StatusPending
			job.Step = stepNames[StatusPending]
			job.UpdatedAt = t.now()
			if err := t.store.UpdateJob(ctx, job); err != nil {
				return tasks, err
			}
		}
		tasks = append(tasks, Task{VideoID: job.VideoID, URL: job.SourceURL})
	}
	return tasks, nil
}

// Fail marks the job failed with a user-facing message. Failing an already
// failed job keeps the first message.
func (t *Tracker) Fail(ctx context.Context, id source.VideoID, message string) error {
	job, ok, err := t.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownJob
	}
	if job.Status.Terminal() {
		return nil
	}

	// Step is left at the stage the job failed in.
	job.Status = StatusFailed
	job.Error = message
	job.UpdatedAt = t.now()
	return t.store.UpdateJob(ctx, job)
}
