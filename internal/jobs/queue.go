package jobs

import (
	"context"
	"sync"

	"github.com/vidpoint/vidpoint/internal/source"
	"github.com/vidpoint/vidpoint/pkg/log"
)

// Executor processes one submitted video end to end.
type Executor func(ctx context.Context, task Task) error

// Task is the unit of work handed to workers.
type Task struct {
	VideoID source.VideoID
	URL     string
}

// Queue fans submitted videos out to a fixed worker pool. A video is held
// in flight from Submit until its executor returns, so at most one task per
// video runs or waits at any time.
type Queue struct {
	workerCount int

	mu       sync.Mutex
	inFlight map[source.VideoID]bool
	started  bool

	pending  chan Task
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewQueue(workerCount int) *Queue {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Queue{
		workerCount: workerCount,
		inFlight:    make(map[source.VideoID]bool),
		pending:     make(chan Task, 1024),
		stopCh:      make(chan struct{}),
	}
}

// Submit enqueues the video for processing. It returns false when the video
// is already queued or running, or when the queue is saturated.
func (q *Queue) Submit(id source.VideoID, url string) bool {
	q.mu.Lock()
	if q.inFlight[id] {
		q.mu.Unlock()
		return false
	}
	q.inFlight[id] = true
	q.mu.Unlock()

	select {
	case q.pending <- Task{VideoID: id, URL: url}:
		return true
	default:
		q.release(id)
		log.Warn("queue saturated, rejecting video %s", id)
		return false
	}
}

func (q *Queue) Start(exec Executor) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(exec)
	}
}

func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
		q.wg.Wait()
	})
}

func (q *Queue) worker(exec Executor) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		case task := <-q.pending:
			if err := exec(context.Background(), task); err != nil {
				log.Error("processing video %s failed: %v", task.VideoID, err)
			}
			q.release(task.VideoID)
		}
	}
}

func (q *Queue) release(id source.VideoID) {
	q.mu.Lock()
	delete(q.inFlight, id)
	q.mu.Unlock()
}
