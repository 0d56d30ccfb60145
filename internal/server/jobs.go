package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// JobStatus is the lifecycle state of an export job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Job is a snapshot of an asynchronous export. Progress runs 0-100; Output
// names the finished file in the exports directory once Status is done.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// jobFunc performs the export, reporting progress through the callback and
// returning the output filename.
type jobFunc func(ctx context.Context, progress func(int)) (string, error)

type queuedJob struct {
	id string
	fn jobFunc
}

// JobManager runs export jobs one at a time on a single worker goroutine.
// Animations render dozens of frames each, so serializing them keeps one
// big export from starving interactive previews of CPU.
type JobManager struct {
	logger *log.Logger

	mu   sync.Mutex
	jobs map[string]*Job

	queue chan queuedJob
	wg    sync.WaitGroup
}

// NewJobManager creates a manager and starts its worker. The worker stops
// when ctx is cancelled; queued jobs that never ran are marked failed.
func NewJobManager(ctx context.Context, logger *log.Logger) *JobManager {
	m := &JobManager{
		logger: logger,
		jobs:   make(map[string]*Job),
		queue:  make(chan queuedJob, 64),
	}
	m.wg.Add(1)
	go m.worker(ctx)
	return m
}

// Submit queues an export and returns its job ID immediately.
func (m *JobManager) Submit(fn jobFunc) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	job := &Job{ID: id, Status: JobQueued, CreatedAt: time.Now()}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	select {
	case m.queue <- queuedJob{id: id, fn: fn}:
		return id, nil
	default:
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
		return "", errors.New(errors.ErrCodeInternal, "export queue is full")
	}
}

// Get returns a snapshot of the job with the given ID.
func (m *JobManager) Get(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	return *job, nil
}

// Wait blocks until the worker has exited. Call after cancelling the
// manager's context during shutdown.
func (m *JobManager) Wait() {
	m.wg.Wait()
}

func (m *JobManager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			m.drain()
			return
		case q := <-m.queue:
			m.run(ctx, q)
		}
	}
}

func (m *JobManager) run(ctx context.Context, q queuedJob) {
	m.update(q.id, func(j *Job) {
		j.Status = JobProcessing
	})

	start := time.Now()
	output, err := q.fn(ctx, func(pct int) {
		m.update(q.id, func(j *Job) {
			if pct < 0 {
				pct = 0
			}
			if pct > 100 {
				pct = 100
			}
			j.Progress = pct
		})
	})

	if err != nil {
		m.logger.Error("export job failed", "job", q.id, "err", err)
		m.update(q.id, func(j *Job) {
			j.Status = JobError
			j.Error = errors.UserMessage(err)
		})
		return
	}

	m.logger.Info("export job finished", "job", q.id, "output", output, "duration", time.Since(start))
	m.update(q.id, func(j *Job) {
		j.Status = JobDone
		j.Progress = 100
		j.Output = output
	})
}

// drain fails any jobs still queued at shutdown.
func (m *JobManager) drain() {
	for {
		select {
		case q := <-m.queue:
			m.update(q.id, func(j *Job) {
				j.Status = JobError
				j.Error = "server shutting down"
			})
		default:
			return
		}
	}
}

func (m *JobManager) update(id string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}
