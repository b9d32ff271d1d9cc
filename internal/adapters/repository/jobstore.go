package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/types"
	"github.com/okian/playlab/pkg/metrics"
)

const defaultRetention = 10_000

// JobRecord is the stored state of an async job.
type JobRecord struct {
	ID          string
	Kind        model.JobKind
	Status      types.JobStatus
	Result      any
	Err         error
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// JobStore keeps job state in memory. Finished jobs beyond the retention
// limit are evicted oldest first; queued and running jobs are never evicted.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*JobRecord
	finished  *list.List // of job ids, oldest finish first
	retention int
}

// NewJobStore returns an empty JobStore.
func NewJobStore(opts ...JobOption) *JobStore {
	s := &JobStore{
		jobs:      make(map[string]*JobRecord),
		finished:  list.New(),
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put registers a queued job.
func (s *JobStore) Put(_ context.Context, job model.Job) {
	s.mu.Lock()
	s.jobs[job.ID] = &JobRecord{
		ID:          job.ID,
		Kind:        job.Kind,
		Status:      types.JobQueued,
		SubmittedAt: job.SubmittedAt,
	}
	n := len(s.jobs)
	s.mu.Unlock()
	metrics.UpdateJobsRetained(n)
}

// Delete forgets a job. It is used when a submission could not be enqueued.
func (s *JobStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	n := len(s.jobs)
	s.mu.Unlock()
	metrics.UpdateJobsRetained(n)
}

// Start marks a job as running.
func (s *JobStore) Start(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("start job %q: %w", id, ErrNotFound)
	}
	rec.Status = types.JobRunning
	return nil
}

// Finish stores the outcome of a job. A nil err marks it done.
func (s *JobStore) Finish(_ context.Context, id string, result any, err error) error {
	s.mu.Lock()
	rec, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("finish job %q: %w", id, ErrNotFound)
	}
	rec.FinishedAt = time.Now()
	if err != nil {
		rec.Status, rec.Err = types.JobFailed, err
	} else {
		rec.Status, rec.Result = types.JobDone, result
	}
	s.finished.PushBack(id)
	for s.finished.Len() > s.retention {
		oldest := s.finished.Remove(s.finished.Front()).(string)
		delete(s.jobs, oldest)
	}
	n := len(s.jobs)
	s.mu.Unlock()

	metrics.UpdateJobsRetained(n)
	return nil
}

// Get returns a copy of the job record.
func (s *JobStore) Get(_ context.Context, id string) (JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[id]
	if !ok {
		return JobRecord{}, fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	return *rec, nil
}

// Len returns the number of jobs held.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
