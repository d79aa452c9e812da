package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhindhaugh/Attendance-Dashboard/pkg/jobs"
)

const reloadJobType = "dataset.reload"

type datasetLoader interface {
	Load(ctx context.Context) (*DatasetSnapshot, error)
}

// ReloadStatus describes the most recent background reload.
type ReloadStatus struct {
	JobID      string    `json:"job_id"`
	Reason     string    `json:"reason"`
	State      string    `json:"state"`
	Attempt    int       `json:"attempt,omitempty"`
	Version    string    `json:"data_version,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Reload states.
const (
	ReloadQueued    = "queued"
	ReloadRunning   = "running"
	ReloadSucceeded = "succeeded"
	ReloadFailed    = "failed"
)

// ReloadService runs dataset reloads on a single background worker. Triggers
// that arrive while a reload is already queued are folded into it.
type ReloadService struct {
	datasets datasetLoader
	queue    *jobs.Queue
	logger   *zap.Logger

	mu      sync.Mutex
	pending string
	last    *ReloadStatus
}

// NewReloadService constructs the service. Call Start before Trigger.
func NewReloadService(datasets datasetLoader, retryDelay time.Duration, logger *zap.Logger) *ReloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReloadService{datasets: datasets, logger: logger}
	s.queue = jobs.NewQueue("dataset-reload", s.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: 2,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the reload worker.
func (s *ReloadService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for an in-flight reload to return.
func (s *ReloadService) Stop() {
	s.queue.Stop()
}

// Trigger queues a reload and returns its job id.
func (s *ReloadService) Trigger(reason string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != "" {
		return s.pending, nil
	}

	id := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{ID: id, Type: reloadJobType, Payload: reason})
	if errors.Is(err, jobs.ErrQueueFull) && s.last != nil && s.last.State == ReloadQueued {
		return s.last.JobID, nil
	}
	if err != nil {
		return "", err
	}
	s.pending = id
	s.last = &ReloadStatus{JobID: id, Reason: reason, State: ReloadQueued, StartedAt: time.Now().UTC()}
	return id, nil
}

// Every triggers a reload on each tick until ctx is done.
func (s *ReloadService) Every(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Trigger("scheduled"); err != nil {
					s.logger.Warn("scheduled reload not queued", zap.Error(err))
				}
			}
		}
	}()
}

// Status returns the most recent reload, or nil when none has run.
func (s *ReloadService) Status() *ReloadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	status := *s.last
	return &status
}

func (s *ReloadService) handle(ctx context.Context, job jobs.Job) error {
	reason, _ := job.Payload.(string)
	s.mu.Lock()
	if s.pending == job.ID {
		s.pending = ""
	}
	if s.last == nil || s.last.JobID == job.ID || s.last.State != ReloadQueued {
		s.last = &ReloadStatus{JobID: job.ID, Reason: reason, State: ReloadRunning, Attempt: job.Attempt + 1, StartedAt: time.Now().UTC()}
	}
	s.mu.Unlock()

	snapshot, err := s.datasets.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || s.last.JobID != job.ID {
		return err
	}
	s.last.FinishedAt = time.Now().UTC()
	if err != nil {
		s.last.State = ReloadFailed
		s.last.Error = err.Error()
		return err
	}
	s.last.State = ReloadSucceeded
	s.last.Version = snapshot.Version
	s.logger.Info("dataset reload finished", zap.String("job_id", job.ID), zap.String("reason", reason), zap.String("version", snapshot.Version))
	return nil
}
