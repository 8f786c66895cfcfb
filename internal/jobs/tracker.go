package jobs

import (
	"context"
	"log/slog"

	"github.com/mediamorph/media-morph/internal/domain"
)

// JobStatus is the answer to a status query. Result is set only when the job
// completed.
type JobStatus struct {
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

// Tracker answers status queries. Read-only; it never mutates a job.
type Tracker struct {
	store  Store
	logger *slog.Logger
}

// NewTracker creates a new Tracker
func NewTracker(store Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// Status returns the current state of a job. An unknown identifier yields
// domain.ErrJobNotFound and creates nothing as a side effect.
func (t *Tracker) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	job, err := t.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	status := &JobStatus{Status: domain.PublicStatus(job.Status)}
	if job.Status == domain.JobStatusCompleted && job.ResultURL != nil {
		status.Result = *job.ResultURL
	}

	return status, nil
}
