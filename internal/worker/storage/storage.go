package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/mediamorph/media-morph/internal/domain"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimJob attempts to claim a pending job using optimistic locking, moving it
// to ACTIVE. At most one worker ever wins the claim; everyone else gets
// domain.ErrJobAlreadyClaimed.
func (s *Storage) ClaimJob(ctx context.Context, jobID, workerID string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    worker_id = $2,
		    started_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
		RETURNING job_id, kind, mime_type, payload, parameters
	`

	var job domain.Job
	err := s.db.QueryRowContext(ctx, query, domain.JobStatusActive, workerID, jobID, domain.JobStatusPending).Scan(
		&job.JobID,
		&job.Kind,
		&job.MimeType,
		&job.Payload,
		&job.Parameters,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim job - already claimed or not found",
				slog.String("job_id", jobID),
				slog.String("worker_id", workerID),
			)
			return nil, domain.ErrJobAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	job.Status = domain.JobStatusActive
	job.WorkerID = &workerID

	s.logger.Info("Job claimed",
		slog.String("job_id", jobID),
		slog.String("worker_id", workerID),
		slog.String("kind", job.Kind),
	)

	return &job, nil
}

// ReclaimJob takes over a job left ACTIVE by a crashed worker. The broker only
// redelivers a message when its consumer is gone, so reassigning ownership is
// safe; a terminal or unknown job yields domain.ErrJobAlreadyClaimed and the
// redelivery is dropped.
func (s *Storage) ReclaimJob(ctx context.Context, jobID, workerID string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET worker_id = $1,
		    started_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status = $3
		RETURNING job_id, kind, mime_type, payload, parameters
	`

	var job domain.Job
	err := s.db.QueryRowContext(ctx, query, workerID, jobID, domain.JobStatusActive).Scan(
		&job.JobID,
		&job.Kind,
		&job.MimeType,
		&job.Payload,
		&job.Parameters,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to reclaim job - not active",
				slog.String("job_id", jobID),
				slog.String("worker_id", workerID),
			)
			return nil, domain.ErrJobAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to reclaim job: %w", err)
	}

	job.Status = domain.JobStatusActive
	job.WorkerID = &workerID

	s.logger.Info("Job reclaimed from crashed worker",
		slog.String("job_id", jobID),
		slog.String("worker_id", workerID),
		slog.String("kind", job.Kind),
	)

	return &job, nil
}

// CompleteJob finalizes an active job with its result reference. The status
// guard keeps terminal states immutable.
func (s *Storage) CompleteJob(ctx context.Context, jobID, resultURL string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    result_url = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query, domain.JobStatusCompleted, resultURL, jobID, domain.JobStatusActive)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return s.checkFinalized(result, jobID, domain.JobStatusCompleted)
}

// FailJob finalizes an active job with its error cause
func (s *Storage) FailJob(ctx context.Context, jobID, errorMessage string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    error_message = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query, domain.JobStatusFailed, errorMessage, jobID, domain.JobStatusActive)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	return s.checkFinalized(result, jobID, domain.JobStatusFailed)
}

func (s *Storage) checkFinalized(result sql.Result, jobID, status string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Job finalize - no rows affected (job may not be active)",
			slog.String("job_id", jobID),
			slog.String("status", status),
		)
		return nil
	}

	s.logger.Info("Job status updated",
		slog.String("job_id", jobID),
		slog.String("status", status),
	)

	return nil
}
