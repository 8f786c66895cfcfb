package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mediamorph/media-morph/internal/domain"
)

// processJob claims a job, dispatches it to the matching transform engine and
// finalizes it. Returning nil means the delivery is consumed (ACK), including
// when the transform failed and the job was recorded as FAILED, since failures
// are terminal and never retried at this level. A non-nil return hands the
// requeue decision to the pool.
func (w *Worker) processJob(ctx context.Context, msg *domain.JobMessage) error {
	job, err := w.claimJob(ctx, msg)
	if err != nil {
		if errors.Is(err, domain.ErrJobAlreadyClaimed) {
			w.logger.Warn("Job already claimed, skipping",
				slog.String("job_id", msg.JobID),
			)
			return fmt.Errorf("job already claimed: %w", err)
		}
		// store error - could be transient, let the broker redeliver
		return domain.NewRetryableError(fmt.Errorf("failed to claim job: %w", err))
	}

	resultURL, err := w.transform(ctx, job)
	if err != nil {
		w.logger.Error("Job transform failed",
			slog.String("job_id", job.JobID),
			slog.String("kind", job.Kind),
			slog.String("error", err.Error()),
		)

		if failErr := w.storage.FailJob(ctx, job.JobID, err.Error()); failErr != nil {
			w.logger.Error("Failed to update job status to FAILED",
				slog.String("job_id", job.JobID),
				slog.String("error", failErr.Error()),
			)
		}

		w.emit(domain.JobEvent{
			JobID:  job.JobID,
			Status: domain.PublicStatus(domain.JobStatusFailed),
			Error:  err.Error(),
		})

		return nil
	}

	if completeErr := w.storage.CompleteJob(ctx, job.JobID, resultURL); completeErr != nil {
		// the artifact exists but the record lags; still consume the delivery
		w.logger.Error("Failed to update job status to COMPLETED",
			slog.String("job_id", job.JobID),
			slog.String("error", completeErr.Error()),
		)
	}

	w.logger.Info("Job completed",
		slog.String("job_id", job.JobID),
		slog.String("kind", job.Kind),
		slog.String("result", resultURL),
	)

	w.emit(domain.JobEvent{
		JobID:  job.JobID,
		Status: domain.PublicStatus(domain.JobStatusCompleted),
		Result: resultURL,
	})

	return nil
}

// claimJob takes ownership of the job. A fresh delivery only wins a PENDING
// row. On a redelivery the previous owner died mid-job, so the claim may also
// take over the stranded ACTIVE row; this is the recovery path for worker
// crashes.
func (w *Worker) claimJob(ctx context.Context, msg *domain.JobMessage) (*domain.Job, error) {
	job, err := w.storage.ClaimJob(ctx, msg.JobID, w.workerID)
	if err == nil || !errors.Is(err, domain.ErrJobAlreadyClaimed) {
		return job, err
	}

	if !msg.Redelivered {
		return nil, err
	}

	w.logger.Warn("Redelivered job is still active, taking over from crashed worker",
		slog.String("job_id", msg.JobID),
		slog.String("worker_id", w.workerID),
	)

	return w.storage.ReclaimJob(ctx, msg.JobID, w.workerID)
}

// transform dispatches the job to the engine matching its kind
func (w *Worker) transform(ctx context.Context, job *domain.Job) (string, error) {
	switch job.Kind {
	case domain.JobKindImage:
		var params domain.ImageParams
		if err := json.Unmarshal([]byte(job.Parameters), &params); err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidPayload, err.Error())
		}
		return w.imageEngine.Transform(job.JobID, job.Payload, job.MimeType, params)

	case domain.JobKindVideo:
		var params domain.VideoParams
		if err := json.Unmarshal([]byte(job.Parameters), &params); err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidPayload, err.Error())
		}
		return w.videoEngine.Transform(ctx, job.JobID, job.Payload, params)

	default:
		return "", fmt.Errorf("%w: unknown job kind %q", domain.ErrInvalidPayload, job.Kind)
	}
}
