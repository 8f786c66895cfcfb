package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mediamorph/media-morph/internal/domain"
)

// Store is the subset of job storage the core operations need
type Store interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobByID(ctx context.Context, jobID string) (*domain.Job, error)
}

// Publisher delivers an enqueue message to the broker
type Publisher interface {
	Publish(ctx context.Context, body []byte, contentType string) error
}

// Submitter accepts transform requests, stores them as pending jobs and
// enqueues a delivery message. Submission returns as soon as the enqueue is
// durable; it never waits for the transform itself.
type Submitter struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

// NewSubmitter creates a new Submitter
func NewSubmitter(store Store, publisher Publisher, logger *slog.Logger) *Submitter {
	return &Submitter{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitImage submits an image transform job and returns its identifier
func (s *Submitter) SubmitImage(ctx context.Context, payload []byte, mimeType string, params domain.ImageParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	return s.submit(ctx, domain.JobKindImage, payload, mimeType, params)
}

// SubmitVideo submits a video transform job and returns its identifier
func (s *Submitter) SubmitVideo(ctx context.Context, payload []byte, mimeType string, params domain.VideoParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	return s.submit(ctx, domain.JobKindVideo, payload, mimeType, params)
}

func (s *Submitter) submit(ctx context.Context, kind string, payload []byte, mimeType string, params any) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode parameters: %w", err)
	}

	now := time.Now()
	job := &domain.Job{
		JobID:      uuid.New().String(),
		Kind:       kind,
		MimeType:   mimeType,
		Payload:    payload,
		Parameters: string(encoded),
		Status:     domain.JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to store job: %w", err)
	}

	body, err := json.Marshal(domain.JobMessage{JobID: job.JobID})
	if err != nil {
		return "", fmt.Errorf("failed to encode job message: %w", err)
	}

	if err := s.publisher.Publish(ctx, body, "application/json"); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("Job submitted",
		slog.String("job_id", job.JobID),
		slog.String("kind", kind),
		slog.Int("payload_size", len(payload)),
	)

	return job.JobID, nil
}
