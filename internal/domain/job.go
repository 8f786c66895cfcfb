package domain

import "time"

// Job status constants
const (
	JobStatusPending   = "PENDING"
	JobStatusActive    = "ACTIVE"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// Job kind constants
const (
	JobKindImage = "image"
	JobKindVideo = "video"
)

// Job represents one media transform request tracked from submission to a
// terminal state. The payload is owned by the job until an engine consumes it
// and is never mutated after submission.
type Job struct {
	JobID        string     `db:"job_id"`
	Kind         string     `db:"kind"`
	MimeType     string     `db:"mime_type"`
	Payload      []byte     `db:"payload"`
	Parameters   string     `db:"parameters"` // JSON, variant by kind
	Status       string     `db:"status"`
	WorkerID     *string    `db:"worker_id"`
	ResultURL    *string    `db:"result_url"`
	ErrorMessage *string    `db:"error_message"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	StartedAt    *time.Time `db:"started_at"`
	CompletedAt  *time.Time `db:"completed_at"`
}

// IsTerminal reports whether the job reached a state no transition leaves.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// PublicStatus maps the stored status to the lowercase form surfaced by the
// status endpoint.
func PublicStatus(status string) string {
	switch status {
	case JobStatusPending:
		return "pending"
	case JobStatusActive:
		return "active"
	case JobStatusCompleted:
		return "completed"
	case JobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// JobMessage represents a job delivery from RabbitMQ. Redelivered is set by
// the broker when a prior consumer died or rejected the delivery.
type JobMessage struct {
	JobID       string `json:"job_id"`
	DeliveryTag uint64 `json:"-"`
	Redelivered bool   `json:"-"`
}
