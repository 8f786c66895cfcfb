package domain

// JobEvent is emitted by a worker when a job reaches a terminal state.
type JobEvent struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
