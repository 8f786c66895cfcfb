package dto

// MorphImageRequest is the multipart form accompanying an image upload
type MorphImageRequest struct {
	Format string `form:"format" binding:"required,oneof=jpg png webp gif"`
	Width  int    `form:"width" binding:"omitempty,min=1"`
	Height int    `form:"height" binding:"omitempty,min=1"`
}

// MorphVideoRequest is the multipart form accompanying a video upload
type MorphVideoRequest struct {
	Quality int    `form:"quality" binding:"required,min=1,max=3"`
	Format  string `form:"format" binding:"omitempty,oneof=mp4 avi webm"`
	Width   int    `form:"width" binding:"omitempty,min=1"`
}

// SubmitResponse carries the identifier assigned to an accepted job
type SubmitResponse struct {
	JobID string `json:"job_id"`
}

// StatusResponse reports a job's lifecycle state and, once completed, the
// result URL
type StatusResponse struct {
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}
