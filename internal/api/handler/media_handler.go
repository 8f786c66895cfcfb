package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediamorph/media-morph/internal/api/dto"
	"github.com/mediamorph/media-morph/internal/domain"
)

// MorphImage handles POST /api/v1/images/morph
// Submits an image transform job and returns its identifier immediately.
func (h *MediaHandler) MorphImage(c *gin.Context) {
	var req dto.MorphImageRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid image morph request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request parameters",
		})
		return
	}

	payload, mimeType, ok := h.readUpload(c)
	if !ok {
		return
	}

	jobID, err := h.submitter.SubmitImage(c.Request.Context(), payload, mimeType, domain.ImageParams{
		Format: domain.ImageFormat(req.Format),
		Width:  req.Width,
		Height: req.Height,
	})
	if err != nil {
		h.submitError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitResponse{JobID: jobID})
}

// MorphVideo handles POST /api/v1/videos/morph
// Submits a video transform job and returns its identifier immediately.
func (h *MediaHandler) MorphVideo(c *gin.Context) {
	var req dto.MorphVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid video morph request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request parameters",
		})
		return
	}

	payload, mimeType, ok := h.readUpload(c)
	if !ok {
		return
	}

	jobID, err := h.submitter.SubmitVideo(c.Request.Context(), payload, mimeType, domain.VideoParams{
		Quality: req.Quality,
		Format:  domain.VideoFormat(req.Format),
		Width:   req.Width,
	})
	if err != nil {
		h.submitError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitResponse{JobID: jobID})
}

// JobStatus handles GET /api/v1/images/status/:job_id and
// GET /api/v1/videos/status/:job_id
func (h *MediaHandler) JobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	status, err := h.tracker.Status(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to query job status", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to query job status",
		})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		Status: status.Status,
		Result: status.Result,
	})
}

// readUpload extracts the uploaded file bytes and declared MIME type. It
// writes the error response itself and reports success via ok.
func (h *MediaHandler) readUpload(c *gin.Context) (payload []byte, mimeType string, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "file is required",
		})
		return nil, "", false
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file exceeds the upload size limit",
		})
		return nil, "", false
	}

	payload, err = readFileHeader(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read uploaded file",
		})
		return nil, "", false
	}

	return payload, fileHeader.Header.Get("Content-Type"), true
}

func (h *MediaHandler) submitError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidParameters) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.logger.Error("Failed to submit job", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to submit job",
	})
}

func readFileHeader(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
