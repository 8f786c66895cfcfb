package handler

import (
	"log/slog"

	"github.com/mediamorph/media-morph/internal/jobs"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	Submitter      *jobs.Submitter
	Tracker        *jobs.Tracker
	Database       Pinger
	Broker         BrokerStatus
	MaxUploadBytes int64
	ImageOutputDir string
	VideoOutputDir string
}

// MediaHandler handles transform submissions and status queries
type MediaHandler struct {
	logger         *slog.Logger
	submitter      *jobs.Submitter
	tracker        *jobs.Tracker
	maxUploadBytes int64
}

// NewMediaHandler creates a new MediaHandler instance
func NewMediaHandler(deps *Dependencies) *MediaHandler {
	return &MediaHandler{
		logger:         deps.Logger,
		submitter:      deps.Submitter,
		tracker:        deps.Tracker,
		maxUploadBytes: deps.MaxUploadBytes,
	}
}
