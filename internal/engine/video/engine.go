package video

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mediamorph/media-morph/internal/domain"
)

// Config holds video engine configuration
type Config struct {
	FFmpegPath string
	OutputDir  string
	TempDir    string
	BaseURL    string
}

// Engine transforms videos by invoking ffmpeg as a subprocess. The tool
// operates on files, so the payload is staged to a temporary file first.
type Engine struct {
	ffmpegPath string
	outputDir  string
	tempDir    string
	baseURL    string
	logger     *slog.Logger
}

// NewEngine creates a new video transform engine
func NewEngine(cfg *Config, logger *slog.Logger) *Engine {
	return &Engine{
		ffmpegPath: cfg.FFmpegPath,
		outputDir:  cfg.OutputDir,
		tempDir:    cfg.TempDir,
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}
}

// IsAvailable reports whether the encoding tool can be found
func (e *Engine) IsAvailable() bool {
	_, err := exec.LookPath(e.ffmpegPath)
	return err == nil
}

// Transform re-encodes the payload according to params and returns the
// externally resolvable result URL. Parameter validation happens before any
// file is written or process spawned, and a failed run never leaves a partial
// artifact behind.
func (e *Engine) Transform(ctx context.Context, jobID string, payload []byte, params domain.VideoParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	inputPath := filepath.Join(e.tempDir, jobID+".src")
	if err := os.WriteFile(inputPath, payload, 0o600); err != nil {
		return "", fmt.Errorf("failed to stage input file: %w", err)
	}
	defer os.Remove(inputPath)

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	fileName := fmt.Sprintf("%s.%s", jobID, params.OutputFormat())
	outputPath := filepath.Join(e.outputDir, fileName)

	args := BuildArgs(params, inputPath, outputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Stderr = &stderr

	e.logger.Debug("Running ffmpeg",
		slog.String("job_id", jobID),
		slog.String("args", strings.Join(args, " ")),
	)

	runErr := cmd.Run()

	// With -loglevel error a nominal run stays silent, so any stderr output
	// is treated as a failure signal alongside a non-zero exit code.
	if runErr != nil || stderr.Len() > 0 {
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("Failed to remove partial output file",
				slog.String("job_id", jobID),
				slog.String("path", outputPath),
				slog.Any("error", err),
			)
		}

		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}

		e.logger.Error("ffmpeg failed",
			slog.String("job_id", jobID),
			slog.String("detail", detail),
		)

		return "", fmt.Errorf("%w: %s", domain.ErrEncodingFailed, detail)
	}

	e.logger.Info("Video transformed",
		slog.String("job_id", jobID),
		slog.String("format", string(params.OutputFormat())),
		slog.String("path", outputPath),
	)

	return fmt.Sprintf("%s/output-videos/%s", e.baseURL, fileName), nil
}
