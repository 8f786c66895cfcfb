package image

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/mediamorph/media-morph/internal/domain"
)

// maxQuality is the fixed encoding quality. Images always encode at the
// highest quality with chroma subsampling at full resolution; there is no
// caller-exposed quality knob.
const maxQuality = 100

// Config holds image engine configuration
type Config struct {
	OutputDir string
	BaseURL   string
}

// Engine transforms images in-process via libvips
type Engine struct {
	outputDir string
	baseURL   string
	logger    *slog.Logger
}

// NewEngine creates a new image transform engine
func NewEngine(cfg *Config, logger *slog.Logger) *Engine {
	return &Engine{
		outputDir: cfg.OutputDir,
		baseURL:   cfg.BaseURL,
		logger:    logger,
	}
}

// Startup initializes libvips. Call once per process before any transform.
func Startup(logger *slog.Logger) {
	vips.LoggingSettings(func(messageDomain string, _ vips.LogLevel, message string) {
		logger.Warn("libvips message",
			slog.String("domain", messageDomain),
			slog.String("message", message),
		)
	}, vips.LogLevelError)
	vips.Startup(nil)
}

// Shutdown releases libvips resources
func Shutdown() {
	vips.Shutdown()
}

// Transform decodes the payload, applies the resize policy, encodes it in the
// target format and writes the artifact to the output directory. It returns
// the externally resolvable result URL.
func (e *Engine) Transform(jobID string, payload []byte, mimeType string, params domain.ImageParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	importParams := vips.NewImportParams()
	if animatedCapable(mimeType) {
		// decode every frame, not just the first
		importParams.NumPages.Set(-1)
	}

	img, err := vips.LoadImageFromBuffer(payload, importParams)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrEncodingFailed, err.Error())
	}
	defer img.Close()

	hscale, vscale := scaleFactors(img.Width(), img.PageHeight(), params.Width, params.Height)
	if hscale != 1 || vscale != 1 {
		if hscale == vscale {
			err = img.Resize(hscale, vips.KernelAuto)
		} else {
			err = img.ResizeWithVScale(hscale, vscale, vips.KernelAuto)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrEncodingFailed, err.Error())
		}
	}

	encoded, err := encode(img, params.Format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	fileName := outputName(jobID, params.Format)
	outputPath := filepath.Join(e.outputDir, fileName)
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}

	e.logger.Info("Image transformed",
		slog.String("job_id", jobID),
		slog.String("format", string(params.Format)),
		slog.String("path", outputPath),
	)

	return resultURL(e.baseURL, fileName), nil
}

// animatedCapable reports whether the source MIME type can carry multiple frames
func animatedCapable(mimeType string) bool {
	return mimeType == "image/gif" || mimeType == "image/png"
}

// scaleFactors implements the resize policy. Both dimensions set scales to
// exactly that size ignoring the source aspect ratio; one dimension set keeps
// the aspect ratio; neither set leaves the image untouched (factors of 1).
func scaleFactors(srcWidth, srcHeight, width, height int) (hscale, vscale float64) {
	switch {
	case width > 0 && height > 0:
		return float64(width) / float64(srcWidth), float64(height) / float64(srcHeight)
	case width > 0:
		s := float64(width) / float64(srcWidth)
		return s, s
	case height > 0:
		s := float64(height) / float64(srcHeight)
		return s, s
	}
	return 1, 1
}

// encode runs the format-specific export at fixed maximum quality
func encode(img *vips.ImageRef, format domain.ImageFormat) ([]byte, error) {
	switch format {
	case domain.ImageFormatJPG:
		params := vips.NewJpegExportParams()
		params.Quality = maxQuality
		params.SubsampleMode = vips.VipsForeignSubsampleOff
		out, _, err := img.ExportJpeg(params)
		return out, wrapExportErr(err)
	case domain.ImageFormatPNG:
		params := vips.NewPngExportParams()
		out, _, err := img.ExportPng(params)
		return out, wrapExportErr(err)
	case domain.ImageFormatWebP:
		params := vips.NewWebpExportParams()
		params.Quality = maxQuality
		out, _, err := img.ExportWebp(params)
		return out, wrapExportErr(err)
	case domain.ImageFormatGIF:
		params := vips.NewGifExportParams()
		params.Quality = maxQuality
		out, _, err := img.ExportGIF(params)
		return out, wrapExportErr(err)
	default:
		return nil, fmt.Errorf("%w: image format %q", domain.ErrUnsupportedFormat, format)
	}
}

func wrapExportErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrEncodingFailed, err.Error())
}

// outputName builds the collision-free artifact filename from the job id
func outputName(jobID string, format domain.ImageFormat) string {
	return fmt.Sprintf("%s.%s", jobID, format)
}

// resultURL builds the externally resolvable reference for an artifact
func resultURL(baseURL, fileName string) string {
	return fmt.Sprintf("%s/output-images/%s", baseURL, fileName)
}
