package domain

import "fmt"

// ImageFormat is a target image encoding.
type ImageFormat string

const (
	ImageFormatJPG  ImageFormat = "jpg"
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatWebP ImageFormat = "webp"
	ImageFormatGIF  ImageFormat = "gif"
)

// ImageFormats lists every supported target image format.
var ImageFormats = []ImageFormat{ImageFormatJPG, ImageFormatPNG, ImageFormatWebP, ImageFormatGIF}

// VideoFormat is a target video container.
type VideoFormat string

const (
	VideoFormatMP4  VideoFormat = "mp4"
	VideoFormatAVI  VideoFormat = "avi"
	VideoFormatWebM VideoFormat = "webm"
)

// VideoFormats lists every supported target video container.
var VideoFormats = []VideoFormat{VideoFormatMP4, VideoFormatAVI, VideoFormatWebM}

// Video quality tier bounds.
const (
	VideoQualityLow  = 1
	VideoQualityHigh = 3
)

// ImageParams is the transform request for an image job. Width and height are
// optional: both set resizes to exactly those dimensions ignoring the source
// aspect ratio, one set scales proportionally, neither set keeps the source
// dimensions.
type ImageParams struct {
	Format ImageFormat `json:"format"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
}

// Validate checks the parameters against their declared enumerations and
// ranges. It returns ErrInvalidParameters so submission fails fast before any
// work is enqueued.
func (p ImageParams) Validate() error {
	switch p.Format {
	case ImageFormatJPG, ImageFormatPNG, ImageFormatWebP, ImageFormatGIF:
	default:
		return fmt.Errorf("%w: unsupported image format %q", ErrInvalidParameters, p.Format)
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("%w: dimensions must not be negative", ErrInvalidParameters)
	}
	return nil
}

// VideoParams is the transform request for a video job. Quality is a tier in
// [1,3]. Format defaults to mp4 when empty. Width is optional and scales
// proportionally with the height constrained to even values.
type VideoParams struct {
	Quality int         `json:"quality"`
	Format  VideoFormat `json:"format,omitempty"`
	Width   int         `json:"width,omitempty"`
}

// Validate checks the parameters against their declared enumerations and ranges.
func (p VideoParams) Validate() error {
	if p.Quality < VideoQualityLow || p.Quality > VideoQualityHigh {
		return fmt.Errorf("%w: quality must be 1 (low), 2 (medium) or 3 (high), got %d", ErrInvalidParameters, p.Quality)
	}
	switch p.Format {
	case "", VideoFormatMP4, VideoFormatAVI, VideoFormatWebM:
	default:
		return fmt.Errorf("%w: unsupported video format %q", ErrInvalidParameters, p.Format)
	}
	if p.Width < 0 {
		return fmt.Errorf("%w: width must not be negative", ErrInvalidParameters)
	}
	return nil
}

// OutputFormat resolves the target container, applying the mp4 default.
func (p VideoParams) OutputFormat() VideoFormat {
	if p.Format == "" {
		return VideoFormatMP4
	}
	return p.Format
}
