package video

import (
	"fmt"
	"strconv"

	"github.com/mediamorph/media-morph/internal/domain"
)

// qualityPreset pairs a constant rate factor with a target bitrate. A lower
// rate factor means higher quality and larger output.
type qualityPreset struct {
	crf     int
	bitrate string
}

// qualityPresets maps each quality tier to its encoder settings
var qualityPresets = map[int]qualityPreset{
	1: {crf: 30, bitrate: "300k"},
	2: {crf: 23, bitrate: "500k"},
	3: {crf: 18, bitrate: "1000k"},
}

// WebM codec settings. The fixed bitrates override the quality-tier table.
const (
	webmVideoBitrate = "1M"
	webmAudioBitrate = "128k"
)

// BuildArgs assembles the ffmpeg argument list for a transform request. It is
// a pure function from parameters to arguments so codec selection can be
// tested without spawning a process. Callers must validate params first; an
// unknown quality tier contributes no rate flags.
func BuildArgs(params domain.VideoParams, inputPath, outputPath string) []string {
	args := []string{"-i", inputPath}

	if preset, ok := qualityPresets[params.Quality]; ok {
		args = append(args, "-b:v", preset.bitrate)
		args = append(args, "-crf", strconv.Itoa(preset.crf))
	}

	if params.Width > 0 {
		// -2 preserves the aspect ratio and keeps the height even for the encoder
		args = append(args, "-vf", fmt.Sprintf("scale=%d:-2", params.Width))
	}

	format := params.OutputFormat()
	if format == domain.VideoFormatWebM {
		args = append(args, "-c:v", "libvpx-vp9")
		args = append(args, "-b:v", webmVideoBitrate)
		args = append(args, "-c:a", "libopus")
		args = append(args, "-b:a", webmAudioBitrate)
	} else {
		args = append(args, "-vcodec", "libx264")
		args = append(args, "-preset", "medium")
		// moov atom at file start for progressive download
		args = append(args, "-movflags", "faststart")
	}

	args = append(args, "-f", string(format))
	args = append(args, "-loglevel", "error", outputPath)

	return args
}
