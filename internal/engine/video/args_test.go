package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediamorph/media-morph/internal/domain"
)

func TestBuildArgs_QualityTiers(t *testing.T) {
	tests := []struct {
		name        string
		quality     int
		wantBitrate string
		wantCRF     string
	}{
		{name: "low quality", quality: 1, wantBitrate: "300k", wantCRF: "30"},
		{name: "medium quality", quality: 2, wantBitrate: "500k", wantCRF: "23"},
		{name: "high quality", quality: 3, wantBitrate: "1000k", wantCRF: "18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildArgs(domain.VideoParams{Quality: tt.quality}, "in.tmp", "out.mp4")

			assert.Equal(t, tt.wantBitrate, argValue(t, args, "-b:v"))
			assert.Equal(t, tt.wantCRF, argValue(t, args, "-crf"))
		})
	}
}

func TestBuildArgs_DefaultFormat(t *testing.T) {
	args := BuildArgs(domain.VideoParams{Quality: 2}, "in.tmp", "out.mp4")

	assert.Equal(t, []string{"-i", "in.tmp"}, args[:2])
	assert.Equal(t, "libx264", argValue(t, args, "-vcodec"))
	assert.Equal(t, "medium", argValue(t, args, "-preset"))
	assert.Equal(t, "faststart", argValue(t, args, "-movflags"))
	assert.Equal(t, "mp4", argValue(t, args, "-f"))
	assert.Equal(t, "error", argValue(t, args, "-loglevel"))
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestBuildArgs_WebMOverridesQualityBitrate(t *testing.T) {
	// webm selects VP9/Opus with fixed bitrates regardless of the tier table
	args := BuildArgs(domain.VideoParams{Quality: 2, Format: domain.VideoFormatWebM}, "in.tmp", "out.webm")

	assert.Equal(t, "libvpx-vp9", argValue(t, args, "-c:v"))
	assert.Equal(t, "libopus", argValue(t, args, "-c:a"))
	assert.Equal(t, "128k", argValue(t, args, "-b:a"))
	assert.Equal(t, "webm", argValue(t, args, "-f"))

	// the tier bitrate appears first, the fixed 1M override appears last and wins
	assert.Equal(t, "1M", lastArgValue(t, args, "-b:v"))
	assert.NotContains(t, args, "-vcodec")
	assert.NotContains(t, args, "faststart")
}

func TestBuildArgs_WidthScaleFilter(t *testing.T) {
	args := BuildArgs(domain.VideoParams{Quality: 1, Width: 640}, "in.tmp", "out.mp4")

	// -2 keeps the aspect ratio with an even height
	assert.Equal(t, "scale=640:-2", argValue(t, args, "-vf"))
}

func TestBuildArgs_NoWidthNoScaleFilter(t *testing.T) {
	args := BuildArgs(domain.VideoParams{Quality: 1}, "in.tmp", "out.mp4")

	assert.NotContains(t, args, "-vf")
}

func TestBuildArgs_AVIContainer(t *testing.T) {
	args := BuildArgs(domain.VideoParams{Quality: 3, Format: domain.VideoFormatAVI}, "in.tmp", "out.avi")

	assert.Equal(t, "libx264", argValue(t, args, "-vcodec"))
	assert.Equal(t, "avi", argValue(t, args, "-f"))
}

// argValue returns the argument following the first occurrence of flag
func argValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, arg := range args {
		if arg == flag {
			require.Less(t, i+1, len(args), "flag %s has no value", flag)
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

// lastArgValue returns the argument following the last occurrence of flag
func lastArgValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i := len(args) - 2; i >= 0; i-- {
		if args[i] == flag {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}
