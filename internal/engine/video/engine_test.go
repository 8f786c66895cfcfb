package video

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediamorph/media-morph/internal/domain"
)

func newTestEngine(t *testing.T, ffmpegPath string) (*Engine, string, string) {
	t.Helper()

	outputDir := filepath.Join(t.TempDir(), "out")
	tempDir := t.TempDir()

	engine := NewEngine(&Config{
		FFmpegPath: ffmpegPath,
		OutputDir:  outputDir,
		TempDir:    tempDir,
		BaseURL:    "http://localhost:8080",
	}, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	return engine, outputDir, tempDir
}

// writeStubFFmpeg places an executable script that stands in for ffmpeg
func writeStubFFmpeg(t *testing.T, script string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub ffmpeg scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestEngine_Transform_InvalidQuality(t *testing.T) {
	engine, outputDir, tempDir := newTestEngine(t, "ffmpeg")

	_, err := engine.Transform(context.Background(), "job-1", []byte("payload"), domain.VideoParams{Quality: 5})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)

	// validation fails before any temp or output file is written
	entries, readErr := os.ReadDir(tempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.NoDirExists(t, outputDir)
}

func TestEngine_Transform_Success(t *testing.T) {
	stub := writeStubFFmpeg(t, "exit 0")
	engine, _, tempDir := newTestEngine(t, stub)

	url, err := engine.Transform(context.Background(), "job-2", []byte("payload"), domain.VideoParams{Quality: 2})

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/output-videos/job-2.mp4", url)

	// staged input is cleaned up after the run
	entries, readErr := os.ReadDir(tempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestEngine_Transform_WebMResultURL(t *testing.T) {
	stub := writeStubFFmpeg(t, "exit 0")
	engine, _, _ := newTestEngine(t, stub)

	url, err := engine.Transform(context.Background(), "job-3", []byte("payload"), domain.VideoParams{
		Quality: 2,
		Format:  domain.VideoFormatWebM,
	})

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/output-videos/job-3.webm", url)
}

func TestEngine_Transform_NonZeroExit(t *testing.T) {
	stub := writeStubFFmpeg(t, "echo 'boom' >&2\nexit 1")
	engine, outputDir, _ := newTestEngine(t, stub)

	_, err := engine.Transform(context.Background(), "job-4", []byte("payload"), domain.VideoParams{Quality: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncodingFailed)
	assert.Contains(t, err.Error(), "boom")
	assert.NoFileExists(t, filepath.Join(outputDir, "job-4.mp4"))
}

func TestEngine_Transform_StderrOutputIsFailure(t *testing.T) {
	// the tool exits zero but wrote to stderr; the conservative policy
	// treats that as a failure and removes the partial artifact
	stub := writeStubFFmpeg(t, "for last; do :; done\ntouch \"$last\"\necho 'deprecated option' >&2\nexit 0")
	engine, outputDir, _ := newTestEngine(t, stub)

	_, err := engine.Transform(context.Background(), "job-5", []byte("payload"), domain.VideoParams{Quality: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncodingFailed)
	assert.NoFileExists(t, filepath.Join(outputDir, "job-5.mp4"))
}

func TestEngine_IsAvailable(t *testing.T) {
	stub := writeStubFFmpeg(t, "exit 0")

	engine, _, _ := newTestEngine(t, stub)
	assert.True(t, engine.IsAvailable())

	missing, _, _ := newTestEngine(t, "/nonexistent/ffmpeg")
	assert.False(t, missing.IsAvailable())
}
