package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediamorph/media-morph/internal/api/handler"
	"github.com/mediamorph/media-morph/internal/api/router"
	"github.com/mediamorph/media-morph/internal/domain"
	"github.com/mediamorph/media-morph/internal/jobs"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type memStore struct {
	jobs map[string]*domain.Job
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*domain.Job)}
}

func (s *memStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.jobs[job.JobID] = job
	return nil
}

func (s *memStore) GetJobByID(_ context.Context, jobID string) (*domain.Job, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

type memPublisher struct {
	published [][]byte
}

func (p *memPublisher) Publish(_ context.Context, body []byte, _ string) error {
	p.published = append(p.published, body)
	return nil
}

type testServer struct {
	router    *gin.Engine
	store     *memStore
	publisher *memPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := newMemStore()
	publisher := &memPublisher{}

	r := router.SetupRouter(&handler.Dependencies{
		Logger:         logger,
		Submitter:      jobs.NewSubmitter(store, publisher, logger),
		Tracker:        jobs.NewTracker(store, logger),
		MaxUploadBytes: 1 << 20,
		ImageOutputDir: t.TempDir(),
		VideoOutputDir: t.TempDir(),
	})

	return &testServer{router: r, store: store, publisher: publisher}
}

// multipartBody builds a morph request body with form fields and a file part
// carrying the given content type.
func multipartBody(t *testing.T, fields map[string]string, fileContentType string, fileBytes []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if fileBytes != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="input"`)
		header.Set("Content-Type", fileContentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(fileBytes)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (s *testServer) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestMorphImage(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"format": "webp",
		"width":  "100",
	}, "image/png", []byte("png-bytes"))

	rec := srv.do(t, http.MethodPost, "/api/v1/images/morph", body, contentType)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	jobID := resp["job_id"]
	_, err := uuid.Parse(jobID)
	require.NoError(t, err)

	job := srv.store.jobs[jobID]
	require.NotNil(t, job)
	assert.Equal(t, domain.JobKindImage, job.Kind)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, "image/png", job.MimeType)
	assert.Len(t, srv.publisher.published, 1)
}

func TestMorphImageValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   []byte
	}{
		{
			name:   "missing format",
			fields: map[string]string{"width": "100"},
			file:   []byte("x"),
		},
		{
			name:   "format outside enumeration",
			fields: map[string]string{"format": "bmp"},
			file:   []byte("x"),
		},
		{
			name:   "negative width",
			fields: map[string]string{"format": "png", "width": "-5"},
			file:   []byte("x"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			body, contentType := multipartBody(t, tt.fields, "image/png", tt.file)

			rec := srv.do(t, http.MethodPost, "/api/v1/images/morph", body, contentType)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, srv.store.jobs)
			assert.Empty(t, srv.publisher.published)
		})
	}
}

func TestMorphImageMissingFile(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, map[string]string{"format": "png"}, "", nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/images/morph", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file is required")
}

func TestMorphImageFileTooLarge(t *testing.T) {
	srv := newTestServer(t)
	oversized := bytes.Repeat([]byte("a"), (1<<20)+1)
	body, contentType := multipartBody(t, map[string]string{"format": "png"}, "image/png", oversized)

	rec := srv.do(t, http.MethodPost, "/api/v1/images/morph", body, contentType)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, srv.store.jobs)
}

func TestMorphVideo(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"quality": "2",
		"format":  "webm",
	}, "video/mp4", []byte("mp4-bytes"))

	rec := srv.do(t, http.MethodPost, "/api/v1/videos/morph", body, contentType)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	job := srv.store.jobs[resp["job_id"]]
	require.NotNil(t, job)
	assert.Equal(t, domain.JobKindVideo, job.Kind)
}

func TestMorphVideoValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{
			name:   "missing quality",
			fields: map[string]string{"format": "mp4"},
		},
		{
			name:   "quality above range",
			fields: map[string]string{"quality": "4"},
		},
		{
			name:   "format outside enumeration",
			fields: map[string]string{"quality": "1", "format": "mkv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			body, contentType := multipartBody(t, tt.fields, "video/mp4", []byte("x"))

			rec := srv.do(t, http.MethodPost, "/api/v1/videos/morph", body, contentType)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, srv.store.jobs)
		})
	}
}

func TestJobStatus(t *testing.T) {
	srv := newTestServer(t)

	jobID := uuid.New().String()
	resultURL := "http://localhost:8080/output-images/" + jobID + ".webp"
	now := time.Now()
	srv.store.jobs[jobID] = &domain.Job{
		JobID:     jobID,
		Kind:      domain.JobKindImage,
		Status:    domain.JobStatusCompleted,
		ResultURL: &resultURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/images/status/"+jobID, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, resultURL, resp["result"])
}

func TestJobStatusPendingOmitsResult(t *testing.T) {
	srv := newTestServer(t)

	jobID := uuid.New().String()
	srv.store.jobs[jobID] = &domain.Job{
		JobID:  jobID,
		Kind:   domain.JobKindVideo,
		Status: domain.JobStatusPending,
	}

	rec := srv.do(t, http.MethodGet, "/api/v1/videos/status/"+jobID, nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
	assert.NotContains(t, rec.Body.String(), "result")
}

func TestJobStatusNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/images/status/"+uuid.New().String(), nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobStatusInvalidID(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/images/status/not-a-uuid", nil, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "job_id must be a valid UUID")
}

type stubPinger struct {
	err error
}

func (p *stubPinger) HealthCheck(context.Context) error { return p.err }

type stubBroker struct {
	connected bool
}

func (b *stubBroker) IsConnected() bool { return b.connected }

func newHealthServer(t *testing.T, db handler.Pinger, broker handler.BrokerStatus) *gin.Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := newMemStore()

	return router.SetupRouter(&handler.Dependencies{
		Logger:         logger,
		Submitter:      jobs.NewSubmitter(store, &memPublisher{}, logger),
		Tracker:        jobs.NewTracker(store, logger),
		Database:       db,
		Broker:         broker,
		ImageOutputDir: t.TempDir(),
		VideoOutputDir: t.TempDir(),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newHealthServer(t, &stubPinger{}, &stubBroker{connected: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])

	components, ok := resp["components"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "healthy", components["database"])
	assert.Equal(t, "healthy", components["rabbitmq"])
}

func TestHealthEndpointDatabaseDown(t *testing.T) {
	r := newHealthServer(t, &stubPinger{err: errors.New("connection refused")}, &stubBroker{connected: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"unhealthy"`)
}

func TestHealthEndpointBrokerDown(t *testing.T) {
	r := newHealthServer(t, &stubPinger{}, &stubBroker{connected: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rabbitmq":"unhealthy"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/images/morph", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
