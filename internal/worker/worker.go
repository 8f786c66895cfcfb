package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mediamorph/media-morph/internal/domain"
)

// Storage is the job store surface the worker needs
type Storage interface {
	ClaimJob(ctx context.Context, jobID, workerID string) (*domain.Job, error)
	ReclaimJob(ctx context.Context, jobID, workerID string) (*domain.Job, error)
	CompleteJob(ctx context.Context, jobID, resultURL string) error
	FailJob(ctx context.Context, jobID, errorMessage string) error
}

// Queue is the broker surface the worker needs
type Queue interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Ack(deliveryTag uint64) error
	Nack(deliveryTag uint64, requeue bool) error
}

// ImageEngine transforms image payloads in-process
type ImageEngine interface {
	Transform(jobID string, payload []byte, mimeType string, params domain.ImageParams) (string, error)
}

// VideoEngine transforms video payloads via an external tool
type VideoEngine interface {
	Transform(ctx context.Context, jobID string, payload []byte, params domain.VideoParams) (string, error)
}

// EventFunc receives lifecycle events for jobs that reached a terminal state
type EventFunc func(domain.JobEvent)

// Config holds worker configuration. Storage, Queue and both engines are
// required; OnEvent is optional.
type Config struct {
	Logger        *slog.Logger
	Storage       Storage
	Queue         Queue
	ImageEngine   ImageEngine
	VideoEngine   VideoEngine
	Concurrency   int
	PrefetchCount int
	WorkerID      string
	OnEvent       EventFunc
}

// Worker is the background job consumer. It is constructed with its
// dependencies injected, started explicitly, and stopped explicitly on
// shutdown.
type Worker struct {
	logger        *slog.Logger
	storage       Storage
	queue         Queue
	imageEngine   ImageEngine
	videoEngine   VideoEngine
	concurrency   int
	prefetchCount int
	workerID      string
	onEvent       EventFunc
	jobsChan      chan *domain.JobMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	workerID := cfg.WorkerID
	if workerID == "" {
		hostname, _ := os.Hostname()
		workerID = fmt.Sprintf("worker-%s-%d", hostname, os.Getpid())
	}

	return &Worker{
		logger:        cfg.Logger,
		storage:       cfg.Storage,
		queue:         cfg.Queue,
		imageEngine:   cfg.ImageEngine,
		videoEngine:   cfg.VideoEngine,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		workerID:      workerID,
		onEvent:       cfg.OnEvent,
		jobsChan:      make(chan *domain.JobMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming and processing jobs. It blocks until the context is
// canceled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker, waiting for in-flight jobs to finish
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// emit delivers a lifecycle event to the registered callback, if any
func (w *Worker) emit(event domain.JobEvent) {
	if w.onEvent != nil {
		w.onEvent(event)
	}
}
