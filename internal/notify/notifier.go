package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mediamorph/media-morph/internal/domain"
)

// Config holds Redis pub/sub settings for lifecycle notifications
type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Notifier publishes job lifecycle events to a Redis channel so interested
// collaborators can react without polling the status endpoint. A nil Notifier
// is valid and publishes nothing.
type Notifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// New creates a notifier, or nil when no Redis address is configured
func New(cfg *Config, logger *slog.Logger) *Notifier {
	if cfg.Addr == "" {
		return nil
	}

	return &Notifier{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		channel: cfg.Channel,
		logger:  logger,
	}
}

// Publish sends a lifecycle event to the configured channel
func (n *Notifier) Publish(ctx context.Context, event domain.JobEvent) error {
	if n == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.logger.Debug("Lifecycle event published",
		slog.String("job_id", event.JobID),
		slog.String("status", event.Status),
	)

	return nil
}

// Close releases the Redis connection
func (n *Notifier) Close() error {
	if n == nil {
		return nil
	}
	return n.client.Close()
}
