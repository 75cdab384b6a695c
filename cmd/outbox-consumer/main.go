package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/turbobet/platform/internal/infra"
	"github.com/turbobet/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	topic := os.Getenv("OUTBOX_TOPIC")
	if topic == "" {
		topic = "turbobet.events"
	}

	pollInterval := 2 * time.Second
	if s := os.Getenv("OUTBOX_POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pollInterval = d
		}
	}

	batchSize := 100
	if s := os.Getenv("OUTBOX_BATCH_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			batchSize = n
		}
	}

	repo := repository.NewOutboxRepository()
	logger.Info("outbox-consumer starting",
		"topic", topic, "poll_interval", pollInterval, "batch_size", batchSize,
		"kafka_enabled", cfg.KafkaEnabled)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox-consumer shutting down")
			return nil
		case <-ticker.C:
			if err := poll(ctx, pool, repo, producer, topic, logger, batchSize); err != nil {
				logger.Error("poll error", "error", err)
			}
		}
	}
}

// publisher is the slice of infra.KafkaProducer the poller needs.
type publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

func poll(ctx context.Context, db repository.DBTX, repo repository.OutboxRepository, producer publisher, topic string, logger *slog.Logger, limit int) error {
	drafts, seqIDs, err := repo.FetchUnpublished(ctx, db, limit)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(drafts) == 0 {
		return nil
	}

	published := make([]int64, 0, len(drafts))
	for i, draft := range drafts {
		value, err := json.Marshal(draft)
		if err != nil {
			// Stop at the first failure, same as below: skipping ahead
			// would deliver a later event for the key before this one.
			logger.Error("marshal outbox event", "error", err, "event_id", draft.EventID)
			break
		}
		if err := producer.Publish(ctx, topic, []byte(draft.PartitionKey), value); err != nil {
			// Stop at the first failure so per-key ordering survives the
			// retry on the next tick.
			logger.Error("publish outbox event", "error", err, "event_id", draft.EventID)
			break
		}
		logger.Info("outbox event published",
			"event_id", draft.EventID,
			"event_type", draft.EventType,
			"aggregate_id", draft.AggregateID,
		)
		published = append(published, seqIDs[i])
	}

	if len(published) == 0 {
		return nil
	}
	if err := repo.MarkPublished(ctx, db, published); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	logger.Info("processed outbox batch", "count", len(published))
	return nil
}
