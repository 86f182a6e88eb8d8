// Package standingsqueue runs results publishing off the event path, either
// on a river job queue backed by Postgres or inline.
package standingsqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueName is the river queue results jobs run on.
const QueueName = "results"

// ResultsPublisher does the actual upload.
type ResultsPublisher interface {
	PublishResults(ctx context.Context, reason string) error
}

// Enqueuer schedules a results publish.
type Enqueuer interface {
	EnqueuePublish(ctx context.Context, reason string) error
}

// Service runs PublishResultsJob on river.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

var _ Enqueuer = (*Service)(nil)

// NewService connects to Postgres and registers the results worker. The
// river schema must already be migrated (cmd/bun migrate).
func NewService(ctx context.Context, dsn string, maxWorkers int, publisher ResultsPublisher, logger *slog.Logger, m metrics.OperationMetrics) (*Service, error) {
	if m == nil {
		m = metrics.NoOp{}
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", QueueName),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewPublishResultsWorker(publisher, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", "river")
	m.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Results queue service initialized")

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: m}, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Results queue service started")
	return nil
}

// Stop waits for running jobs, then releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Results queue service stopped")
	return nil
}

func (s *Service) EnqueuePublish(ctx context.Context, reason string) error {
	s.metrics.RecordOperationAttempt(ctx, "enqueue_publish", "river")
	res, err := s.client.Insert(ctx, PublishResultsJob{Reason: reason}, &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_publish", "river")
		return fmt.Errorf("failed to enqueue results publish: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "enqueue_publish", "river")
	s.logger.InfoContext(ctx, "Enqueued results publish",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("job_id", res.Job.ID),
		attr.String("reason", reason),
	)
	return nil
}

// HealthCheck pings the queue database.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

// Inline publishes synchronously. It stands in for the queue when no
// Postgres is configured.
type Inline struct {
	Publisher ResultsPublisher
	Logger    *slog.Logger
}

var _ Enqueuer = Inline{}

func (i Inline) EnqueuePublish(ctx context.Context, reason string) error {
	if err := i.Publisher.PublishResults(ctx, reason); err != nil {
		i.Logger.WarnContext(ctx, "Results publish failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("reason", reason),
			attr.Error(err),
		)
		return err
	}
	return nil
}
