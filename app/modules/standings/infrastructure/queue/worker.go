package standingsqueue

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/riverqueue/river"
)

type PublishResultsWorker struct {
	river.WorkerDefaults[PublishResultsJob]
	publisher ResultsPublisher
	logger    *slog.Logger
}

func NewPublishResultsWorker(publisher ResultsPublisher, logger *slog.Logger) *PublishResultsWorker {
	return &PublishResultsWorker{publisher: publisher, logger: logger}
}

// Work returns the publish error so river retries with backoff.
func (w *PublishResultsWorker) Work(ctx context.Context, job *river.Job[PublishResultsJob]) error {
	w.logger.InfoContext(ctx, "Publishing results",
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
		attr.String("reason", job.Args.Reason),
	)
	if err := w.publisher.PublishResults(ctx, job.Args.Reason); err != nil {
		w.logger.ErrorContext(ctx, "Results publish failed",
			attr.Int64("job_id", job.ID),
			attr.Error(err),
		)
		return err
	}
	return nil
}

func (w *PublishResultsWorker) Timeout(*river.Job[PublishResultsJob]) time.Duration {
	return 2 * time.Minute
}
