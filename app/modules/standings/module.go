package standings

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	standingsservice "github.com/Black-And-White-Club/tripscore/app/modules/standings/application"
	standingshandlers "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/handlers"
	standingspublisher "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/publisher"
	standingsqueue "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/queue"
	standingsrouter "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/router"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Sources are the ledgers and roster the standings are derived from.
type Sources struct {
	Roster   standingsservice.RosterProvider
	Calendar *competition.Calendar
	Rules    competition.Rules
	Scores   standingsservice.ScoreSource
	Shots    standingsservice.ShotSource
	Clock    competition.Clock
}

// ArtifactOptions enables results publishing. A nil Uploader disables it;
// an empty QueueDSN publishes inline instead of through river.
type ArtifactOptions struct {
	Uploader   standingspublisher.Uploader
	Prefix     string
	QueueDSN   string
	MaxWorkers int
}

// Module represents the standings module.
type Module struct {
	StandingsService standingsservice.Service
	StandingsRouter  *standingsrouter.StandingsRouter
	queue            *standingsqueue.Service
	cancelFunc       context.CancelFunc
	observability    observability.Observability
}

// NewStandingsModule builds the standings snapshot, subscribes it to the
// ledger topics on router and mounts the standings endpoints when
// httpRouter is set. admin guards the reset endpoint.
func NewStandingsModule(
	ctx context.Context,
	obs observability.Observability,
	src Sources,
	eventBus eventbus.EventBus,
	router *message.Router,
	artifacts ArtifactOptions,
	opMetrics metrics.OperationMetrics,
	standingsMetrics metrics.StandingsMetrics,
	httpRouter chi.Router,
	admin func(http.Handler) http.Handler,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "standings.NewStandingsModule initializing")

	service := standingsservice.NewStandingsService(
		src.Roster, src.Calendar, src.Rules, src.Scores, src.Shots, src.Clock,
		eventBus, logger, opMetrics, standingsMetrics, tracer,
	)

	module := &Module{StandingsService: service, observability: obs}

	var enqueuer standingsqueue.Enqueuer
	if artifacts.Uploader != nil {
		publisher := standingspublisher.NewPublisher(service, artifacts.Uploader, artifacts.Prefix, logger)
		if artifacts.QueueDSN != "" {
			q, err := standingsqueue.NewService(ctx, artifacts.QueueDSN, artifacts.MaxWorkers, publisher, logger, opMetrics)
			if err != nil {
				return nil, fmt.Errorf("failed to create results queue: %w", err)
			}
			module.queue = q
			enqueuer = q
		} else {
			enqueuer = standingsqueue.Inline{Publisher: publisher, Logger: logger}
		}
	}

	handlers := standingshandlers.NewStandingsHandlers(service, enqueuer, logger, tracer)

	if router != nil {
		module.StandingsRouter = standingsrouter.NewStandingsRouter(logger, router, eventBus, eventBus, tracer, obs.Registry)
		if err := module.StandingsRouter.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure standings router: %w", err)
		}
	}

	if httpRouter != nil {
		standingshandlers.Routes(handlers, admin)(httpRouter)
	}

	return module, nil
}

// Run starts the results queue, if any, and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting standings module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Results queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Standings module goroutine stopped")
}

// Close stops the results queue.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping standings module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.queue != nil {
		if err := m.queue.Stop(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("Standings module stopped")
	return nil
}
