package score

import (
	"context"
	"fmt"
	"sync"

	scoreservice "github.com/Black-And-White-Club/tripscore/app/modules/score/application"
	scorehandlers "github.com/Black-And-White-Club/tripscore/app/modules/score/infrastructure/handlers"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Module represents the score module.
type Module struct {
	ScoreService  scoreservice.Service
	unsubscribe   store.Unsubscribe
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewScoreModule loads the round score ledger, subscribes it to remote
// changes and mounts /api/scores when httpRouter is set.
func NewScoreModule(
	ctx context.Context,
	obs observability.Observability,
	st store.Store,
	bus message.Publisher,
	roster scoreservice.RosterProvider,
	calendar *competition.Calendar,
	opMetrics metrics.OperationMetrics,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "score.NewScoreModule initializing")

	service := scoreservice.NewScoreLedger(roster, calendar, st, bus, logger, opMetrics, tracer)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load score ledger: %w", err)
	}
	unsubscribe, err := service.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch score ledger: %w", err)
	}

	if httpRouter != nil {
		handlers := scorehandlers.NewScoreHandlers(service, logger, tracer)
		httpRouter.Route("/api/scores", scorehandlers.Routes(handlers))
	}

	return &Module{
		ScoreService:  service,
		unsubscribe:   unsubscribe,
		observability: obs,
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting score module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Score module goroutine stopped")
}

// Close stops the store subscription.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping score module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}

	logger.Info("Score module stopped")
	return nil
}
