package specialshot

import (
	"context"
	"fmt"

	shotservice "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/application"
	shothandlers "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/infrastructure/handlers"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Module represents the special-shot module.
type Module struct {
	ShotService   shotservice.Service
	unsubscribe   store.Unsubscribe
	observability observability.Observability
}

// NewSpecialShotModule loads the ledger, subscribes it and mounts
// /api/special-shots when httpRouter is set.
func NewSpecialShotModule(
	ctx context.Context,
	obs observability.Observability,
	st store.Store,
	bus message.Publisher,
	roster shotservice.RosterProvider,
	calendar *competition.Calendar,
	opMetrics metrics.OperationMetrics,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "specialshot.NewSpecialShotModule initializing")

	service := shotservice.NewShotLedger(roster, calendar, st, bus, logger, opMetrics, obs.Tracer)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load special shots: %w", err)
	}
	unsubscribe, err := service.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch special shots: %w", err)
	}

	if httpRouter != nil {
		handlers := shothandlers.NewShotHandlers(service, logger, obs.Tracer)
		httpRouter.Route("/api/special-shots", shothandlers.Routes(handlers))
	}

	return &Module{ShotService: service, unsubscribe: unsubscribe, observability: obs}, nil
}

func (m *Module) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.observability.Logger.Info("Special shot module stopped")
	return nil
}
