package roster

import (
	"context"
	"fmt"

	rosterservice "github.com/Black-And-White-Club/tripscore/app/modules/roster/application"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	rosterhandlers "github.com/Black-And-White-Club/tripscore/app/modules/roster/infrastructure/handlers"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
)

// Module represents the roster module.
type Module struct {
	RosterService rosterservice.Service
	unsubscribe   store.Unsubscribe
	observability observability.Observability
}

// NewRosterModule seeds stored handicaps from the configured roster on first
// start and mounts /api/roster when httpRouter is set.
func NewRosterModule(
	ctx context.Context,
	obs observability.Observability,
	roster *rosterdomain.Roster,
	st store.Store,
	bus message.Publisher,
	opMetrics metrics.OperationMetrics,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "roster.NewRosterModule initializing")

	service := rosterservice.NewRosterService(roster, st, bus, logger, opMetrics, obs.Tracer)
	if err := service.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	unsubscribe, err := service.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch roster: %w", err)
	}

	if httpRouter != nil {
		handlers := rosterhandlers.NewRosterHandlers(service, logger, obs.Tracer)
		httpRouter.Route("/api/roster", rosterhandlers.Routes(handlers))
	}

	return &Module{RosterService: service, unsubscribe: unsubscribe, observability: obs}, nil
}

func (m *Module) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.observability.Logger.Info("Roster module stopped")
	return nil
}
