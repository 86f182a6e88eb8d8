package rosterservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/results"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// HandicapRecord is the persisted form of a handicap, keyed by player id.
type HandicapRecord struct {
	PlayerID  string    `json:"player_id"`
	Handicap  float64   `json:"handicap"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RosterService implements Service.
type RosterService struct {
	mu        sync.RWMutex
	roster    *rosterdomain.Roster
	handicaps *store.Collection[HandicapRecord]
	bus       message.Publisher
	logger    *slog.Logger
	telemetry observability.Telemetry
}

func NewRosterService(
	roster *rosterdomain.Roster,
	st store.Store,
	bus message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
) *RosterService {
	tel := observability.NewTelemetry("RosterService", logger, m, tracer)
	return &RosterService{
		roster:    roster,
		handicaps: store.NewCollection(st, store.CollectionPlayers, func(r HandicapRecord) string { return r.PlayerID }),
		bus:       bus,
		logger:    tel.Logger,
		telemetry: tel,
	}
}

func (s *RosterService) Roster() *rosterdomain.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster
}

func (s *RosterService) Players() []rosterdomain.Player {
	return s.Roster().Players()
}

func (s *RosterService) Player(id string) (rosterdomain.Player, error) {
	r := s.Roster()
	if err := r.Validate(id); err != nil {
		return rosterdomain.Player{}, err
	}
	p, _ := r.Player(id)
	return p, nil
}

func (s *RosterService) Load(ctx context.Context) error {
	seed := make([]HandicapRecord, 0, s.Roster().Size())
	for _, p := range s.Players() {
		seed = append(seed, HandicapRecord{PlayerID: p.ID, Handicap: p.Handicap, UpdatedAt: time.Now().UTC()})
	}
	seeded, err := s.handicaps.InitializeIfEmpty(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to seed players: %w", err)
	}
	if seeded {
		s.logger.InfoContext(ctx, "Seeded roster handicaps", attr.Int("players", len(seed)))
	}

	recs, err := s.handicaps.All(ctx)
	if err != nil && recs == nil {
		return fmt.Errorf("failed to load players: %w", err)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Skipped undecodable player records", attr.Error(err))
	}
	s.apply(ctx, recs)
	return nil
}

func (s *RosterService) Watch(ctx context.Context) (store.Unsubscribe, error) {
	return s.handicaps.Subscribe(ctx, func(recs []HandicapRecord, err error) {
		if err != nil {
			s.logger.Warn("Skipped undecodable player records", attr.Error(err))
		}
		if s.apply(context.Background(), recs) {
			_ = eventbus.Publish(context.Background(), s.bus, s.logger, eventbus.LedgerReloadedV1,
				eventbus.LedgerReloadedPayload{Collection: store.CollectionPlayers, Records: len(recs)})
		}
	})
}

// apply swaps in persisted handicaps and reports whether anything changed.
func (s *RosterService) apply(ctx context.Context, recs []HandicapRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	roster := s.roster
	for _, rec := range recs {
		current, ok := roster.Player(rec.PlayerID)
		if !ok {
			s.logger.WarnContext(ctx, "Ignoring handicap for unknown player", attr.PlayerID(rec.PlayerID))
			continue
		}
		if current.Handicap == rec.Handicap {
			continue
		}
		next, err := roster.WithHandicap(rec.PlayerID, rec.Handicap)
		if err != nil {
			s.logger.WarnContext(ctx, "Ignoring invalid persisted handicap",
				attr.PlayerID(rec.PlayerID),
				attr.Float64("handicap", rec.Handicap),
				attr.Error(err),
			)
			continue
		}
		roster = next
		changed = true
	}
	s.roster = roster
	return changed
}

// UpdateHandicap persists a new handicap. The in-memory roster changes only
// after the store accepted the write.
func (s *RosterService) UpdateHandicap(ctx context.Context, id string, handicap float64) (rosterdomain.Player, error) {
	return observability.Unwrap(observability.WithTelemetry(s.telemetry, ctx, "UpdateHandicap", id,
		func(ctx context.Context) (results.OperationResult[rosterdomain.Player, error], error) {
			return s.updateHandicapLogic(ctx, id, handicap)
		}))
}

func (s *RosterService) updateHandicapLogic(ctx context.Context, id string, handicap float64) (results.OperationResult[rosterdomain.Player, error], error) {
	next, err := s.Roster().WithHandicap(id, handicap)
	if err != nil {
		return results.FailureResult[rosterdomain.Player, error](err), nil
	}

	rec := HandicapRecord{PlayerID: id, Handicap: handicap, UpdatedAt: time.Now().UTC()}
	if err := s.handicaps.Put(ctx, rec); err != nil {
		return results.OperationResult[rosterdomain.Player, error]{}, fmt.Errorf("failed to save handicap for player %s: %w", id, err)
	}

	s.mu.Lock()
	current, ok := s.roster.Player(id)
	if ok && current.Handicap != handicap {
		if updated, err := s.roster.WithHandicap(id, handicap); err == nil {
			s.roster = updated
		}
	}
	s.mu.Unlock()

	_ = eventbus.Publish(ctx, s.bus, s.logger, eventbus.HandicapUpdatedV1,
		eventbus.HandicapUpdatedPayload{PlayerID: id, Handicap: handicap})

	p, _ := next.Player(id)
	s.logger.InfoContext(ctx, "Handicap updated",
		attr.PlayerID(id),
		attr.Float64("handicap", handicap),
	)
	return results.SuccessResult[rosterdomain.Player, error](p), nil
}

var _ Service = (*RosterService)(nil)
