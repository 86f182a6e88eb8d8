package standingsservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/results"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// StandingsService implements Service.
type StandingsService struct {
	mu      sync.RWMutex
	engine  *standingsdomain.Engine
	results standingsdomain.Results

	roster   RosterProvider
	calendar *competition.Calendar
	rules    competition.Rules
	scores   ScoreSource
	shots    ShotSource
	clock    competition.Clock

	bus       message.Publisher
	metrics   metrics.StandingsMetrics
	logger    *slog.Logger
	telemetry observability.Telemetry
	palette   ChartPalette

	subMu  sync.Mutex
	subs   map[int]chan Update
	nextID int
}

func NewStandingsService(
	roster RosterProvider,
	calendar *competition.Calendar,
	rules competition.Rules,
	scores ScoreSource,
	shots ShotSource,
	clock competition.Clock,
	bus message.Publisher,
	logger *slog.Logger,
	opMetrics metrics.OperationMetrics,
	standingsMetrics metrics.StandingsMetrics,
	tracer trace.Tracer,
) *StandingsService {
	if clock == nil {
		clock = competition.RealClock{}
	}
	if standingsMetrics == nil {
		standingsMetrics = metrics.NoOp{}
	}
	tel := observability.NewTelemetry("StandingsService", logger, opMetrics, tracer)
	s := &StandingsService{
		roster:    roster,
		calendar:  calendar,
		rules:     rules,
		scores:    scores,
		shots:     shots,
		clock:     clock,
		bus:       bus,
		metrics:   standingsMetrics,
		logger:    tel.Logger,
		telemetry: tel,
		palette:   DefaultPalette,
		subs:      map[int]chan Update{},
	}
	s.engine = s.build()
	s.results = s.engine.Results()
	return s
}

func (s *StandingsService) now() time.Time { return s.clock.Now() }

func (s *StandingsService) build() *standingsdomain.Engine {
	return standingsdomain.NewEngine(s.roster.Roster(), s.calendar, s.rules, s.scores.All(), s.shots.All())
}

func (s *StandingsService) Recompute(ctx context.Context, reason string) (Update, error) {
	return observability.Unwrap(observability.WithTelemetry(s.telemetry, ctx, "Recompute", reason,
		func(ctx context.Context) (results.OperationResult[Update, error], error) {
			return results.SuccessResult[Update, error](s.recompute(ctx, reason)), nil
		}))
}

func (s *StandingsService) recompute(ctx context.Context, reason string) Update {
	engine := s.build()
	res := engine.Results()

	s.mu.Lock()
	before := determinedKeys(s.results)
	s.engine, s.results = engine, res
	s.mu.Unlock()

	var newly []string
	for _, st := range res.Status {
		if st.Determined && !before[st.Key()] {
			newly = append(newly, st.Key())
		}
	}

	s.metrics.RecordRecompute(reason)
	s.metrics.SetCompetitionsDetermined(res.CompetitionsDetermined, res.CompetitionsTotal)
	s.metrics.SetPrizePool(res.PrizesAwarded)
	for _, d := range res.Completion.Days {
		s.metrics.SetDayRecords(d.Date, d.Recorded)
	}

	if len(newly) > 0 {
		s.logger.InfoContext(ctx, "Competitions determined",
			attr.ExtractCorrelationID(ctx),
			attr.Any("competitions", newly),
			attr.Int("determined", res.CompetitionsDetermined),
			attr.Int("total", res.CompetitionsTotal),
		)
	}

	return Update{
		Reason:                 reason,
		CompetitionsDetermined: res.CompetitionsDetermined,
		CompetitionsTotal:      res.CompetitionsTotal,
		NewlyDetermined:        newly,
		ComputedAt:             s.clock.Now().UTC(),
	}
}

func determinedKeys(r standingsdomain.Results) map[string]bool {
	out := make(map[string]bool, len(r.Status))
	for _, st := range r.Status {
		if st.Determined {
			out[st.Key()] = true
		}
	}
	return out
}

// Reset clears the round scores and special shots. A failure after the
// first collection was cleared leaves that collection empty.
func (s *StandingsService) Reset(ctx context.Context) error {
	_, err := observability.Unwrap(observability.WithTelemetry(s.telemetry, ctx, "Reset", "all",
		func(ctx context.Context) (results.OperationResult[bool, error], error) {
			if err := s.scores.Reset(ctx); err != nil {
				return results.OperationResult[bool, error]{}, err
			}
			if err := s.shots.Reset(ctx); err != nil {
				return results.OperationResult[bool, error]{}, err
			}
			return results.SuccessResult[bool, error](true), nil
		}))
	if err != nil {
		return fmt.Errorf("failed to reset ledgers: %w", err)
	}

	_ = eventbus.Publish(ctx, s.bus, s.logger, eventbus.LedgerResetV1, eventbus.LedgerResetPayload{
		Collections: []string{store.CollectionRoundScores, store.CollectionSpecialShots},
	})
	return nil
}

func (s *StandingsService) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *StandingsService) Notify(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

var _ Service = (*StandingsService)(nil)
