package scoreservice

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	"github.com/Black-And-White-Club/tripscore/app/modules/score/infrastructure/parsers"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/results"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// ScoreLedger implements Service. The in-memory map mirrors the store's
// roundScores collection and only changes after the store accepted a write.
type ScoreLedger struct {
	mu      sync.RWMutex
	records map[string]scoredomain.RoundScore

	roster    RosterProvider
	calendar  *competition.Calendar
	coll      *store.Collection[scoredomain.RoundScore]
	parsers   parsers.ParserFactory
	bus       message.Publisher
	logger    *slog.Logger
	telemetry observability.Telemetry
	now       func() time.Time
}

func NewScoreLedger(
	roster RosterProvider,
	calendar *competition.Calendar,
	st store.Store,
	bus message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
) *ScoreLedger {
	tel := observability.NewTelemetry("ScoreLedger", logger, m, tracer)
	return &ScoreLedger{
		records:   map[string]scoredomain.RoundScore{},
		roster:    roster,
		calendar:  calendar,
		coll:      store.NewCollection(st, store.CollectionRoundScores, scoredomain.RoundScore.Key),
		parsers:   parsers.NewFactory(),
		bus:       bus,
		logger:    tel.Logger,
		telemetry: tel,
		now:       time.Now,
	}
}

func (l *ScoreLedger) Load(ctx context.Context) error {
	recs, err := l.coll.All(ctx)
	if err != nil && recs == nil {
		return fmt.Errorf("failed to load round scores: %w", err)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "Skipped undecodable round scores", attr.Error(err))
	}
	l.replace(ctx, recs)
	l.logger.InfoContext(ctx, "Round scores loaded", attr.Int("records", len(l.All())))
	return nil
}

func (l *ScoreLedger) Watch(ctx context.Context) (store.Unsubscribe, error) {
	return l.coll.Subscribe(ctx, func(recs []scoredomain.RoundScore, err error) {
		bg := context.Background()
		if err != nil {
			l.logger.Warn("Skipped undecodable round scores", attr.Error(err))
		}
		if l.replace(bg, recs) {
			_ = eventbus.Publish(bg, l.bus, l.logger, eventbus.LedgerReloadedV1,
				eventbus.LedgerReloadedPayload{Collection: store.CollectionRoundScores, Records: len(recs)})
		}
	})
}

// replace swaps in a store snapshot, dropping records that reference
// players or days this instance does not know. It reports whether the
// snapshot differed from the current state.
func (l *ScoreLedger) replace(ctx context.Context, recs []scoredomain.RoundScore) bool {
	roster := l.roster.Roster()
	next := make(map[string]scoredomain.RoundScore, len(recs))
	for _, r := range recs {
		r = r.Normalized()
		if err := r.Validate(roster, l.calendar); err != nil {
			l.logger.WarnContext(ctx, "Ignoring invalid stored round score",
				attr.PlayerID(r.PlayerID),
				attr.Date(r.Date),
				attr.Error(err),
			)
			continue
		}
		next[r.Key()] = r
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if reflect.DeepEqual(next, l.records) {
		return false
	}
	l.records = next
	return true
}

func (l *ScoreLedger) Upsert(ctx context.Context, rec scoredomain.RoundScore) (scoredomain.RoundScore, error) {
	return observability.Unwrap(observability.WithTelemetry(l.telemetry, ctx, "Upsert", scoredomain.Key(rec.Date, rec.PlayerID),
		func(ctx context.Context) (results.OperationResult[scoredomain.RoundScore, error], error) {
			return l.upsertLogic(ctx, rec)
		}))
}

func (l *ScoreLedger) upsertLogic(ctx context.Context, rec scoredomain.RoundScore) (results.OperationResult[scoredomain.RoundScore, error], error) {
	rec = rec.Normalized()
	if err := rec.Validate(l.roster.Roster(), l.calendar); err != nil {
		return results.FailureResult[scoredomain.RoundScore, error](err), nil
	}
	rec.UpdatedAt = l.now().UTC()

	if err := l.coll.Put(ctx, rec); err != nil {
		return results.OperationResult[scoredomain.RoundScore, error]{}, fmt.Errorf("failed to save round score %s: %w", rec.Key(), err)
	}

	l.mu.Lock()
	l.records[rec.Key()] = rec
	l.mu.Unlock()

	_ = eventbus.Publish(ctx, l.bus, l.logger, eventbus.RoundScoreSavedV1, eventbus.RoundScoreSavedPayload{
		PlayerID:    rec.PlayerID,
		Date:        rec.Date,
		TotalPoints: rec.TotalPoints,
	})
	return results.SuccessResult[scoredomain.RoundScore, error](rec), nil
}

func (l *ScoreLedger) ScoreHoles(ctx context.Context, playerID, date string, holes []scoredomain.HoleInput) (scoredomain.RoundScore, error) {
	roster := l.roster.Roster()
	if err := roster.Validate(playerID); err != nil {
		return scoredomain.RoundScore{}, err
	}
	p, _ := roster.Player(playerID)

	scored, err := scoredomain.ScoreHoles(p.Handicap, holes)
	if err != nil {
		return scoredomain.RoundScore{}, err
	}
	return l.Upsert(ctx, scoredomain.RoundScore{
		PlayerID:        playerID,
		Date:            date,
		FrontNinePoints: scored.FrontNine,
		BackNinePoints:  scored.BackNine,
		Holes:           scored.Holes,
		TotalStrokes:    scored.TotalStrokes,
	})
}

// Reset clears the collection in the store and in memory.
func (l *ScoreLedger) Reset(ctx context.Context) error {
	if err := l.coll.Replace(ctx, nil); err != nil {
		return fmt.Errorf("failed to reset round scores: %w", err)
	}
	l.mu.Lock()
	l.records = map[string]scoredomain.RoundScore{}
	l.mu.Unlock()
	l.logger.InfoContext(ctx, "Round scores reset", attr.ExtractCorrelationID(ctx))
	return nil
}

func (l *ScoreLedger) Get(date, playerID string) (scoredomain.RoundScore, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.records[scoredomain.Key(date, playerID)]
	return r, ok
}

// All returns every record in calendar order, then roster order.
func (l *ScoreLedger) All() []scoredomain.RoundScore {
	return l.filter(func(scoredomain.RoundScore) bool { return true })
}

func (l *ScoreLedger) ByDay(date string) ([]scoredomain.RoundScore, error) {
	if err := l.calendar.Validate(date); err != nil {
		return nil, err
	}
	return l.filter(func(r scoredomain.RoundScore) bool { return r.Date == date }), nil
}

func (l *ScoreLedger) ByPlayer(playerID string) ([]scoredomain.RoundScore, error) {
	if err := l.roster.Roster().Validate(playerID); err != nil {
		return nil, err
	}
	return l.filter(func(r scoredomain.RoundScore) bool { return r.PlayerID == playerID }), nil
}

func (l *ScoreLedger) filter(keep func(scoredomain.RoundScore) bool) []scoredomain.RoundScore {
	l.mu.RLock()
	out := make([]scoredomain.RoundScore, 0, len(l.records))
	for _, r := range l.records {
		if keep(r) {
			out = append(out, r.Normalized())
		}
	}
	l.mu.RUnlock()

	roster := l.roster.Roster()
	dayIndex := make(map[string]int, l.calendar.Len())
	for i, d := range l.calendar.Days() {
		dayIndex[d.Date] = i
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := dayIndex[out[i].Date], dayIndex[out[j].Date]
		if di != dj {
			return di < dj
		}
		pi, _ := roster.Index(out[i].PlayerID)
		pj, _ := roster.Index(out[j].PlayerID)
		return pi < pj
	})
	return out
}

var _ Service = (*ScoreLedger)(nil)
