package shotservice

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/results"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// ShotLedger implements Service.
type ShotLedger struct {
	mu    sync.RWMutex
	shots map[string]shotdomain.SpecialShot

	roster    RosterProvider
	calendar  *competition.Calendar
	coll      *store.Collection[shotdomain.SpecialShot]
	bus       message.Publisher
	logger    *slog.Logger
	telemetry observability.Telemetry
	now       func() time.Time
}

func NewShotLedger(
	roster RosterProvider,
	calendar *competition.Calendar,
	st store.Store,
	bus message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
) *ShotLedger {
	tel := observability.NewTelemetry("ShotLedger", logger, m, tracer)
	return &ShotLedger{
		shots:     map[string]shotdomain.SpecialShot{},
		roster:    roster,
		calendar:  calendar,
		coll:      store.NewCollection(st, store.CollectionSpecialShots, shotdomain.SpecialShot.Key),
		bus:       bus,
		logger:    tel.Logger,
		telemetry: tel,
		now:       time.Now,
	}
}

func (l *ShotLedger) Load(ctx context.Context) error {
	shots, err := l.coll.All(ctx)
	if err != nil && shots == nil {
		return fmt.Errorf("failed to load special shots: %w", err)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "Skipped undecodable special shots", attr.Error(err))
	}
	l.replace(ctx, shots)
	return nil
}

func (l *ShotLedger) Watch(ctx context.Context) (store.Unsubscribe, error) {
	return l.coll.Subscribe(ctx, func(shots []shotdomain.SpecialShot, err error) {
		bg := context.Background()
		if err != nil {
			l.logger.Warn("Skipped undecodable special shots", attr.Error(err))
		}
		if l.replace(bg, shots) {
			_ = eventbus.Publish(bg, l.bus, l.logger, eventbus.LedgerReloadedV1,
				eventbus.LedgerReloadedPayload{Collection: store.CollectionSpecialShots, Records: len(shots)})
		}
	})
}

func (l *ShotLedger) replace(ctx context.Context, shots []shotdomain.SpecialShot) bool {
	roster := l.roster.Roster()
	next := make(map[string]shotdomain.SpecialShot, len(shots))
	for _, s := range shots {
		if err := s.Validate(roster, l.calendar); err != nil {
			l.logger.WarnContext(ctx, "Ignoring invalid stored special shot",
				attr.Date(s.Date),
				attr.String("type", string(s.Type)),
				attr.Error(err),
			)
			continue
		}
		// Validate accepts any casing; the ledger is keyed by the canonical kind.
		s.Type, _ = shotdomain.ParseType(string(s.Type))
		if prev, ok := next[s.Key()]; ok && prev.UpdatedAt.After(s.UpdatedAt) {
			continue
		}
		next[s.Key()] = s
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if reflect.DeepEqual(next, l.shots) {
		return false
	}
	l.shots = next
	return true
}

func (l *ShotLedger) Declare(ctx context.Context, shot shotdomain.SpecialShot) (shotdomain.SpecialShot, error) {
	return observability.Unwrap(observability.WithTelemetry(l.telemetry, ctx, "Declare", shot.Key(),
		func(ctx context.Context) (results.OperationResult[shotdomain.SpecialShot, error], error) {
			return l.declareLogic(ctx, shot)
		}))
}

func (l *ShotLedger) declareLogic(ctx context.Context, shot shotdomain.SpecialShot) (results.OperationResult[shotdomain.SpecialShot, error], error) {
	kind, err := shotdomain.ParseType(string(shot.Type))
	if err != nil {
		return results.FailureResult[shotdomain.SpecialShot, error](err), nil
	}
	shot.Type = kind
	if err := shot.Validate(l.roster.Roster(), l.calendar); err != nil {
		return results.FailureResult[shotdomain.SpecialShot, error](err), nil
	}
	shot.UpdatedAt = l.now().UTC()

	if err := l.coll.Put(ctx, shot); err != nil {
		return results.OperationResult[shotdomain.SpecialShot, error]{}, fmt.Errorf("failed to save special shot %s: %w", shot.Key(), err)
	}

	l.mu.Lock()
	l.shots[shot.Key()] = shot
	l.mu.Unlock()

	_ = eventbus.Publish(ctx, l.bus, l.logger, eventbus.SpecialShotDeclaredV1, eventbus.SpecialShotPayload{
		Date:     shot.Date,
		Type:     string(shot.Type),
		PlayerID: shot.PlayerID,
	})
	return results.SuccessResult[shotdomain.SpecialShot, error](shot), nil
}

// Clear removes a declaration. Clearing an undeclared pair is not an error.
func (l *ShotLedger) Clear(ctx context.Context, date string, kind competition.Kind) error {
	_, err := observability.Unwrap(observability.WithTelemetry(l.telemetry, ctx, "Clear", shotdomain.Key(date, kind),
		func(ctx context.Context) (results.OperationResult[bool, error], error) {
			return l.clearLogic(ctx, date, kind)
		}))
	return err
}

func (l *ShotLedger) clearLogic(ctx context.Context, date string, kind competition.Kind) (results.OperationResult[bool, error], error) {
	k, err := shotdomain.ParseType(string(kind))
	if err != nil {
		return results.FailureResult[bool, error](err), nil
	}
	if err := l.calendar.Validate(date); err != nil {
		return results.FailureResult[bool, error](err), nil
	}

	key := shotdomain.Key(date, k)
	if err := l.coll.Delete(ctx, key); err != nil {
		return results.OperationResult[bool, error]{}, fmt.Errorf("failed to clear special shot %s: %w", key, err)
	}

	l.mu.Lock()
	_, existed := l.shots[key]
	delete(l.shots, key)
	l.mu.Unlock()

	if existed {
		_ = eventbus.Publish(ctx, l.bus, l.logger, eventbus.SpecialShotClearedV1, eventbus.SpecialShotPayload{
			Date: date,
			Type: string(k),
		})
	}
	return results.SuccessResult[bool, error](existed), nil
}

func (l *ShotLedger) Reset(ctx context.Context) error {
	if err := l.coll.Replace(ctx, nil); err != nil {
		return fmt.Errorf("failed to reset special shots: %w", err)
	}
	l.mu.Lock()
	l.shots = map[string]shotdomain.SpecialShot{}
	l.mu.Unlock()
	l.logger.InfoContext(ctx, "Special shots reset", attr.ExtractCorrelationID(ctx))
	return nil
}

func (l *ShotLedger) WinnerFor(date string, kind competition.Kind) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.shots[shotdomain.Key(date, kind)]
	return s.PlayerID, ok
}

// All returns the declarations in calendar order, closest to pin first.
func (l *ShotLedger) All() []shotdomain.SpecialShot {
	l.mu.RLock()
	out := make([]shotdomain.SpecialShot, 0, len(l.shots))
	for _, s := range l.shots {
		out = append(out, s)
	}
	l.mu.RUnlock()

	dayIndex := make(map[string]int, l.calendar.Len())
	for i, d := range l.calendar.Days() {
		dayIndex[d.Date] = i
	}
	typeIndex := func(k competition.Kind) int {
		for i, t := range shotdomain.Types {
			if t == k {
				return i
			}
		}
		return len(shotdomain.Types)
	}
	sort.Slice(out, func(i, j int) bool {
		if di, dj := dayIndex[out[i].Date], dayIndex[out[j].Date]; di != dj {
			return di < dj
		}
		return typeIndex(out[i].Type) < typeIndex(out[j].Type)
	})
	return out
}

var _ Service = (*ShotLedger)(nil)
