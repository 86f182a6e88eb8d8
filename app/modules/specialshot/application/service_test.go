package shotservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/Black-And-White-Club/tripscore/internal/store/storetest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	day1 = "2025-09-25"
	day2 = "2025-09-26"
)

var fixedNow = time.Date(2025, 9, 26, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*ShotLedger, *storetest.FakeStore, *FakePublisher) {
	t.Helper()
	roster, err := rosterdomain.NewRoster([]rosterdomain.Player{
		{ID: "1", Name: "Peter"},
		{ID: "2", Name: "Johan"},
	})
	require.NoError(t, err)
	cal, err := competition.NewCalendar([]competition.Day{
		{Date: day1, Name: "Kilspindie"},
		{Date: day2, Name: "Dunbar"},
	}, nil)
	require.NoError(t, err)

	st := storetest.NewFakeStore()
	pub := &FakePublisher{}
	l := NewShotLedger(&FakeRoster{R: roster}, cal, st, pub,
		slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NoOp{}, noop.NewTracerProvider().Tracer("test"))
	l.now = func() time.Time { return fixedNow }
	return l, st, pub
}

func TestDeclare(t *testing.T) {
	tests := []struct {
		name      string
		shot      shotdomain.SpecialShot
		putErr    error
		wantErrIs error
		want      shotdomain.SpecialShot
	}{
		{
			name: "normalises type",
			shot: shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: "closesttopin", Hole: 7, Distance: 1.8},
			want: shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: competition.KindClosestToPin, Hole: 7, Distance: 1.8, UpdatedAt: fixedNow},
		},
		{
			name:      "score kind rejected",
			shot:      shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: competition.KindFullRound},
			wantErrIs: shared.ErrValidation,
		},
		{
			name:      "unknown player",
			shot:      shotdomain.SpecialShot{PlayerID: "7", Date: day1, Type: competition.KindLongestDrive},
			wantErrIs: shared.ErrValidation,
		},
		{
			name:      "store unavailable",
			shot:      shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: competition.KindLongestDrive},
			putErr:    errors.New("connection closed"),
			wantErrIs: store.ErrUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, st, pub := newTestLedger(t)
			st.PutErr = tt.putErr

			got, err := l.Declare(context.Background(), tt.shot)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Empty(t, l.All())
				assert.Empty(t, pub.Topics())
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Declare() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{eventbus.SpecialShotDeclaredV1}, pub.Topics())
		})
	}
}

func TestDeclareReplacesPair(t *testing.T) {
	l, st, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Declare(ctx, shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: competition.KindClosestToPin})
	require.NoError(t, err)
	_, err = l.Declare(ctx, shotdomain.SpecialShot{PlayerID: "2", Date: day1, Type: competition.KindClosestToPin})
	require.NoError(t, err)

	winner, ok := l.WinnerFor(day1, competition.KindClosestToPin)
	require.True(t, ok)
	assert.Equal(t, "2", winner)
	assert.Len(t, l.All(), 1)
	assert.Equal(t, 1, st.Len(store.CollectionSpecialShots))

	_, ok = l.WinnerFor(day1, competition.KindLongestDrive)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	l, st, pub := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Declare(ctx, shotdomain.SpecialShot{PlayerID: "1", Date: day2, Type: competition.KindLongestDrive})
	require.NoError(t, err)

	require.NoError(t, l.Clear(ctx, day2, competition.KindLongestDrive))
	_, ok := l.WinnerFor(day2, competition.KindLongestDrive)
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len(store.CollectionSpecialShots))
	assert.Equal(t, []string{eventbus.SpecialShotDeclaredV1, eventbus.SpecialShotClearedV1}, pub.Topics())

	// Undeclared pair: no error, no event.
	require.NoError(t, l.Clear(ctx, day1, competition.KindClosestToPin))
	assert.Len(t, pub.Topics(), 2)

	assert.ErrorIs(t, l.Clear(ctx, "2025-01-01", competition.KindClosestToPin), shared.ErrValidation)
	assert.ErrorIs(t, l.Clear(ctx, day1, competition.KindBack9), shared.ErrValidation)

	st.DelErr = errors.New("down")
	assert.ErrorIs(t, l.Clear(ctx, day1, competition.KindClosestToPin), store.ErrUnavailable)
}

func TestAllOrder(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	for _, s := range []shotdomain.SpecialShot{
		{PlayerID: "1", Date: day2, Type: competition.KindLongestDrive},
		{PlayerID: "1", Date: day1, Type: competition.KindLongestDrive},
		{PlayerID: "2", Date: day2, Type: competition.KindClosestToPin},
	} {
		_, err := l.Declare(ctx, s)
		require.NoError(t, err)
	}

	var keys []string
	for _, s := range l.All() {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{day1 + ".longestDrive", day2 + ".closestToPin", day2 + ".longestDrive"}, keys)
}

func TestWatchAppliesRemoteDeclarations(t *testing.T) {
	l, st, pub := newTestLedger(t)
	require.NoError(t, l.Load(context.Background()))
	unsub, err := l.Watch(context.Background())
	require.NoError(t, err)
	defer unsub()

	data, err := json.Marshal(shotdomain.SpecialShot{PlayerID: "2", Date: day1, Type: competition.KindLongestDrive})
	require.NoError(t, err)
	st.PutRemote(store.CollectionSpecialShots, store.Record{Key: day1 + ".longestDrive", Value: data})

	winner, ok := l.WinnerFor(day1, competition.KindLongestDrive)
	require.True(t, ok)
	assert.Equal(t, "2", winner)
	assert.Equal(t, []string{eventbus.LedgerReloadedV1}, pub.Topics())

	unsub()
	require.NoError(t, l.Reset(context.Background()))
	assert.Empty(t, l.All())
}

func TestLoadNormalizesStoredTypes(t *testing.T) {
	l, st, _ := newTestLedger(t)
	put := func(key string, shot shotdomain.SpecialShot) {
		data, err := json.Marshal(shot)
		require.NoError(t, err)
		st.PutRemote(store.CollectionSpecialShots, store.Record{Key: key, Value: data})
	}
	older := fixedNow.Add(-time.Hour)
	put(day1+".ClosestToPin", shotdomain.SpecialShot{PlayerID: "2", Date: day1, Type: "ClosestToPin", UpdatedAt: fixedNow})
	put(day1+".closestToPin", shotdomain.SpecialShot{PlayerID: "1", Date: day1, Type: competition.KindClosestToPin, UpdatedAt: older})
	put(day2+".LONGESTDRIVE", shotdomain.SpecialShot{PlayerID: "1", Date: day2, Type: "LONGESTDRIVE"})

	require.NoError(t, l.Load(context.Background()))

	winner, ok := l.WinnerFor(day1, competition.KindClosestToPin)
	require.True(t, ok)
	assert.Equal(t, "2", winner, "latest declaration wins when casings collide")

	winner, ok = l.WinnerFor(day2, competition.KindLongestDrive)
	require.True(t, ok)
	assert.Equal(t, "1", winner)

	var kinds []competition.Kind
	for _, s := range l.All() {
		kinds = append(kinds, s.Type)
	}
	assert.Equal(t, []competition.Kind{competition.KindClosestToPin, competition.KindLongestDrive}, kinds)
}
