package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenLocal(context.Background(), ":memory:", discardLogger(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreKeyedWrites(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)
	assert.Equal(t, BackendLocal, s.Backend())

	recs, err := s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.2", Value: []byte(`{"v":1}`)}))
	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.1", Value: []byte(`{"v":2}`)}))
	require.NoError(t, s.Put(ctx, CollectionSpecialShots, Record{Key: "2025-09-25.closestToPin", Value: []byte(`{}`)}))

	// Same key replaces in place.
	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.2", Value: []byte(`{"v":3}`)}))

	recs, err = s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Key: "2025-09-25.1", Value: []byte(`{"v":2}`)},
		{Key: "2025-09-25.2", Value: []byte(`{"v":3}`)},
	}, recs)

	require.NoError(t, s.Delete(ctx, CollectionRoundScores, "2025-09-25.1"))
	require.NoError(t, s.Delete(ctx, CollectionRoundScores, "missing"))

	recs, err = s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	shots, err := s.Get(ctx, CollectionSpecialShots)
	require.NoError(t, err)
	assert.Len(t, shots, 1)
}

func TestSQLStoreSetReplacesCollection(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "old", Value: []byte(`1`)}))
	require.NoError(t, s.Put(ctx, CollectionSpecialShots, Record{Key: "untouched", Value: []byte(`1`)}))

	require.NoError(t, s.Set(ctx, CollectionRoundScores, []Record{
		{Key: "a", Value: []byte(`1`)},
		{Key: "b", Value: []byte(`2`)},
	}))

	recs, err := s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keysOf(recs))

	require.NoError(t, s.Set(ctx, CollectionRoundScores, nil))
	recs, err = s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Empty(t, recs)

	shots, err := s.Get(ctx, CollectionSpecialShots)
	require.NoError(t, err)
	assert.Len(t, shots, 1)
}

func TestSQLStoreInitializeIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)
	seed := []Record{{Key: "1", Value: []byte(`{"handicap":0}`)}}

	seeded, err := s.InitializeIfEmpty(ctx, CollectionPlayers, seed)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.InitializeIfEmpty(ctx, CollectionPlayers, []Record{{Key: "2", Value: []byte(`{}`)}})
	require.NoError(t, err)
	assert.False(t, seeded)

	recs, err := s.Get(ctx, CollectionPlayers)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, keysOf(recs))
}

func TestSQLStoreRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	assert.ErrorIs(t, s.Put(ctx, CollectionRoundScores, Record{Key: "bad key"}), ErrInvalidKey)
	_, err := s.Get(ctx, "bad collection")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSQLStoreLocalSubscribeIsNoop(t *testing.T) {
	s := newLocalStore(t)
	called := false

	unsub, err := s.Subscribe(context.Background(), CollectionRoundScores, func([]Record) { called = true })
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), CollectionRoundScores, Record{Key: "x", Value: []byte(`1`)}))
	unsub()
	unsub()

	assert.False(t, called)
}

func TestSQLStoreClosedReportsUnavailable(t *testing.T) {
	s, err := OpenLocal(context.Background(), ":memory:", discardLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Put(context.Background(), CollectionRoundScores, Record{Key: "x", Value: []byte(`1`)})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSQLStoreDispatchDeliversInLoadOrder(t *testing.T) {
	ctx := context.Background()
	s := newLocalStore(t)

	var (
		mu   sync.Mutex
		seen []int
	)
	s.mu.Lock()
	s.listeners[CollectionRoundScores] = map[int]Listener{0: func(recs []Record) {
		mu.Lock()
		seen = append(seen, len(recs))
		mu.Unlock()
	}}
	s.mu.Unlock()

	// Each write is followed by a concurrent reload, as the initial
	// subscription load and NOTIFY-driven reloads are.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: fmt.Sprintf("2025-09-25.%d", i), Value: []byte(`{}`)}))
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.dispatch(CollectionRoundScores)
		}()
	}
	wg.Wait()

	require.Len(t, seen, 20)
	assert.IsNonDecreasing(t, seen, "an older snapshot never follows a newer one")
	assert.Equal(t, 20, seen[len(seen)-1])
}

func keysOf(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Key
	}
	return out
}
