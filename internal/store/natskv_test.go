package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStoreGetFiltersByCollection(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKeyValue()
	s := NewKVStore(kv, discardLogger(), nil)

	recs, err := s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-26.3", Value: []byte(`b`)}))
	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.3", Value: []byte(`a`)}))
	require.NoError(t, s.Put(ctx, CollectionSpecialShots, Record{Key: "2025-09-25.longestDrive", Value: []byte(`c`)}))

	recs, err = s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Key: "2025-09-25.3", Value: []byte(`a`)},
		{Key: "2025-09-26.3", Value: []byte(`b`)},
	}, recs)

	_, ok := kv.data["roundScores.2025-09-25.3"]
	assert.True(t, ok, "records are stored under <collection>.<key>")
}

func TestKVStoreSetDeletesStaleKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKeyValue()
	s := NewKVStore(kv, discardLogger(), nil)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "stale", Value: []byte(`1`)}))
	require.NoError(t, s.Set(ctx, CollectionRoundScores, []Record{{Key: "fresh", Value: []byte(`2`)}}))

	recs, err := s.Get(ctx, CollectionRoundScores)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, keysOf(recs))
	assert.Contains(t, kv.Trace(), "Delete")
}

func TestKVStoreInitializeIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(NewFakeKeyValue(), discardLogger(), nil)

	seeded, err := s.InitializeIfEmpty(ctx, CollectionPlayers, []Record{{Key: "1", Value: []byte(`{}`)}})
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.InitializeIfEmpty(ctx, CollectionPlayers, []Record{{Key: "2", Value: []byte(`{}`)}})
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestKVStoreWrapsBackendErrors(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKeyValue()
	m := &FakeStoreMetrics{}
	s := NewKVStore(kv, discardLogger(), m)

	kv.PutErr = errors.New("nats: timeout")
	err := s.Put(ctx, CollectionRoundScores, Record{Key: "k", Value: []byte(`1`)})
	assert.ErrorIs(t, err, ErrUnavailable)

	kv.KeysErr = errors.New("nats: no responders")
	_, err = s.Get(ctx, CollectionRoundScores)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, []string{
		"nats/roundScores/put/error",
		"nats/roundScores/get/error",
	}, m.ops)
}

func TestKVStoreSubscribePushesCollection(t *testing.T) {
	ctx := context.Background()
	kv := NewFakeKeyValue()
	s := NewKVStore(kv, discardLogger(), nil)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.1", Value: []byte(`1`)}))

	var (
		mu        sync.Mutex
		snapshots [][]Record
	)
	unsub, err := s.Subscribe(ctx, CollectionRoundScores, func(recs []Record) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, recs)
	})
	require.NoError(t, err)
	defer unsub()

	latest := func() []Record {
		mu.Lock()
		defer mu.Unlock()
		if len(snapshots) == 0 {
			return nil
		}
		return snapshots[len(snapshots)-1]
	}

	require.Eventually(t, func() bool { return len(latest()) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Put(ctx, CollectionRoundScores, Record{Key: "2025-09-25.2", Value: []byte(`2`)}))
	require.NoError(t, s.Put(ctx, CollectionSpecialShots, Record{Key: "ignored", Value: []byte(`x`)}))
	require.Eventually(t, func() bool { return len(latest()) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Delete(ctx, CollectionRoundScores, "2025-09-25.1"))
	require.Eventually(t, func() bool {
		recs := latest()
		return len(recs) == 1 && recs[0].Key == "2025-09-25.2"
	}, time.Second, 10*time.Millisecond)
}
