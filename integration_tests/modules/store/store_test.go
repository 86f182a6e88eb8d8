package store_integration_tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/tripscore/integration_tests/testutils"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

func openStore(t *testing.T, env *testutils.TestEnvironment, backend string) store.Store {
	t.Helper()
	opts := env.AppConfig(backend, testutils.NewTestDataGenerator(1).GeneratePlayers(2)).StoreOptions()
	s, err := store.Open(env.Ctx, opts, testutils.DiscardLogger(), nil)
	require.NoError(t, err)
	require.Equal(t, backend, s.Backend(), "store fell back instead of using %s", backend)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreKeyedWrites(t *testing.T) {
	env := requireEnv(t)

	for _, backend := range testutils.Backends {
		t.Run(backend, func(t *testing.T) {
			env.Reset(t, testutils.TestBucket)
			ctx := context.Background()
			s := openStore(t, env, backend)

			require.NoError(t, s.Put(ctx, store.CollectionRoundScores, store.Record{Key: "2025-09-25.2", Value: []byte(`{"v":1}`)}))
			require.NoError(t, s.Put(ctx, store.CollectionRoundScores, store.Record{Key: "2025-09-25.1", Value: []byte(`{"v":2}`)}))
			require.NoError(t, s.Put(ctx, store.CollectionRoundScores, store.Record{Key: "2025-09-25.2", Value: []byte(`{"v":3}`)}))
			require.NoError(t, s.Put(ctx, store.CollectionSpecialShots, store.Record{Key: "2025-09-25.longestDrive", Value: []byte(`{}`)}))

			recs, err := s.Get(ctx, store.CollectionRoundScores)
			require.NoError(t, err)
			assert.Equal(t, []store.Record{
				{Key: "2025-09-25.1", Value: []byte(`{"v":2}`)},
				{Key: "2025-09-25.2", Value: []byte(`{"v":3}`)},
			}, recs)

			require.NoError(t, s.Delete(ctx, store.CollectionRoundScores, "2025-09-25.1"))
			require.NoError(t, s.Delete(ctx, store.CollectionRoundScores, "missing"))
			recs, err = s.Get(ctx, store.CollectionRoundScores)
			require.NoError(t, err)
			assert.Len(t, recs, 1)

			require.NoError(t, s.Set(ctx, store.CollectionRoundScores, nil))
			recs, err = s.Get(ctx, store.CollectionRoundScores)
			require.NoError(t, err)
			assert.Empty(t, recs)

			shots, err := s.Get(ctx, store.CollectionSpecialShots)
			require.NoError(t, err)
			assert.Len(t, shots, 1, "Set leaves other collections alone")
		})
	}
}

func TestStoreInitializeIfEmpty(t *testing.T) {
	env := requireEnv(t)

	for _, backend := range testutils.Backends {
		t.Run(backend, func(t *testing.T) {
			env.Reset(t, testutils.TestBucket)
			ctx := context.Background()
			s := openStore(t, env, backend)

			seed := []store.Record{{Key: "1", Value: []byte(`{"id":"1"}`)}}
			wrote, err := s.InitializeIfEmpty(ctx, store.CollectionPlayers, seed)
			require.NoError(t, err)
			assert.True(t, wrote)

			wrote, err = s.InitializeIfEmpty(ctx, store.CollectionPlayers, []store.Record{{Key: "2", Value: []byte(`{}`)}})
			require.NoError(t, err)
			assert.False(t, wrote)

			recs, err := s.Get(ctx, store.CollectionPlayers)
			require.NoError(t, err)
			assert.Equal(t, seed, recs)
		})
	}
}

// A write through one connection reaches subscribers on another.
func TestStoreSubscribePushesRemoteWrites(t *testing.T) {
	env := requireEnv(t)

	for _, backend := range testutils.Backends {
		t.Run(backend, func(t *testing.T) {
			env.Reset(t, testutils.TestBucket)
			ctx := context.Background()
			reader := openStore(t, env, backend)
			writer := openStore(t, env, backend)

			var (
				mu   sync.Mutex
				seen [][]store.Record
			)
			unsub, err := reader.Subscribe(ctx, store.CollectionRoundScores, func(recs []store.Record) {
				mu.Lock()
				defer mu.Unlock()
				seen = append(seen, recs)
			})
			require.NoError(t, err)
			defer unsub()

			require.NoError(t, writer.Put(ctx, store.CollectionRoundScores, store.Record{Key: "2025-09-26.4", Value: []byte(`{"v":7}`)}))

			want := []store.Record{{Key: "2025-09-26.4", Value: []byte(`{"v":7}`)}}
			require.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(seen) > 0 && assert.ObjectsAreEqual(want, seen[len(seen)-1])
			}, 10*time.Second, 50*time.Millisecond)

			unsub()
			unsub()
		})
	}
}
