package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/tripscore/app"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/config"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// TestBucket is the KV bucket used by NATS-backed test apps.
const TestBucket = "tripscore_it"

// AppConfig returns the default trip configuration pointed at the containers
// for backend.
func (env *TestEnvironment) AppConfig(backend string, players []rosterdomain.Player) *config.Config {
	cfg := config.Default()
	cfg.Roster = players
	cfg.Store.Backend = backend
	cfg.Store.ConnectTimeout = 10 * time.Second
	cfg.Postgres.DSN = env.PostgresDSN
	cfg.NATS.URL = env.NatsURL
	cfg.NATS.Bucket = TestBucket
	return cfg
}

// StartApp builds and runs an app without HTTP. The app is stopped when the
// test ends.
func (env *TestEnvironment) StartApp(t *testing.T, cfg *config.Config, clock competition.Clock) *app.App {
	t.Helper()
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(env.Ctx)
	obs := observability.NewNoop()
	obs.Logger = DiscardLogger()

	a, err := app.NewApp(ctx, cfg, obs, app.Options{Clock: clock, DisableHTTP: true})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case <-a.WatermillRouter.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("watermill router did not start")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Logf("app run returned: %v", err)
			}
		case <-time.After(15 * time.Second):
			t.Log("app did not stop in time")
		}
		_ = a.Close()
	})
	return a
}

// Backends lists the durable store backends exercised by integration tests.
var Backends = []string{store.BackendPostgres, store.BackendNATS}
