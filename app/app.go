// Package app wires the modules, the event router and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tripscore/app/eventbus"
	"github.com/Black-And-White-Club/tripscore/app/modules/roster"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/app/modules/score"
	"github.com/Black-And-White-Club/tripscore/app/modules/specialshot"
	"github.com/Black-And-White-Club/tripscore/app/modules/standings"
	standingspublisher "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/publisher"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/config"
	"github.com/Black-And-White-Club/tripscore/internal/observability"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
	"github.com/Black-And-White-Club/tripscore/internal/store"
	"github.com/Black-And-White-Club/tripscore/pkg/jwt"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Modules holds the initialized modules.
type Modules struct {
	RosterModule      *roster.Module
	ScoreModule       *score.Module
	SpecialShotModule *specialshot.Module
	StandingsModule   *standings.Module
}

// App holds everything one server process owns.
type App struct {
	Config          *config.Config
	Observability   observability.Observability
	Store           store.Store
	EventBus        *eventbus.GoChannelBus
	WatermillRouter *message.Router
	HTTPRouter      chi.Router
	Modules         Modules
	JWT             jwt.Service

	wg sync.WaitGroup
}

// Options tweak NewApp for CLI subcommands and tests.
type Options struct {
	// Clock overrides the clock used by day selectors.
	Clock competition.Clock
	// DisableHTTP skips mounting routes, for one-shot CLI commands.
	DisableHTTP bool
}

// NewApp opens the store and builds every module. Nothing runs until Run.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability, opts Options) (*App, error) {
	logger := obs.Logger

	rosterCfg, err := cfg.BuildRoster()
	if err != nil {
		return nil, err
	}
	calendar, err := cfg.BuildCalendar()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	reg := registerer(obs)
	opMetrics := metrics.NewOperationMetrics(reg, "service")
	storeMetrics := metrics.NewStoreMetrics(reg)
	standingsMetrics := metrics.NewStandingsMetrics(reg)

	st, err := store.Open(ctx, cfg.StoreOptions(), logger, storeMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.InfoContext(ctx, "Store opened", attr.String("backend", st.Backend()))

	a := &App{
		Config:        cfg,
		Observability: obs,
		Store:         st,
		EventBus:      eventbus.New(logger),
	}
	if cfg.JWT.Secret != "" {
		a.JWT = jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.DefaultTTL)
	}

	a.WatermillRouter, err = message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		a.closeStore()
		return nil, fmt.Errorf("failed to create Watermill router: %w", err)
	}

	var httpRouter chi.Router
	if !opts.DisableHTTP {
		a.HTTPRouter = newHTTPRouter(cfg, obs, calendar)
		httpRouter = a.HTTPRouter
	}

	if err := a.initializeModules(ctx, rosterCfg, calendar, rules, opts, opMetrics, standingsMetrics, httpRouter); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initializeModules(
	ctx context.Context,
	rosterCfg *rosterdomain.Roster,
	calendar *competition.Calendar,
	rules competition.Rules,
	opts Options,
	opMetrics metrics.OperationMetrics,
	standingsMetrics metrics.StandingsMetrics,
	httpRouter chi.Router,
) error {
	obs := a.Observability

	rosterModule, err := roster.NewRosterModule(ctx, obs, rosterCfg, a.Store, a.EventBus, opMetrics, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize roster module: %w", err)
	}
	a.Modules.RosterModule = rosterModule

	scoreModule, err := score.NewScoreModule(ctx, obs, a.Store, a.EventBus, rosterModule.RosterService, calendar, opMetrics, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize score module: %w", err)
	}
	a.Modules.ScoreModule = scoreModule

	shotModule, err := specialshot.NewSpecialShotModule(ctx, obs, a.Store, a.EventBus, rosterModule.RosterService, calendar, opMetrics, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize special shot module: %w", err)
	}
	a.Modules.SpecialShotModule = shotModule

	artifacts, err := artifactOptions(ctx, a.Config)
	if err != nil {
		return fmt.Errorf("failed to configure results publishing: %w", err)
	}

	standingsModule, err := standings.NewStandingsModule(ctx, obs,
		standings.Sources{
			Roster:   rosterModule.RosterService,
			Calendar: calendar,
			Rules:    rules,
			Scores:   scoreModule.ScoreService,
			Shots:    shotModule.ShotService,
			Clock:    opts.Clock,
		},
		a.EventBus,
		a.WatermillRouter,
		artifacts,
		opMetrics,
		standingsMetrics,
		httpRouter,
		a.adminMiddleware(),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize standings module: %w", err)
	}
	a.Modules.StandingsModule = standingsModule
	return nil
}

// registerer avoids handing a typed nil registry to the metrics constructors.
func registerer(obs observability.Observability) prometheus.Registerer {
	if obs.Registry == nil {
		return nil
	}
	return obs.Registry
}

func (a *App) closeStore() {
	if err := a.Store.Close(); err != nil {
		a.Observability.Logger.Error("Failed to close store", attr.Error(err))
	}
}

func (a *App) adminMiddleware() func(http.Handler) http.Handler {
	return jwt.RequireRole(a.JWT, jwt.RoleAdmin, a.Observability.Logger)
}

func artifactOptions(ctx context.Context, cfg *config.Config) (standings.ArtifactOptions, error) {
	if !cfg.Artifacts.Enabled {
		return standings.ArtifactOptions{}, nil
	}
	uploader, err := standingspublisher.NewS3Uploader(ctx, standingspublisher.S3Config{
		Bucket:          cfg.Artifacts.Bucket,
		Region:          cfg.Artifacts.Region,
		Endpoint:        cfg.Artifacts.Endpoint,
		AccessKeyID:     cfg.Artifacts.AccessKeyID,
		SecretAccessKey: cfg.Artifacts.SecretAccessKey,
		UsePathStyle:    cfg.Artifacts.UsePathStyle,
	})
	if err != nil {
		return standings.ArtifactOptions{}, err
	}
	opts := standings.ArtifactOptions{Uploader: uploader, Prefix: cfg.Artifacts.Prefix}
	if cfg.Queue.Enabled {
		opts.QueueDSN = cfg.Postgres.DSN
		opts.MaxWorkers = cfg.Queue.MaxWorkers
	}
	return opts, nil
}
