package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"golang.org/x/sync/errgroup"
)

// Run starts the event router, the module goroutines and, when routes are
// mounted, the HTTP server. It returns after ctx is cancelled and everything
// has shut down.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.WatermillRouter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watermill router stopped: %w", err)
		}
		return nil
	})
	select {
	case <-a.WatermillRouter.Running():
	case <-ctx.Done():
	}

	a.wg.Add(2)
	go a.Modules.ScoreModule.Run(ctx, &a.wg)
	go a.Modules.StandingsModule.Run(ctx, &a.wg)

	if a.HTTPRouter != nil {
		srv := &http.Server{Addr: a.Config.HTTP.Address, Handler: a.HTTPRouter}
		g.Go(func() error {
			logger.Info("HTTP server listening", attr.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownGrace)
			defer cancel()
			logger.Info("Shutting down HTTP server")
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	a.wg.Wait()
	return err
}

// Close stops the modules, the router, the bus and the store, in that order.
func (a *App) Close() error {
	logger := a.Observability.Logger
	var errs []error

	if m := a.Modules.StandingsModule; m != nil {
		errs = append(errs, m.Close())
	}
	if m := a.Modules.SpecialShotModule; m != nil {
		errs = append(errs, m.Close())
	}
	if m := a.Modules.ScoreModule; m != nil {
		errs = append(errs, m.Close())
	}
	if m := a.Modules.RosterModule; m != nil {
		errs = append(errs, m.Close())
	}
	if a.WatermillRouter != nil {
		errs = append(errs, a.WatermillRouter.Close())
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
	} else {
		logger.Info("Application shut down gracefully")
	}
	return err
}
