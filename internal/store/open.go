package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/observability/metrics"
)

// Options selects and configures the backend.
type Options struct {
	Backend        string
	NATS           NATSOptions
	PostgresDSN    string
	LocalPath      string
	ConnectTimeout time.Duration
}

// Open connects to the configured durable backend. If it cannot be reached
// the local store is opened instead for the rest of the process lifetime;
// there is no reconnect attempt.
func Open(ctx context.Context, opts Options, logger *slog.Logger, m metrics.StoreMetrics) (Store, error) {
	if m == nil {
		m = metrics.NoOp{}
	}
	if opts.LocalPath == "" {
		opts.LocalPath = "tripscore.db"
	}

	var (
		durable Store
		err     error
	)
	switch opts.Backend {
	case BackendLocal:
		m.SetFallbackActive(false)
		return OpenLocal(ctx, opts.LocalPath, logger, m)
	case BackendNATS, "":
		nopts := opts.NATS
		if nopts.Timeout <= 0 {
			nopts.Timeout = opts.ConnectTimeout
		}
		durable, err = OpenNATS(ctx, nopts, logger, m)
	case BackendPostgres:
		durable, err = OpenPostgres(ctx, opts.PostgresDSN, opts.ConnectTimeout, logger, m)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}

	if err == nil {
		m.SetFallbackActive(false)
		return durable, nil
	}

	logger.WarnContext(ctx, "Durable store unreachable, falling back to local store",
		attr.String("backend", opts.Backend),
		attr.String("local_path", opts.LocalPath),
		attr.Error(err),
	)
	local, lerr := OpenLocal(ctx, opts.LocalPath, logger, m)
	if lerr != nil {
		return nil, fmt.Errorf("durable store failed (%v) and local fallback failed: %w", err, lerr)
	}
	m.SetFallbackActive(true)
	return local, nil
}
