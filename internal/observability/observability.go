// Package observability bundles the logger, metrics registry and tracer handed
// to every module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "tripscore"

// Config selects log format and level.
type Config struct {
	Environment string
	LogLevel    string
}

// Observability is passed by value into module constructors.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Tracer   trace.Tracer
}

// New builds the production bundle: JSON logs outside development, a fresh
// prometheus registry with process collectors, and the global otel tracer.
func New(cfg Config) Observability {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   NewLogger(os.Stdout, cfg),
		Registry: reg,
		Tracer:   otel.Tracer(ServiceName),
	}
}

// NewNoop returns a bundle that discards everything. Used by tests and CLI
// subcommands that do not serve metrics.
func NewNoop() Observability {
	return Observability{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

// NewLogger returns a text logger in development and a JSON logger otherwise.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.Environment == "development" || cfg.Environment == "" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With(
		slog.String("service", ServiceName),
		slog.String("environment", cfg.Environment),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
