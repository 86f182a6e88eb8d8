package standingshandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	standingsservice "github.com/Black-And-White-Club/tripscore/app/modules/standings/application"
	standingsqueue "github.com/Black-And-White-Club/tripscore/app/modules/standings/infrastructure/queue"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StandingsHandlers implements Handlers.
type StandingsHandlers struct {
	service   standingsservice.Service
	artifacts standingsqueue.Enqueuer
	logger    *slog.Logger
	tracer    trace.Tracer
	keepAlive time.Duration
}

// NewStandingsHandlers builds the handlers. artifacts may be nil when
// results publishing is disabled.
func NewStandingsHandlers(service standingsservice.Service, artifacts standingsqueue.Enqueuer, logger *slog.Logger, tracer trace.Tracer) *StandingsHandlers {
	return &StandingsHandlers{
		service:   service,
		artifacts: artifacts,
		logger:    logger,
		tracer:    tracer,
		keepAlive: 25 * time.Second,
	}
}

// Routes registers the standings, results, stream and admin endpoints.
// admin guards the reset endpoint.
func Routes(h Handlers, admin func(http.Handler) http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/api/standings/days/{date}", h.HandleDay)
		r.Get("/api/standings/days/{date}/{segment}", h.HandleDaySegment)
		r.Get("/api/standings/overall", h.HandleOverall)
		r.Get("/api/standings/completion", h.HandleCompletion)
		r.Get("/api/results", h.HandleResults)
		r.Get("/api/results/export.xlsx", h.HandleExport)
		r.Get("/api/results/prizes.png", h.HandlePrizeChart)
		r.Get("/api/stream", h.HandleStream)
		r.With(admin).Post("/api/admin/reset", h.HandleReset)
	}
}

func (h *StandingsHandlers) HandleDay(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Day(chi.URLParam(r, "date"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *StandingsHandlers) HandleDaySegment(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.DayLeaderboard(chi.URLParam(r, "date"), chi.URLParam(r, "segment"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lb)
}

func (h *StandingsHandlers) HandleOverall(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Overall())
}

func (h *StandingsHandlers) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Completion())
}

func (h *StandingsHandlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Results())
}

func (h *StandingsHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportWorkbook(r.Context())
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
	writeBytes(w, contentTypeXLSX, data)
}

func (h *StandingsHandlers) HandlePrizeChart(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.PrizeChartPNG(r.Context())
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeBytes(w, "image/png", data)
}

// HandleReset clears both ledgers. Standings follow through the reset event.
func (h *StandingsHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	h.logger.WarnContext(r.Context(), "Ledgers reset by admin", attr.ExtractCorrelationID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

var _ Handlers = (*StandingsHandlers)(nil)
