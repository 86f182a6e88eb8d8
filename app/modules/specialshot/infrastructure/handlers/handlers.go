package shothandlers

import (
	"log/slog"
	"net/http"

	shotservice "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/application"
	shotdomain "github.com/Black-And-White-Club/tripscore/app/modules/specialshot/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared/competition"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ShotHandlers implements Handlers.
type ShotHandlers struct {
	service shotservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewShotHandlers(service shotservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ShotHandlers{service: service, logger: logger, tracer: tracer}
}

func Routes(h Handlers) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.HandleListShots)
		r.Put("/{date}/{type}", h.HandleDeclare)
		r.Delete("/{date}/{type}", h.HandleClear)
	}
}

type shotsResponse struct {
	Shots []shotdomain.SpecialShot `json:"special_shots"`
}

type declareRequest struct {
	PlayerID string  `json:"player_id"`
	Hole     int     `json:"hole"`
	Distance float64 `json:"distance"`
}

func (h *ShotHandlers) HandleListShots(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, shotsResponse{Shots: h.service.All()})
}

func (h *ShotHandlers) HandleDeclare(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleDeclare")
	defer span.End()

	var req declareRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	shot, err := h.service.Declare(ctx, shotdomain.SpecialShot{
		PlayerID: req.PlayerID,
		Date:     chi.URLParam(r, "date"),
		Type:     competition.Kind(chi.URLParam(r, "type")),
		Hole:     req.Hole,
		Distance: req.Distance,
	})
	if err != nil {
		span.RecordError(err)
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shot)
}

func (h *ShotHandlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleClear")
	defer span.End()

	err := h.service.Clear(ctx, chi.URLParam(r, "date"), competition.Kind(chi.URLParam(r, "type")))
	if err != nil {
		span.RecordError(err)
		httpx.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
