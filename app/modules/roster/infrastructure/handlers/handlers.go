package rosterhandlers

import (
	"log/slog"
	"net/http"

	rosterservice "github.com/Black-And-White-Club/tripscore/app/modules/roster/application"
	rosterdomain "github.com/Black-And-White-Club/tripscore/app/modules/roster/domain"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// RosterHandlers implements Handlers.
type RosterHandlers struct {
	service rosterservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewRosterHandlers(service rosterservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &RosterHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes mounts the roster endpoints on r.
func Routes(h Handlers) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.HandleListPlayers)
		r.Get("/{playerID}", h.HandleGetPlayer)
		r.Put("/{playerID}/handicap", h.HandleUpdateHandicap)
	}
}

type playersResponse struct {
	Players []rosterdomain.Player `json:"players"`
}

type updateHandicapRequest struct {
	Handicap *float64 `json:"handicap"`
}

func (h *RosterHandlers) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, playersResponse{Players: h.service.Players()})
}

func (h *RosterHandlers) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Player(chi.URLParam(r, "playerID"))
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *RosterHandlers) HandleUpdateHandicap(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleUpdateHandicap")
	defer span.End()

	var req updateHandicapRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	if req.Handicap == nil {
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "handicap is required", Field: "handicap"})
		return
	}

	p, err := h.service.UpdateHandicap(ctx, chi.URLParam(r, "playerID"), *req.Handicap)
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
