package scorehandlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	scoreservice "github.com/Black-And-White-Club/tripscore/app/modules/score/application"
	scoredomain "github.com/Black-And-White-Club/tripscore/app/modules/score/domain"
	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// ScoreHandlers implements Handlers.
type ScoreHandlers struct {
	service scoreservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewScoreHandlers(service scoreservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ScoreHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes mounts the score endpoints on r.
func Routes(h Handlers) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.HandleListScores)
		r.Post("/import", h.HandleImport)
		r.Get("/{date}/{playerID}", h.HandleGetScore)
		r.Put("/{date}/{playerID}", h.HandleSaveScore)
	}
}

type scoresResponse struct {
	Scores []scoredomain.RoundScore `json:"scores"`
}

// saveScoreRequest carries either nine-hole points or an 18-hole breakdown.
// A RoundScore as returned by GET is accepted too: totals and per-hole points
// are recomputed, and player_id/date must match the path when present.
type saveScoreRequest struct {
	FrontNinePoints *int          `json:"front_nine_points"`
	BackNinePoints  *int          `json:"back_nine_points"`
	Holes           []holeRequest `json:"holes"`

	PlayerID     string     `json:"player_id"`
	Date         string     `json:"date"`
	TotalPoints  *int       `json:"total_points"`
	TotalStrokes *int       `json:"total_strokes"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type holeRequest struct {
	scoredomain.HoleInput
	StablefordPoints *int `json:"stableford_points"`
}

func (req saveScoreRequest) holes() []scoredomain.HoleInput {
	out := make([]scoredomain.HoleInput, len(req.Holes))
	for i, h := range req.Holes {
		out[i] = h.HoleInput
	}
	return out
}

// HandleListScores filters by ?date= or ?player=; with neither it returns
// every record.
func (h *ScoreHandlers) HandleListScores(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	player := r.URL.Query().Get("player")

	var (
		recs []scoredomain.RoundScore
		err  error
	)
	switch {
	case date != "" && player != "":
		recs = []scoredomain.RoundScore{}
		if rec, ok := h.service.Get(date, player); ok {
			recs = append(recs, rec)
		}
	case date != "":
		recs, err = h.service.ByDay(date)
	case player != "":
		recs, err = h.service.ByPlayer(player)
	default:
		recs = h.service.All()
	}
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, scoresResponse{Scores: recs})
}

func (h *ScoreHandlers) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.service.Get(chi.URLParam(r, "date"), chi.URLParam(r, "playerID"))
	if !ok {
		httpx.JSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "no score recorded"})
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *ScoreHandlers) HandleSaveScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleSaveScore")
	defer span.End()

	date := chi.URLParam(r, "date")
	playerID := chi.URLParam(r, "playerID")

	var req saveScoreRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	if req.PlayerID != "" && req.PlayerID != playerID {
		httpx.Error(w, r, h.logger, shared.NewValidationError("player_id", req.PlayerID, "does not match the path"))
		return
	}
	if req.Date != "" && req.Date != date {
		httpx.Error(w, r, h.logger, shared.NewValidationError("date", req.Date, "does not match the path"))
		return
	}

	var (
		rec scoredomain.RoundScore
		err error
	)
	switch {
	case len(req.Holes) > 0:
		rec, err = h.service.ScoreHoles(ctx, playerID, date, req.holes())
	case req.FrontNinePoints != nil || req.BackNinePoints != nil:
		rec, err = h.service.Upsert(ctx, scoredomain.RoundScore{
			PlayerID:        playerID,
			Date:            date,
			FrontNinePoints: deref(req.FrontNinePoints),
			BackNinePoints:  deref(req.BackNinePoints),
		})
	default:
		err = shared.NewValidationError("body", "", "either points or holes are required")
	}
	if err != nil {
		span.RecordError(err)
		httpx.Error(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// HandleImport accepts a multipart upload in field "file", or the raw sheet
// as the body with ?filename=. ?date= is the default date for sheets without
// a date column.
func (h *ScoreHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleImport")
	defer span.End()

	req := scoreservice.ImportRequest{
		Filename:    r.URL.Query().Get("filename"),
		DefaultDate: r.URL.Query().Get("date"),
	}

	var err error
	if file, header, ferr := r.FormFile("file"); ferr == nil {
		defer file.Close()
		req.Filename = header.Filename
		req.Data, err = io.ReadAll(io.LimitReader(file, maxImportBytes))
	} else if errors.Is(ferr, http.ErrNotMultipart) {
		req.Data, err = io.ReadAll(httpx.Body(r))
	} else {
		err = shared.NewValidationError("file", "", ferr.Error())
	}
	if err != nil {
		httpx.Error(w, r, h.logger, err)
		return
	}

	report, err := h.service.Import(ctx, req)
	if errors.Is(err, scoreservice.ErrEmptySheet) {
		err = shared.NewValidationError("file", req.Filename, err.Error())
	}
	if err != nil {
		span.RecordError(err)
		httpx.Error(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "Import request handled",
		attr.ExtractCorrelationID(ctx),
		attr.Int("saved", len(report.Saved)),
		attr.Int("rejected", len(report.Errors)),
	)
	httpx.JSON(w, http.StatusOK, report)
}

const maxImportBytes = 8 << 20

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
