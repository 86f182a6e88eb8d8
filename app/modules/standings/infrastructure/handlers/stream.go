package standingshandlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	standingsservice "github.com/Black-And-White-Club/tripscore/app/modules/standings/application"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
)

// EventStandingsUpdated is the SSE event name for a recomputation.
const EventStandingsUpdated = "standings.updated"

// HandleStream sends the current state, then one event per recomputation
// until the client goes away.
func (h *StandingsHandlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.JSON(w, http.StatusInternalServerError, httpx.ErrorResponse{Error: "streaming unsupported"})
		return
	}

	updates, cancel := h.service.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	res := h.service.Results()
	initial := standingsservice.Update{
		Reason:                 "snapshot",
		CompetitionsDetermined: res.CompetitionsDetermined,
		CompetitionsTotal:      res.CompetitionsTotal,
		ComputedAt:             time.Now().UTC(),
	}
	if err := writeEvent(w, EventStandingsUpdated, initial); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, EventStandingsUpdated, u); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
