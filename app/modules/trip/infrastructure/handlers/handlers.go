package triphandlers

import (
	"net/http"

	tripdomain "github.com/Black-And-White-Club/tripscore/app/modules/trip/domain"
	"github.com/Black-And-White-Club/tripscore/internal/httpx"
)

// TripHandlers serves the static itinerary.
type TripHandlers struct {
	info tripdomain.Info
}

func NewTripHandlers(info tripdomain.Info) *TripHandlers {
	return &TripHandlers{info: info}
}

func (h *TripHandlers) HandleGetTrip(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	httpx.JSON(w, http.StatusOK, h.info)
}
