package standingshandlers

import (
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handlers serves the standings over HTTP and reacts to ledger events.
type Handlers interface {
	HandleDay(w http.ResponseWriter, r *http.Request)
	HandleDaySegment(w http.ResponseWriter, r *http.Request)
	HandleOverall(w http.ResponseWriter, r *http.Request)
	HandleCompletion(w http.ResponseWriter, r *http.Request)
	HandleResults(w http.ResponseWriter, r *http.Request)
	HandleExport(w http.ResponseWriter, r *http.Request)
	HandlePrizeChart(w http.ResponseWriter, r *http.Request)
	HandleStream(w http.ResponseWriter, r *http.Request)
	HandleReset(w http.ResponseWriter, r *http.Request)

	HandleLedgerChanged(msg *message.Message) ([]*message.Message, error)
	HandleStandingsUpdated(msg *message.Message) ([]*message.Message, error)
}
