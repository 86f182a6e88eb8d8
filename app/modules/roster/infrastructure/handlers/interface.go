package rosterhandlers

import "net/http"

// Handlers serves the roster over HTTP.
type Handlers interface {
	HandleListPlayers(w http.ResponseWriter, r *http.Request)
	HandleGetPlayer(w http.ResponseWriter, r *http.Request)
	HandleUpdateHandicap(w http.ResponseWriter, r *http.Request)
}
