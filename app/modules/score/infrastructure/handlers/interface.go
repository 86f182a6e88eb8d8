package scorehandlers

import "net/http"

// Handlers serves the round score ledger over HTTP.
type Handlers interface {
	HandleListScores(w http.ResponseWriter, r *http.Request)
	HandleGetScore(w http.ResponseWriter, r *http.Request)
	HandleSaveScore(w http.ResponseWriter, r *http.Request)
	HandleImport(w http.ResponseWriter, r *http.Request)
}
