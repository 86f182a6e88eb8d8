package shothandlers

import "net/http"

// Handlers serves the special-shot ledger over HTTP.
type Handlers interface {
	HandleListShots(w http.ResponseWriter, r *http.Request)
	HandleDeclare(w http.ResponseWriter, r *http.Request)
	HandleClear(w http.ResponseWriter, r *http.Request)
}
