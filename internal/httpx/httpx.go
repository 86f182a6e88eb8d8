// Package httpx holds the JSON response helpers and middleware shared by the
// module HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/tripscore/app/shared"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
	"github.com/Black-And-White-Club/tripscore/internal/store"
)

// maxBodyBytes bounds request bodies; an xlsx import is the largest.
const maxBodyBytes = 8 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Retry bool   `json:"retry,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error maps err onto a status code: validation errors are 400, an
// unavailable store is 503 with retry set, anything else is 500.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if ve, ok := shared.AsValidationError(err); ok {
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
		return
	}
	if errors.Is(err, store.ErrUnavailable) {
		logger.WarnContext(r.Context(), "Store unavailable", attr.ExtractCorrelationID(r.Context()), attr.Error(err))
		JSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "score store unavailable, retry the request", Retry: true})
		return
	}
	logger.ErrorContext(r.Context(), "Request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	JSON(w, http.StatusInternalServerError, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

// Decode reads a JSON body into v. Malformed bodies become a ValidationError
// on field "body".
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return shared.NewValidationError("body", "", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

// Body returns the request body bounded to the import size limit.
func Body(r *http.Request) io.Reader {
	return io.LimitReader(r.Body, maxBodyBytes)
}
