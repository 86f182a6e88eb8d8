package jwt

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Black-And-White-Club/tripscore/internal/httpx"
	"github.com/Black-And-White-Club/tripscore/internal/observability/attr"
)

type claimsKey struct{}

// ClaimsFromContext returns the claims stored by RequireRole.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// RequireRole rejects requests without a bearer token carrying role.
// A nil service rejects everything.
func RequireRole(svc Service, role Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				httpx.JSON(w, http.StatusUnauthorized, httpx.ErrorResponse{Error: "admin endpoints are disabled"})
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				httpx.JSON(w, http.StatusUnauthorized, httpx.ErrorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := svc.ValidateToken(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected token",
					attr.ExtractCorrelationID(r.Context()),
					attr.Error(err),
				)
				httpx.JSON(w, http.StatusUnauthorized, httpx.ErrorResponse{Error: err.Error()})
				return
			}
			if claims.Role != role {
				httpx.JSON(w, http.StatusForbidden, httpx.ErrorResponse{Error: ErrForbidden.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}
