package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"seatswap/pkg/requestcontext"
)

// JWTValidator validates bearer tokens for the admin surface.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the claims the middleware forwards into the context.
type JWTClaims struct {
	SubjectID string
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated subject in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err.Error(),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := requestcontext.WithSubjectID(r.Context(), claims.SubjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
