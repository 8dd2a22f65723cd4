package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"immersion/internal/apiconsumer"
)

type contextKeyConsumer struct{}

// ConsumerFromContext retrieves the authenticated API consumer, or nil for
// anonymous requests.
func ConsumerFromContext(ctx context.Context) *apiconsumer.Consumer {
	consumer, _ := ctx.Value(contextKeyConsumer{}).(*apiconsumer.Consumer)
	return consumer
}

// IdentifyConsumer resolves an optional bearer token to an API consumer and
// stores it on the request context. Requests without an Authorization header
// proceed anonymously; requests with an invalid token are rejected so a
// partner misconfiguration surfaces instead of silently degrading to
// anonymous telemetry.
func IdentifyConsumer(signingKey []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				writeUnauthorized(w, "Authorization header must use the Bearer scheme")
				return
			}

			consumer, err := apiconsumer.FromToken(token, signingKey)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected invalid consumer token", "error", err)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyConsumer{}, consumer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
