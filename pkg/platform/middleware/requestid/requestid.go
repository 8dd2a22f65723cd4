// Package requestid assigns every request an identifier for log correlation.
// Incoming X-Request-ID headers are trusted so identifiers survive proxy hops.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"immersion/pkg/requestcontext"
)

// Middleware stores the request ID in the context and echoes it back in the
// response headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
