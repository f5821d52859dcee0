package middleware

import (
	"net/http"

	"github.com/tobilg/otlp-langfuse-bridge/internal/api"
)

// PayloadLimitMiddleware limits the size of incoming request bodies. The
// onReject callback runs for every request turned away here, so rejected
// requests still show up in the ingress counters.
func PayloadLimitMiddleware(maxBytes int64, onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check Content-Length header first (may be absent)
			if r.ContentLength > maxBytes {
				if onReject != nil {
					onReject()
				}
				api.WriteErrorFromError(w, api.NewPayloadTooLargeError(maxBytes, r.ContentLength))
				return
			}

			// Wrap the body with a limited reader; chunked bodies that
			// exceed the limit surface as a MaxBytesError on read
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
