// Package middleware holds the HTTP middleware chain shared by all routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	id "certdedup/pkg/domain"
	"certdedup/pkg/requestcontext"
)

// RequestID assigns a request ID (honoring an inbound X-Request-ID header)
// and stores it in the context and the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime captures the current time at the start of the request so all
// operations within a single request share one "now" timestamp.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject resolves the acting subject from the X-Subject-ID header set by the
// upstream gateway after authentication. Requests without a valid subject
// pass through with a nil subject; handlers that require one reject there.
func Subject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Subject-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		subjectID, err := id.ParseSubjectID(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithSubjectID(r.Context(), subjectID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
