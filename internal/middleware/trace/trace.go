// Package trace assigns every request an id the rest of the stack can
// correlate log lines by. Inbound X-Request-ID headers are honored so
// ids survive proxy hops; everything else gets a fresh UUID.
package trace

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"smsledger/internal/log"
)

// ContextKey type for context keys
type ContextKey string

// RequestIDKey is the context key for the request id
const RequestIDKey ContextKey = "request_id"

// Middleware handles request id assignment and the request start line.
type Middleware struct {
	extractIP func(*http.Request) string
}

// NewMiddleware creates a trace middleware. extractIP resolves the real
// client address behind trusted proxies; nil skips client IP logging.
func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP}
}

// Middleware returns HTTP middleware that stores the request id in the
// context and echoes it in the X-Request-ID response header. Completion
// logging belongs to the access log wrapped inside this one.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = GenerateRequestID()
		}

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		log.FromContext(ctx).WithComponent(log.ComponentHTTP).DebugContext(ctx, "request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		next.ServeHTTP(w, r)
	})
}

// GenerateRequestID creates a unique request id for tracing.
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
