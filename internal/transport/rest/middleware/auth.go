package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	SessionIDKey contextKey = "sessionId"
)

// SessionResolver maps a session token to its session id
type SessionResolver interface {
	Resolve(token string) (string, error)
}

// SessionMiddleware resolves the session token on session-scoped routes
type SessionMiddleware struct {
	resolver SessionResolver
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(resolver SessionResolver) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver}
}

// RequireSession validates the token from the {token} path variable, the
// Authorization header or the token query param
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing session token"}`, http.StatusUnauthorized)
			return
		}

		sessionID, err := m.resolver.Resolve(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired session token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts session ID from context
func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(SessionIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// ExtractToken finds the session token on a request
func ExtractToken(r *http.Request) string {
	if token := mux.Vars(r)["token"]; token != "" {
		return token
	}
	if token := extractBearerToken(r); token != "" {
		return token
	}
	// WebSocket clients cannot set headers
	return r.URL.Query().Get("token")
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
