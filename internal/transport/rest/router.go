package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"syntexapply/internal/metrics"
	"syntexapply/internal/service"
	"syntexapply/internal/transport/rest/handler"
	"syntexapply/internal/transport/rest/middleware"
	"syntexapply/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	ApplicationService *service.ApplicationService
	SubmissionService  *service.SubmissionService
	RateLimiter        *middleware.RateLimiter
	WSHub              *ws.Hub
	AllowedOrigins     string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	questionnaireHandler := handler.NewQuestionnaireHandler(c.ApplicationService)
	sessionHandler := handler.NewSessionHandler(c.ApplicationService)
	applyHandler := handler.NewApplyHandler(c.SubmissionService)
	wsHandler := ws.NewHandler(c.WSHub, c.ApplicationService)

	// Initialize middleware
	sessionMW := middleware.NewSessionMiddleware(c.ApplicationService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(metrics.InstrumentHandler)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/questionnaire", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")

	apply := http.Handler(http.HandlerFunc(applyHandler.Apply))
	if c.RateLimiter != nil {
		apply = c.RateLimiter.Handler(apply)
	}
	v1.Handle("/apply", apply).Methods("POST", "OPTIONS")

	// WebSocket route (token in path)
	v1.HandleFunc("/ws/sessions/{token}", wsHandler.SessionWS).Methods("GET")

	// Session routes (require a valid session token)
	sessionRoutes := v1.PathPrefix("/sessions/{token}").Subrouter()
	sessionRoutes.Use(sessionMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/answers/{key}", sessionHandler.SetAnswer).Methods("PUT", "OPTIONS")
	sessionRoutes.HandleFunc("/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/restart", sessionHandler.Restart).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := matchOrigin(origins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
