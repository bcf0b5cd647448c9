package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jub0bs/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Cowspump/some-diploma-stuff/devserver/internal/recovery"
	"github.com/Cowspump/some-diploma-stuff/devserver/internal/respond"
)

const corsMaxAgeInSeconds = 300

// NewRouter builds the HTTP routes. allowedOrigins is the browser front-end
// allow list; empty disables CORS handling.
func NewRouter(h *Handler, allowedOrigins []string) (http.Handler, error) {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)
	router.Use(instrument)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteNotFound(w, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Public
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/token", h.TokenForm).Methods("POST")
	router.HandleFunc("/auth/login", h.LoginJSON).Methods("POST")
	router.HandleFunc("/register", h.Register).Methods("POST")
	router.HandleFunc("/auth/register", h.RegisterAndLogin).Methods("POST")

	// Authenticated
	authed := router.NewRoute().Subrouter()
	authed.Use(h.requireUser)

	authed.HandleFunc("/auth/me", h.Me).Methods("GET")
	authed.HandleFunc("/auth/refresh", h.Refresh).Methods("POST")

	authed.HandleFunc("/journal", h.ListJournals).Methods("GET")
	authed.HandleFunc("/journal", h.AddJournal).Methods("POST")
	authed.HandleFunc("/journal/{id:[0-9]+}", h.DeleteJournal).Methods("DELETE")

	authed.HandleFunc("/test/questions", h.Questions).Methods("GET")
	authed.HandleFunc("/test/add-question", h.AddQuestion).Methods("POST")
	authed.HandleFunc("/test/question/{id:[0-9]+}", h.DeleteQuestion).Methods("DELETE")
	authed.HandleFunc("/test/submit", h.SubmitTest).Methods("POST")
	authed.HandleFunc("/test/results", h.TestResults).Methods("GET")

	authed.Handle("/ai/ask", RateLimit(h.aiLimiter)(http.HandlerFunc(h.Ask))).Methods("POST")

	if len(allowedOrigins) == 0 {
		return router, nil
	}
	mw, err := cors.NewMiddleware(cors.Config{
		Origins: allowedOrigins,
		Methods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		RequestHeaders: []string{
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAgeInSeconds: corsMaxAgeInSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create CORS middleware: %w", err)
	}
	return mw.Wrap(router), nil
}

// RateLimit rejects requests with 429 once limiter is exhausted. A nil
// limiter lets everything through.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				respond.WriteError(w, http.StatusTooManyRequests, "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
