package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"chat-relay/auth"
)

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	WS         http.Handler
	Auth       *AuthHandler
	Tokens     *auth.TokenManager
	RateBurst  int
	RateRefill time.Duration
}

// NewRouter builds the full route table: websocket entry point, health,
// and the rate-limited account API.
func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", HandleHealth).Methods(http.MethodGet)
	r.Handle("/ws", deps.WS).Methods(http.MethodGet)

	bearer := auth.Middleware(deps.Tokens, respondError)

	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(RateLimit(deps.RateBurst, deps.RateRefill))
	users.HandleFunc("/register", deps.Auth.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", deps.Auth.Login).Methods(http.MethodPost)
	users.Handle("/me", bearer(http.HandlerFunc(deps.Auth.Me))).Methods(http.MethodGet)

	return r
}
