// Package httpapi exposes the services as a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/middleware"
	"github.com/roomledger/roomledger/internal/service"
)

// API bundles the services behind the HTTP handlers.
type API struct {
	Auth    *service.AuthService
	Rooms   *service.RoomService
	Entries *service.EntryService
	Ledger  *service.LedgerService
	JWT     *auth.JWTManager
}

// Router builds the chi router with all routes and middleware attached.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)
			r.Post("/verify", a.handleVerifyEmail)
			r.Post("/forgot-password", a.handleForgotPassword)
			r.Post("/reset-password", a.handleResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(a.JWT))

			r.Post("/rooms", a.handleCreateRoom)
			r.Post("/rooms/join", a.handleJoinRoom)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoom)

				r.Get("/rooms/current", a.handleGetRoom)
				r.Post("/entries", a.handleCreateEntry)
				r.Get("/entries", a.handleListEntries)
				r.Post("/entries/{entryID}/settle", a.handleSettleEntry)
				r.Delete("/entries/{entryID}", a.handleDeleteEntry)
				r.Get("/ledger", a.handleGetLedger)
			})
		})
	})

	return r
}
