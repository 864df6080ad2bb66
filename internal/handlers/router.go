package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// PingFunc checks backing-store connectivity for the health endpoint.
type PingFunc func(ctx context.Context) error

// NewRouter assembles the HTTP API.
func NewRouter(h *RouteHandler, ping PingFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if ping != nil {
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
					"status":    "error",
					"database":  "disconnected",
					"timestamp": time.Now().UTC(),
					"error":     err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"database":  "connected",
			"timestamp": time.Now().UTC(),
		})
	})

	r.Route("/api/routes", func(r chi.Router) {
		r.Get("/", h.ListRoutes)
		r.Post("/", h.CreateRoute)
		r.Get("/{id}", h.GetRoute)
		r.Delete("/{id}", h.DeleteRoute)
		r.Post("/{id}/location", h.PostLocation)
		r.Get("/{id}/history/{date}", h.GetHistory)
	})

	return r
}
