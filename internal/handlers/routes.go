package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ansdeepu/kerala-rides/internal/db"
	"github.com/ansdeepu/kerala-rides/internal/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SnapshotSource exposes the bus list produced by the most recent
// simulation tick.
type SnapshotSource interface {
	Snapshot() []models.Bus
}

// RouteHandler serves route/bus state and the thin CRUD endpoints that feed
// the engine.
type RouteHandler struct {
	routes    db.RouteCollection
	trips     db.TripCollection
	snapshots SnapshotSource
}

func NewRouteHandler(routes db.RouteCollection, trips db.TripCollection, snapshots SnapshotSource) *RouteHandler {
	return &RouteHandler{routes: routes, trips: trips, snapshots: snapshots}
}

// ListRoutes returns the latest tick's snapshot when one exists, falling
// back to the stored records before the first tick completes.
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	if h.snapshots != nil {
		if buses := h.snapshots.Snapshot(); len(buses) > 0 {
			writeJSON(w, http.StatusOK, buses)
			return
		}
	}
	buses, err := h.routes.FindRoutes(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list routes")
		http.Error(w, "Failed to list routes", http.StatusInternalServerError)
		return
	}
	if buses == nil {
		buses = []models.Bus{}
	}
	writeJSON(w, http.StatusOK, buses)
}

// GetRoute returns one bus, preferring the in-memory snapshot.
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.snapshots != nil {
		for _, bus := range h.snapshots.Snapshot() {
			if bus.ID.Hex() == id {
				writeJSON(w, http.StatusOK, bus)
				return
			}
		}
	}
	bus, err := h.routes.FindRouteByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, bus)
}

// CreateRoute inserts a route record. The stop list is the schedule; the
// engine fills every tracking field on the next tick.
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var bus models.Bus
	if err := json.NewDecoder(r.Body).Decode(&bus); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if bus.Name == "" {
		http.Error(w, "Route name is required", http.StatusBadRequest)
		return
	}
	id, err := h.routes.InsertRoute(r.Context(), bus)
	if err != nil {
		log.WithError(err).Error("Failed to create route")
		http.Error(w, "Failed to create route", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteRoute removes a route record.
func (h *RouteHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	if err := h.routes.DeleteRoute(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostLocation is the HTTP alternative to the MQTT topic for live GPS
// pushes from a driving device.
func (h *RouteHandler) PostLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var loc models.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.routes.UpdateLiveLocation(r.Context(), id, loc, time.Now()); err != nil {
		log.WithError(err).WithField("bus_id", id).Error("Failed to apply live location")
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory returns the per-day trip record for a route.
func (h *RouteHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	date := chi.URLParam(r, "date")
	if !datePattern.MatchString(date) {
		http.Error(w, "Date must be yyyy-MM-dd", http.StatusBadRequest)
		return
	}
	trip, err := h.trips.FindTrip(r.Context(), id, date)
	if err != nil {
		log.WithError(err).Error("Failed to load trip history")
		http.Error(w, "Failed to load trip history", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "No history for this date", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
