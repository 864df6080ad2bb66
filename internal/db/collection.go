package db

import (
	"context"
	"time"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

// RouteCollection defines the interface for route/bus data operations.
type RouteCollection interface {
	InsertRoute(ctx context.Context, bus models.Bus) (string, error)
	FindRoutes(ctx context.Context) ([]models.Bus, error)
	FindRouteByID(ctx context.Context, id string) (*models.Bus, error)
	UpdateSimulated(ctx context.Context, bus models.Bus) error
	UpdateLiveLocation(ctx context.Context, id string, loc models.Location, at time.Time) error
	DeleteRoute(ctx context.Context, id string) error
}

// TripCollection defines the interface for per-day history operations.
type TripCollection interface {
	RecordArrival(ctx context.Context, routeID, date string, stopIndex int, arrivalTime string, stops []models.Stop) error
	FindTrip(ctx context.Context, routeID, date string) (*models.Trip, error)
}
