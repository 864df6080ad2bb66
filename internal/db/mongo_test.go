package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

func TestMongoRoutes_NilCollection(t *testing.T) {
	c := &MongoRoutes{}
	ctx := context.Background()

	_, err := c.InsertRoute(ctx, models.Bus{Name: "test"})
	assert.Error(t, err)

	_, err = c.FindRoutes(ctx)
	assert.Error(t, err)

	_, err = c.FindRouteByID(ctx, "abc")
	assert.Error(t, err)

	assert.Error(t, c.UpdateSimulated(ctx, models.Bus{}))
	assert.Error(t, c.UpdateLiveLocation(ctx, "abc", models.Location{}, time.Now()))
	assert.Error(t, c.DeleteRoute(ctx, "abc"))
}

func TestMongoTrips_NilCollection(t *testing.T) {
	c := &MongoTrips{}
	ctx := context.Background()

	err := c.RecordArrival(ctx, "r1", "2026-08-31", 0, "8:00 AM", []models.Stop{{Name: "A"}})
	assert.Error(t, err)

	_, err = c.FindTrip(ctx, "r1", "2026-08-31")
	assert.Error(t, err)
}
