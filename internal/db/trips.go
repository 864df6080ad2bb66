package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

// MongoTrips implements TripCollection for MongoDB.
type MongoTrips struct {
	Collection *mongo.Collection
}

// RecordArrival stamps a stop's actual arrival time on the route's history
// record for the given date, creating the record on the first arrival of the
// day. The stamp is a conditional update that matches only while the field
// is still unset, so replays and concurrent writers cannot overwrite an
// earlier arrival.
func (c *MongoTrips) RecordArrival(ctx context.Context, routeID, date string, stopIndex int, arrivalTime string, stops []models.Stop) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if stopIndex < 0 || stopIndex >= len(stops) {
		return fmt.Errorf("stop index %d out of range for %d stops", stopIndex, len(stops))
	}

	key := bson.M{"route_id": routeID, "date": date}
	frozen := make([]models.Stop, len(stops))
	copy(frozen, stops)
	for i := range frozen {
		frozen[i].ActualArrivalTime = ""
	}
	now := time.Now()
	_, err := c.Collection.UpdateOne(ctx, key, bson.M{
		"$setOnInsert": bson.M{
			"route_id":   routeID,
			"date":       date,
			"stops":      frozen,
			"created_at": now,
		},
	}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert trip: %w", err)
	}

	field := fmt.Sprintf("stops.%d.actual_arrival_time", stopIndex)
	filter := bson.M{"route_id": routeID, "date": date, field: nil} // nil matches unset
	_, err = c.Collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		field:        arrivalTime,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("record arrival: %w", err)
	}
	return nil
}

// FindTrip returns a route's history record for a date, or nil when none
// exists yet.
func (c *MongoTrips) FindTrip(ctx context.Context, routeID, date string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var trip models.Trip
	err := c.Collection.FindOne(ctx, bson.M{"route_id": routeID, "date": date}).Decode(&trip)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}
