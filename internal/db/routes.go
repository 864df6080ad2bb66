package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

// MongoRoutes implements RouteCollection for MongoDB.
type MongoRoutes struct {
	Collection *mongo.Collection
}

// InsertRoute inserts a new route record and returns its hex id.
func (c *MongoRoutes) InsertRoute(ctx context.Context, bus models.Bus) (string, error) {
	if c.Collection == nil {
		return "", fmt.Errorf("mongo collection is nil")
	}
	bus.CreatedAt = time.Now()
	if bus.Direction == "" {
		bus.Direction = models.DirectionForward
	}
	res, err := c.Collection.InsertOne(ctx, bus)
	if err != nil {
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// FindRoutes returns all route records.
func (c *MongoRoutes) FindRoutes(ctx context.Context) ([]models.Bus, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var buses []models.Bus
	if err := cursor.All(ctx, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}

// FindRouteByID finds a route by its ID.
func (c *MongoRoutes) FindRouteByID(ctx context.Context, id string) (*models.Bus, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid route ID: %w", err)
	}
	var bus models.Bus
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&bus)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("route not found")
		}
		return nil, err
	}
	return &bus, nil
}

// UpdateSimulated writes the engine's recomputed fields for one bus. It
// deliberately leaves updated_at untouched: that timestamp is the live GPS
// reporter's heartbeat, and refreshing it here would make the bus look
// live-driven on the next tick.
func (c *MongoRoutes) UpdateSimulated(ctx context.Context, bus models.Bus) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.UpdateOne(ctx, bson.M{"_id": bus.ID}, bson.M{"$set": bson.M{
		"current_location": bus.CurrentLocation,
		"status":           bus.Status,
		"eta":              bus.ETA,
		"next_stop_index":  bus.NextStopIndex,
		"next_stop_name":   bus.NextStopName,
		"direction":        bus.Direction,
	}})
	return err
}

// UpdateLiveLocation applies an externally reported GPS position, stamping
// updated_at so the simulation defers to the reporter while updates stay
// fresh.
func (c *MongoRoutes) UpdateLiveLocation(ctx context.Context, id string, loc models.Location, at time.Time) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid route ID: %w", err)
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"current_location": loc,
		"updated_at":       at,
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("route not found")
	}
	return nil
}

// DeleteRoute deletes a route by its ID.
func (c *MongoRoutes) DeleteRoute(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid route ID: %w", err)
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("route not found")
	}
	return nil
}
