package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip is a frozen per-calendar-day copy of a route's stops, annotated with
// actual arrival times as the bus reaches each one. Created lazily on the
// first arrival of the day and appended to afterwards, never rewritten.
type Trip struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RouteID   string             `bson:"route_id" json:"routeId"`
	Date      string             `bson:"date" json:"date"` // "yyyy-MM-dd"
	Stops     []Stop             `bson:"stops" json:"stops"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
