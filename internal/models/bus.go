package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bus statuses. While a bus is running the status is always one of
// On Time, Delayed or Early; outside its schedule window it is pinned
// to Not Started or Finished.
const (
	StatusOnTime     = "On Time"
	StatusDelayed    = "Delayed"
	StatusEarly      = "Early"
	StatusNotStarted = "Not Started"
	StatusFinished   = "Finished"
)

// Traversal directions for a round trip.
const (
	DirectionForward  = "forward"
	DirectionBackward = "backward"
)

// Bus represents a tracked bus and the route it serves. Route and bus are
// the same record in this system: the stop list is the schedule, the rest
// is live-tracking state recomputed every tick.
type Bus struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Number          string             `bson:"number" json:"number"`
	Stops           []Stop             `bson:"stops" json:"stops"`
	CurrentLocation Location           `bson:"current_location" json:"currentLocation"`
	Status          string             `bson:"status" json:"status"`
	ETA             string             `bson:"eta" json:"eta"`
	NextStopIndex   int                `bson:"next_stop_index" json:"nextStopIndex"`
	NextStopName    string             `bson:"next_stop_name" json:"nextStopName"`
	Direction       string             `bson:"direction" json:"direction"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

// RouteStops returns the stops in traversal order for the bus's current
// direction. The backward leg visits the same stops in reverse.
func (b *Bus) RouteStops() []Stop {
	if b.Direction != DirectionBackward {
		return b.Stops
	}
	reversed := make([]Stop, len(b.Stops))
	for i, s := range b.Stops {
		reversed[len(b.Stops)-1-i] = s
	}
	return reversed
}
