package models

// Stop represents a named, geo-located, time-scheduled waypoint on a route.
type Stop struct {
	Name              string   `bson:"name" json:"name"`
	ArrivalTime       string   `bson:"arrival_time" json:"arrivalTime"` // schedule-local "hh:mm AM/PM"
	Location          Location `bson:"location" json:"location"`
	ActualArrivalTime string   `bson:"actual_arrival_time,omitempty" json:"actualArrivalTime,omitempty"`
}
