package models

import (
	"encoding/json"
	"testing"
)

func TestRouteStops_Forward(t *testing.T) {
	bus := Bus{
		Direction: DirectionForward,
		Stops: []Stop{
			{Name: "A"}, {Name: "B"}, {Name: "C"},
		},
	}
	stops := bus.RouteStops()
	if len(stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(stops))
	}
	if stops[0].Name != "A" || stops[2].Name != "C" {
		t.Errorf("forward traversal should preserve order, got %v", stops)
	}
}

func TestRouteStops_Backward(t *testing.T) {
	bus := Bus{
		Direction: DirectionBackward,
		Stops: []Stop{
			{Name: "A"}, {Name: "B"}, {Name: "C"},
		},
	}
	stops := bus.RouteStops()
	if stops[0].Name != "C" || stops[2].Name != "A" {
		t.Errorf("backward traversal should reverse order, got %v", stops)
	}
	if bus.Stops[0].Name != "A" {
		t.Error("reversal must not mutate the stored stop list")
	}
}

func TestBusMarshalUnmarshal(t *testing.T) {
	bus := Bus{
		Name:      "Trivandrum -> Ernakulam",
		Status:    StatusOnTime,
		Direction: DirectionForward,
		Stops: []Stop{
			{Name: "Trivandrum", ArrivalTime: "8:00 AM", Location: Location{Lat: 8.5241, Lng: 76.9366}},
		},
	}
	data, err := json.Marshal(bus)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out Bus
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Stops[0].Name != "Trivandrum" {
		t.Errorf("expected stop name to survive round trip, got %q", out.Stops[0].Name)
	}
}
