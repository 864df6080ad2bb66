package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

type fakeStore struct {
	buses   []models.Bus
	saved   []models.Bus
	listErr error
	saveErr error
}

func (f *fakeStore) FindRoutes(ctx context.Context) ([]models.Bus, error) {
	return f.buses, f.listErr
}

func (f *fakeStore) UpdateSimulated(ctx context.Context, bus models.Bus) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, bus)
	return nil
}

type arrivalCall struct {
	routeID     string
	date        string
	stopIndex   int
	arrivalTime string
}

type fakeRecorder struct {
	calls []arrivalCall
	err   error
}

func (f *fakeRecorder) RecordArrival(ctx context.Context, routeID, date string, stopIndex int, arrivalTime string, stops []models.Stop) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, arrivalCall{routeID, date, stopIndex, arrivalTime})
	return nil
}

type fakePublisher struct {
	published []models.Bus
	err       error
}

func (f *fakePublisher) PublishBus(bus models.Bus) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, bus)
	return nil
}

func runnerBus() models.Bus {
	return models.Bus{
		ID:   primitive.NewObjectID(),
		Name: "Test Route",
		Stops: []models.Stop{
			{Name: "A", ArrivalTime: "8:00 AM", Location: models.Location{Lat: 0, Lng: 0}},
			{Name: "B", ArrivalTime: "8:10 AM", Location: models.Location{Lat: 10, Lng: 10}},
		},
		Direction: models.DirectionForward,
	}
}

func TestRunner_TickPersistsAndRecords(t *testing.T) {
	bus := runnerBus()
	store := &fakeStore{buses: []models.Bus{bus}}
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	r := NewRunner(store, rec, pub, nil, 5*time.Second, DefaultLiveWindow)

	now := at(8, 5)
	r.Tick(context.Background(), now)

	require.Len(t, store.saved, 1)
	assert.InDelta(t, 5, store.saved[0].CurrentLocation.Lat, 1e-9)
	assert.Equal(t, 1, store.saved[0].NextStopIndex)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, bus.ID.Hex(), rec.calls[0].routeID)
	assert.Equal(t, "2026-08-31", rec.calls[0].date)
	assert.Equal(t, 0, rec.calls[0].stopIndex)
	assert.Equal(t, "8:05 AM", rec.calls[0].arrivalTime)

	assert.Len(t, pub.published, 1)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "5 min", snap[0].ETA)
}

func TestRunner_TickSkipsPersistenceForLiveBuses(t *testing.T) {
	bus := runnerBus()
	now := at(8, 5)
	bus.UpdatedAt = now.Add(-5 * time.Second)
	store := &fakeStore{buses: []models.Bus{bus}}
	pub := &fakePublisher{}
	r := NewRunner(store, nil, pub, nil, 5*time.Second, DefaultLiveWindow)

	r.Tick(context.Background(), now)

	assert.Empty(t, store.saved, "live bus position must not be overwritten")
	assert.Len(t, pub.published, 1, "live buses are still published")
}

func TestRunner_TickSurvivesFailures(t *testing.T) {
	bus := runnerBus()
	store := &fakeStore{buses: []models.Bus{bus}, saveErr: errors.New("write failed")}
	rec := &fakeRecorder{err: errors.New("history down")}
	pub := &fakePublisher{err: errors.New("broker down")}
	r := NewRunner(store, rec, pub, nil, 5*time.Second, DefaultLiveWindow)

	r.Tick(context.Background(), at(8, 5))

	// Failures are logged, never propagated; the snapshot still advances.
	require.Len(t, r.Snapshot(), 1)
}

func TestRunner_TickListErrorKeepsLastSnapshot(t *testing.T) {
	store := &fakeStore{buses: []models.Bus{runnerBus()}}
	r := NewRunner(store, nil, nil, nil, 5*time.Second, DefaultLiveWindow)

	r.Tick(context.Background(), at(8, 5))
	require.Len(t, r.Snapshot(), 1)

	store.listErr = errors.New("mongo down")
	r.Tick(context.Background(), at(8, 6))
	assert.Len(t, r.Snapshot(), 1, "failed tick keeps the previous snapshot")
}

func TestCrossedStops(t *testing.T) {
	stops := []models.Stop{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	tests := []struct {
		name   string
		before models.Bus
		after  models.Bus
		want   []int
	}{
		{
			"forward advance",
			models.Bus{Stops: stops, Direction: models.DirectionForward, NextStopIndex: 0},
			models.Bus{Stops: stops, Direction: models.DirectionForward, NextStopIndex: 2},
			[]int{0, 1},
		},
		{
			"forward no movement",
			models.Bus{Stops: stops, Direction: models.DirectionForward, NextStopIndex: 1},
			models.Bus{Stops: stops, Direction: models.DirectionForward, NextStopIndex: 1},
			nil,
		},
		{
			"flip at terminus",
			models.Bus{Stops: stops, Direction: models.DirectionForward, NextStopIndex: 2},
			models.Bus{Stops: stops, Direction: models.DirectionBackward, NextStopIndex: 1},
			[]int{2},
		},
		{
			"backward advance",
			models.Bus{Stops: stops, Direction: models.DirectionBackward, NextStopIndex: 2},
			models.Bus{Stops: stops, Direction: models.DirectionBackward, NextStopIndex: 0},
			[]int{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, crossedStops(tt.before, tt.after))
		})
	}
}
