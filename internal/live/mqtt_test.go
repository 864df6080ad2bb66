package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

type recordedUpdate struct {
	id  string
	loc models.Location
}

type fakeRoutes struct {
	updates []recordedUpdate
	err     error
}

func (f *fakeRoutes) InsertRoute(ctx context.Context, bus models.Bus) (string, error) {
	return "", nil
}
func (f *fakeRoutes) FindRoutes(ctx context.Context) ([]models.Bus, error) { return nil, nil }
func (f *fakeRoutes) FindRouteByID(ctx context.Context, id string) (*models.Bus, error) {
	return nil, nil
}
func (f *fakeRoutes) UpdateSimulated(ctx context.Context, bus models.Bus) error { return nil }
func (f *fakeRoutes) UpdateLiveLocation(ctx context.Context, id string, loc models.Location, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, recordedUpdate{id: id, loc: loc})
	return nil
}
func (f *fakeRoutes) DeleteRoute(ctx context.Context, id string) error { return nil }

type fakeMessage struct {
	payload []byte
}

func (m fakeMessage) Duplicate() bool { return false }
func (m fakeMessage) Qos() byte { return 1 }
func (m fakeMessage) Retained() bool { return false }
func (m fakeMessage) Topic() string { return "kerala-rides/live/abc" }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte { return m.payload }
func (m fakeMessage) Ack() {}

func TestHandleMessage_AppliesUpdate(t *testing.T) {
	routes := &fakeRoutes{}
	s := &Subscriber{routes: routes}

	s.handleMessage(nil, fakeMessage{payload: []byte(`{"busId":"abc","lat":9.26,"lng":76.78}`)})

	require.Len(t, routes.updates, 1)
	assert.Equal(t, "abc", routes.updates[0].id)
	assert.Equal(t, models.Location{Lat: 9.26, Lng: 76.78}, routes.updates[0].loc)
}

func TestHandleMessage_DropsMalformedPayload(t *testing.T) {
	routes := &fakeRoutes{}
	s := &Subscriber{routes: routes}

	s.handleMessage(nil, fakeMessage{payload: []byte(`{not json`)})
	s.handleMessage(nil, fakeMessage{payload: []byte(`{"lat":9.26,"lng":76.78}`)})

	assert.Empty(t, routes.updates)
}

func TestHandleMessage_StoreErrorDoesNotPanic(t *testing.T) {
	routes := &fakeRoutes{err: errors.New("route not found")}
	s := &Subscriber{routes: routes}

	s.handleMessage(nil, fakeMessage{payload: []byte(`{"busId":"missing","lat":1,"lng":2}`)})

	assert.Empty(t, routes.updates)
}
