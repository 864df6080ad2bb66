package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ansdeepu/kerala-rides/internal/db"
	"github.com/ansdeepu/kerala-rides/internal/metrics"
	"github.com/ansdeepu/kerala-rides/internal/models"
)

// Update is the payload driver devices publish while broadcasting their
// position for a bus.
type Update struct {
	BusID string  `json:"busId"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Subscriber feeds externally reported GPS positions into the route store.
// Each applied update stamps the bus's updated_at, which is what keeps the
// simulation's live-override window open.
type Subscriber struct {
	routes  db.RouteCollection
	metrics *metrics.Collector
	client  mqtt.Client
	topic   string
}

func NewSubscriber(brokerURL, topic string, routes db.RouteCollection, m *metrics.Collector) *Subscriber {
	s := &Subscriber{routes: routes, metrics: m, topic: topic}
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("kerala-rides-tracker").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			if token := c.Subscribe(topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).WithField("topic", topic).Error("MQTT subscribe failed")
				return
			}
			log.WithField("topic", topic).Info("Subscribed to live GPS topic")
		})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker; the connect handler re-subscribes after
// reconnects.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

// handleMessage applies one reported position. Malformed payloads are logged
// and dropped; a broken reporter must not take the tracker down.
func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var u Update
	if err := json.Unmarshal(msg.Payload(), &u); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed live update")
		s.countError()
		return
	}
	if u.BusID == "" {
		log.WithField("topic", msg.Topic()).Warn("Dropping live update without bus id")
		s.countError()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	loc := models.Location{Lat: u.Lat, Lng: u.Lng}
	if err := s.routes.UpdateLiveLocation(ctx, u.BusID, loc, time.Now()); err != nil {
		log.WithError(err).WithField("bus_id", u.BusID).Error("Failed to apply live update")
		s.countError()
		return
	}
	if s.metrics != nil {
		s.metrics.LiveUpdates.Inc()
	}
}

func (s *Subscriber) countError() {
	if s.metrics != nil {
		s.metrics.LiveUpdateErrors.Inc()
	}
}
