package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/ansdeepu/kerala-rides/internal/metrics"
	"github.com/ansdeepu/kerala-rides/internal/models"
)

// BusSnapshot is the per-tick message map clients subscribe to instead of
// polling the API.
type BusSnapshot struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Number        string          `json:"number"`
	Location      models.Location `json:"location"`
	Status        string          `json:"status"`
	ETA           string          `json:"eta"`
	NextStopIndex int             `json:"nextStopIndex"`
	NextStopName  string          `json:"nextStopName"`
	Direction     string          `json:"direction"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NATSPublisher pushes bus snapshots to subject "buses.<id>".
type NATSPublisher struct {
	nc      *nats.Conn
	metrics *metrics.Collector
}

func NewNATSPublisher(url string, m *metrics.Collector) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("kerala-rides-tracker"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishBus sends one snapshot. Errors are counted; the caller logs and
// moves on, a failed publish never fails a tick.
func (p *NATSPublisher) PublishBus(bus models.Bus) error {
	snap := BusSnapshot{
		ID:            bus.ID.Hex(),
		Name:          bus.Name,
		Number:        bus.Number,
		Location:      bus.CurrentLocation,
		Status:        bus.Status,
		ETA:           bus.ETA,
		NextStopIndex: bus.NextStopIndex,
		NextStopName:  bus.NextStopName,
		Direction:     bus.Direction,
		Timestamp:     time.Now(),
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("buses.%s", subjectToken(snap.ID))
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PublishErrors.Inc()
		} else {
			p.metrics.SnapshotsPublished.Inc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces or wildcard characters.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
