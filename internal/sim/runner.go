package sim

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ansdeepu/kerala-rides/internal/metrics"
	"github.com/ansdeepu/kerala-rides/internal/models"
)

// RouteStore is the persistence surface the runner needs. UpdateSimulated
// must leave updated_at alone: that field belongs to the live GPS write
// path, and stamping it from the simulation would keep the live-override
// window open forever.
type RouteStore interface {
	FindRoutes(ctx context.Context) ([]models.Bus, error)
	UpdateSimulated(ctx context.Context, bus models.Bus) error
}

// ArrivalRecorder upserts per-day history records as the simulation reaches
// stops. Implementations must be idempotent per stop per day.
type ArrivalRecorder interface {
	RecordArrival(ctx context.Context, routeID, date string, stopIndex int, arrivalTime string, stops []models.Stop) error
}

// SnapshotPublisher pushes recomputed bus snapshots to subscribed clients.
type SnapshotPublisher interface {
	PublishBus(bus models.Bus) error
}

// Runner drives the simulation: one synchronous recomputation pass over all
// buses per tick. Ticks never overlap; stopping the context cancels
// scheduled ticks only, never an in-flight pass.
type Runner struct {
	store    RouteStore
	recorder ArrivalRecorder
	pub      SnapshotPublisher
	metrics  *metrics.Collector
	interval time.Duration
	window   time.Duration

	// Location anchors schedule times for each tick. Nil means time.Local.
	Location *time.Location

	mu       sync.RWMutex
	snapshot []models.Bus
}

func NewRunner(store RouteStore, recorder ArrivalRecorder, pub SnapshotPublisher, m *metrics.Collector, interval, window time.Duration) *Runner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if window <= 0 {
		window = DefaultLiveWindow
	}
	return &Runner{
		store:    store,
		recorder: recorder,
		pub:      pub,
		metrics:  m,
		interval: interval,
		window:   window,
	}
}

// Snapshot returns the bus list produced by the most recent tick.
func (r *Runner) Snapshot() []models.Bus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Bus, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// Run ticks until the context is cancelled. An immediate tick fires on start
// so clients do not wait a full interval for the first snapshot.
func (r *Runner) Run(ctx context.Context) {
	r.Tick(ctx, r.now())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx, r.now())
		}
	}
}

func (r *Runner) now() time.Time {
	if r.Location != nil {
		return time.Now().In(r.Location)
	}
	return time.Now()
}

// Tick loads the current route snapshot, recomputes every bus and persists,
// records and publishes the results. Failures on individual buses are logged
// and never abort the pass.
func (r *Runner) Tick(ctx context.Context, now time.Time) {
	started := time.Now()
	buses, err := r.store.FindRoutes(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load routes for tick")
		return
	}

	updated := SimulateWindow(buses, "", now, r.window)

	live := 0
	for i := range updated {
		if SelectMode(&buses[i], "", now, r.window) == ModeLive {
			// Position authority belongs to the external reporter; nothing
			// to persist from this side.
			live++
		} else {
			if err := r.store.UpdateSimulated(ctx, updated[i]); err != nil {
				log.WithError(err).WithField("bus_id", updated[i].ID.Hex()).Error("Failed to persist simulated bus")
			}
			r.recordArrivals(ctx, buses[i], updated[i], now)
		}
		if r.pub != nil {
			if err := r.pub.PublishBus(updated[i]); err != nil {
				log.WithError(err).WithField("bus_id", updated[i].ID.Hex()).Warn("Failed to publish bus snapshot")
			}
		}
	}

	r.mu.Lock()
	r.snapshot = updated
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.Ticks.Inc()
		r.metrics.SimulatedBuses.Set(float64(len(updated) - live))
		r.metrics.LiveBuses.Set(float64(live))
		r.metrics.TickDuration.Observe(time.Since(started).Seconds())
	}
}

// recordArrivals stamps history entries for every stop the pointer moved
// past during this tick. A failed history write must never block position
// computation, so errors are logged and dropped.
func (r *Runner) recordArrivals(ctx context.Context, before, after models.Bus, now time.Time) {
	if r.recorder == nil || len(after.Stops) == 0 {
		return
	}
	date := now.Format("2006-01-02")
	arrived := FormatScheduleTime(now)
	for _, idx := range crossedStops(before, after) {
		err := r.recorder.RecordArrival(ctx, after.ID.Hex(), date, idx, arrived, after.Stops)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"bus_id":     after.ID.Hex(),
				"stop_index": idx,
			}).Error("Failed to record stop arrival")
			continue
		}
		if r.metrics != nil {
			r.metrics.ArrivalsRecorded.Inc()
		}
	}
}

// crossedStops lists the stop indexes the bus reached between two
// consecutive engine outputs. Recording is idempotent downstream, so listing
// a stop twice across direction flips is harmless.
func crossedStops(before, after models.Bus) []int {
	n := len(after.Stops)
	if n == 0 {
		return nil
	}
	var crossed []int
	switch {
	case before.Direction != models.DirectionBackward && after.Direction == models.DirectionBackward:
		// Flip at the terminus: everything from the previous pointer through
		// the last stop was reached on the way out.
		for k := max(before.NextStopIndex, 0); k < n; k++ {
			crossed = append(crossed, k)
		}
	case after.Direction == models.DirectionBackward:
		for k := min(before.NextStopIndex, n-1); k > after.NextStopIndex; k-- {
			crossed = append(crossed, k)
		}
	default:
		for k := max(before.NextStopIndex, 0); k < after.NextStopIndex && k < n; k++ {
			crossed = append(crossed, k)
		}
	}
	return crossed
}
