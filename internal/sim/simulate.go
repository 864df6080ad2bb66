package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

// DefaultLiveWindow is how recently a bus record must have been written by an
// external GPS reporter for the engine to treat the bus as live-driven even
// when this process does not hold the driving handle.
const DefaultLiveWindow = 15 * time.Second

// Mode says which source of truth governs a bus's position for a tick.
// Exactly one mode applies per bus per tick.
type Mode int

const (
	ModeSimulated Mode = iota
	ModeLive
)

// ETA sentinels for the states where no minute countdown applies.
const (
	etaNotStarted = "Route has not started"
	etaFinished   = "Route has finished"
	etaIncomplete = "Schedule data incomplete"
	etaAtStop     = "At Stop"
	etaLive       = "1 min"
)

// stopTime pairs a stop with its parsed schedule instant, in traversal order.
type stopTime struct {
	stop models.Stop
	at   time.Time
}

// SelectMode decides whether a bus is under live or simulated control.
// Live wins when the caller holds the driving handle for the bus, or when an
// external reporter wrote a position within the freshness window.
func SelectMode(bus *models.Bus, drivingBusID string, now time.Time, window time.Duration) Mode {
	if !bus.ID.IsZero() && bus.ID.Hex() == drivingBusID {
		return ModeLive
	}
	if !bus.UpdatedAt.IsZero() {
		if age := now.Sub(bus.UpdatedAt); age >= 0 && age < window {
			return ModeLive
		}
	}
	return ModeSimulated
}

// Simulate recomputes position, status, ETA and next-stop pointer for every
// bus at the given instant, using the default live-override window. The
// result is a new slice of the same length and order; inputs are not
// mutated. No input shape makes it panic: degenerate schedules degrade to
// fixed fallback states.
func Simulate(buses []models.Bus, drivingBusID string, now time.Time) []models.Bus {
	return SimulateWindow(buses, drivingBusID, now, DefaultLiveWindow)
}

// SimulateWindow is Simulate with an explicit live-override freshness window.
func SimulateWindow(buses []models.Bus, drivingBusID string, now time.Time, window time.Duration) []models.Bus {
	out := make([]models.Bus, len(buses))
	for i := range buses {
		out[i] = simulateBus(buses[i], drivingBusID, now, window)
	}
	return out
}

func simulateBus(bus models.Bus, drivingBusID string, now time.Time, window time.Duration) models.Bus {
	if SelectMode(&bus, drivingBusID, now, window) == ModeLive {
		return refreshLive(bus)
	}

	valid := validStopTimes(bus.Stops, now)
	if len(valid) < 2 {
		return incompleteSchedule(bus)
	}

	firstAt := valid[0].at
	lastAt := valid[len(valid)-1].at

	if bus.Direction != models.DirectionBackward {
		if now.Before(firstAt) {
			return beforeStart(bus, valid)
		}
		if !now.After(lastAt) {
			return locate(bus, valid, now)
		}
		// Forward leg is over: turn around at the terminus.
		bus.Direction = models.DirectionBackward
	}

	// Backward leg. The return schedule mirrors the forward one around the
	// terminal arrival, reusing each inter-stop duration in reverse.
	back := mirrorSchedule(valid)
	if now.Before(back[0].at) {
		// Stored direction is stale relative to today's timetable (the
		// record carried over from a previous day, or the schedule was
		// edited). Restart the round trip from the forward leg.
		bus.Direction = models.DirectionForward
		if now.Before(firstAt) {
			return beforeStart(bus, valid)
		}
		return locate(bus, valid, now)
	}
	if now.After(back[len(back)-1].at) {
		return afterEnd(bus, back)
	}
	return locate(bus, back, now)
}

// refreshLive leaves position authority with the external GPS reporter and
// only refreshes the derived display fields.
func refreshLive(bus models.Bus) models.Bus {
	if bus.NextStopIndex >= 0 && bus.NextStopIndex < len(bus.Stops) {
		bus.NextStopName = bus.Stops[bus.NextStopIndex].Name
		bus.ETA = etaLive
	} else {
		bus.NextStopName = "N/A"
		bus.ETA = "N/A"
	}
	bus.Status = models.StatusOnTime
	return bus
}

func incompleteSchedule(bus models.Bus) models.Bus {
	if len(bus.Stops) > 0 {
		bus.CurrentLocation = bus.Stops[0].Location
		bus.NextStopName = bus.Stops[0].Name
	} else {
		bus.CurrentLocation = models.Location{}
		bus.NextStopName = "N/A"
	}
	bus.NextStopIndex = 1
	bus.ETA = etaIncomplete
	bus.Status = models.StatusNotStarted
	return bus
}

func beforeStart(bus models.Bus, sched []stopTime) models.Bus {
	bus.CurrentLocation = sched[0].stop.Location
	bus.NextStopIndex = 0
	bus.Status = models.StatusNotStarted
	bus.ETA = etaNotStarted
	bus.NextStopName = "N/A"
	return bus
}

func afterEnd(bus models.Bus, sched []stopTime) models.Bus {
	last := sched[len(sched)-1]
	bus.CurrentLocation = last.stop.Location
	if bus.Direction == models.DirectionBackward {
		bus.NextStopIndex = 0
	} else {
		bus.NextStopIndex = len(bus.Stops)
	}
	bus.Status = models.StatusFinished
	bus.ETA = etaFinished
	bus.NextStopName = "End of Route"
	return bus
}

// locate finds the schedule segment containing now and interpolates within
// it, or parks the bus at its last departed stop for layover gaps.
// Boundary instants belong to the arriving segment: the scan takes the first
// pair with fromTime <= now <= toTime in ascending order, so a bus at
// exactly a stop's scheduled time is still assigned to the segment ending
// there.
func locate(bus models.Bus, sched []stopTime, now time.Time) models.Bus {
	prevLoc := bus.CurrentLocation
	for i := 0; i+1 < len(sched); i++ {
		from, to := sched[i], sched[i+1]
		if now.Before(from.at) || now.After(to.at) {
			continue
		}
		progress := segmentProgress(from.at, to.at, now)
		bus.CurrentLocation = lerp(from.stop.Location, to.stop.Location, progress)
		bus.NextStopIndex = nextStopIndexFor(bus.Stops, to.stop, i+1)
		bus.ETA = etaString(to.at, now)
		bus.Status = statusForDelta(segmentDelta(from, to, prevLoc, now))
		bus.NextStopName = stopNameAt(bus.Stops, bus.NextStopIndex)
		return bus
	}

	// No segment contains now: duplicate or out-of-order times left a gap.
	// Park at the highest-index stop already departed.
	j := len(sched) - 1
	for j > 0 && sched[j].at.After(now) {
		j--
	}
	departed := sched[j]
	bus.CurrentLocation = departed.stop.Location
	idx := originalStopIndex(bus.Stops, departed.stop)
	if idx < 0 {
		idx = j
	}
	if bus.Direction == models.DirectionBackward {
		bus.NextStopIndex = clampIndex(idx-1, len(bus.Stops))
	} else {
		bus.NextStopIndex = clampIndex(idx+1, len(bus.Stops))
	}
	bus.ETA = etaAtStop
	bus.Status = models.StatusOnTime
	bus.NextStopName = stopNameAt(bus.Stops, bus.NextStopIndex)
	return bus
}

// validStopTimes filters the stop list to entries with a parsable scheduled
// time, preserving order. Stops without one stay visible to displays but
// take no part in timing.
func validStopTimes(stops []models.Stop, now time.Time) []stopTime {
	valid := make([]stopTime, 0, len(stops))
	for _, s := range stops {
		at, ok := ParseScheduleTime(s.ArrivalTime, now)
		if !ok {
			continue
		}
		valid = append(valid, stopTime{stop: s, at: at})
	}
	return valid
}

// mirrorSchedule builds the return-leg timetable: the traversal order is
// reversed and each arrival is reflected around the forward terminus so the
// inter-stop durations repeat in reverse.
func mirrorSchedule(forward []stopTime) []stopTime {
	n := len(forward)
	last := forward[n-1].at
	back := make([]stopTime, n)
	for j := 0; j < n; j++ {
		src := forward[n-1-j]
		back[j] = stopTime{stop: src.stop, at: last.Add(last.Sub(src.at))}
	}
	return back
}

// nextStopIndexFor maps a stop from the filtered traversal list back to its
// index in the full stop array, so pointer consumers index the complete
// list. Falls back to the filtered position when no match exists.
func nextStopIndexFor(stops []models.Stop, next models.Stop, fallback int) int {
	if idx := originalStopIndex(stops, next); idx >= 0 {
		return idx
	}
	return fallback
}

func originalStopIndex(stops []models.Stop, s models.Stop) int {
	for i := range stops {
		if stops[i].Name == s.Name && stops[i].ArrivalTime == s.ArrivalTime {
			return i
		}
	}
	return -1
}

func stopNameAt(stops []models.Stop, idx int) string {
	if idx >= 0 && idx < len(stops) {
		return stops[idx].Name
	}
	return "End of Route"
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx > n {
		return n
	}
	return idx
}

// segmentProgress is the elapsed fraction of the segment, clamped to [0,1].
// A zero-duration segment reports zero progress rather than dividing by it.
func segmentProgress(from, to, now time.Time) float64 {
	dur := to.Sub(from)
	if dur <= 0 {
		return 0
	}
	p := float64(now.Sub(from)) / float64(dur)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// lerp interpolates lat and lng independently. Planar interpolation is a
// known approximation: at intra-route distances the error against a
// great-circle path is negligible.
func lerp(a, b models.Location, t float64) models.Location {
	return models.Location{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

func etaString(arrival, now time.Time) string {
	mins := int(math.Round(arrival.Sub(now).Minutes()))
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%d min", mins)
}

// segmentDelta estimates how far off the timetable the bus is, by projecting
// its last reported position onto the segment and comparing the schedule
// instant that position implies against the wall clock. A purely simulated
// bus tracks the schedule, so the delta stays near one tick; a bus that just
// left live control carries its real deviation.
func segmentDelta(from, to stopTime, prev models.Location, now time.Time) time.Duration {
	if prev == (models.Location{}) {
		return 0
	}
	u := projectOnSegment(from.stop.Location, to.stop.Location, prev)
	implied := from.at.Add(time.Duration(u * float64(to.at.Sub(from.at))))
	return now.Sub(implied)
}

// projectOnSegment returns the clamped scalar projection of p onto the
// segment a->b in the lat/lng plane.
func projectOnSegment(a, b, p models.Location) float64 {
	dx := b.Lat - a.Lat
	dy := b.Lng - a.Lng
	den := dx*dx + dy*dy
	if den == 0 {
		return 0
	}
	u := ((p.Lat-a.Lat)*dx + (p.Lng-a.Lng)*dy) / den
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
