package sim

import (
	"time"

	"github.com/ansdeepu/kerala-rides/internal/models"
)

// scheduleBand is the tolerance around the timetable inside which a bus
// still counts as on time.
const scheduleBand = 5 * time.Minute

// ClassifyStatus compares an actual arrival instant against the scheduled
// one and returns On Time, Delayed or Early. The same comparison drives the
// per-stop annotations in the history view.
func ClassifyStatus(scheduled, actual time.Time) string {
	return statusForDelta(actual.Sub(scheduled))
}

// statusForDelta maps a schedule deviation (positive = running late) to a
// coarse status label.
func statusForDelta(delta time.Duration) string {
	switch {
	case delta > scheduleBand:
		return models.StatusDelayed
	case delta < -scheduleBand:
		return models.StatusEarly
	default:
		return models.StatusOnTime
	}
}
