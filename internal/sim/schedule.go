package sim

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches a 12-hour clock time anywhere in free text, e.g. "Kollam @ 8:05 AM".
var scheduleTimePattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)

// ParseScheduleTime extracts an "h:mm AM/PM" time from text and returns it as
// an instant on ref's calendar date with seconds zeroed. The second return
// value is false when no time is present or the numeric parts do not parse;
// callers must exclude such stops from scheduling instead of failing the run.
func ParseScheduleTime(text string, ref time.Time) (time.Time, bool) {
	m := scheduleTimePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	if hours < 1 || hours > 12 || minutes > 59 {
		return time.Time{}, false
	}
	if strings.EqualFold(m[3], "PM") {
		if hours < 12 {
			hours += 12
		}
	} else if hours == 12 {
		hours = 0
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hours, minutes, 0, 0, ref.Location()), true
}

// FormatScheduleTime renders an instant in the same "h:mm AM/PM" shape the
// schedule uses, for writing actual arrival times into history records.
func FormatScheduleTime(t time.Time) string {
	return t.Format("3:04 PM")
}
