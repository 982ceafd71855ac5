package tracker

import (
	"time"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

type ScheduleStatus string

const (
	ScheduleStatusOnTime  ScheduleStatus = "on-time"
	ScheduleStatusDelayed ScheduleStatus = "delayed"
)

// EvaluateSchedule compares the current time against the expected arrival of
// the next unconfirmed checkpoint. Self-timed routes (nil start time) and
// completed routes are always on time.
func EvaluateSchedule(route *rtdf.Route, lastConfirmed int, now time.Time, delayThreshold time.Duration) (ScheduleStatus, time.Duration) {
	next := lastConfirmed + 1

	expected, ok := route.ExpectedArrival(next)
	if !ok {
		return ScheduleStatusOnTime, 0
	}

	behind := now.Sub(expected)
	if behind > delayThreshold {
		return ScheduleStatusDelayed, behind
	}

	return ScheduleStatusOnTime, 0
}
