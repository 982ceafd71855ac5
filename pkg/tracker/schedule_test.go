package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateSchedule(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	threshold := 5 * time.Minute

	route := testRoute("", "", "")
	route.StartTime = &start

	t.Run("well behind schedule", func(t *testing.T) {
		// checkpoint 1 expected at start+600s, still unconfirmed
		now := start.Add(4000 * time.Second)

		status, behind := EvaluateSchedule(route, 0, now, threshold)

		assert.Equal(t, ScheduleStatusDelayed, status)
		assert.Equal(t, 3400*time.Second, behind)
	})

	t.Run("within the threshold", func(t *testing.T) {
		now := start.Add(600*time.Second + threshold)

		status, _ := EvaluateSchedule(route, 0, now, threshold)

		assert.Equal(t, ScheduleStatusOnTime, status)
	})

	t.Run("ahead of schedule", func(t *testing.T) {
		status, _ := EvaluateSchedule(route, 0, start, threshold)

		assert.Equal(t, ScheduleStatusOnTime, status)
	})

	t.Run("all checkpoints confirmed", func(t *testing.T) {
		now := start.Add(24 * time.Hour)

		status, _ := EvaluateSchedule(route, len(route.Checkpoints)-1, now, threshold)

		assert.Equal(t, ScheduleStatusOnTime, status)
	})

	t.Run("self-timed route", func(t *testing.T) {
		selfTimed := testRoute("", "", "")
		now := start.Add(24 * time.Hour)

		status, _ := EvaluateSchedule(selfTimed, 0, now, threshold)

		assert.Equal(t, ScheduleStatusOnTime, status)
	})
}
