package tracker

import (
	"fmt"
	"time"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

const (
	collisionWarningMessage  = "COLLISION_WARNING: Potential collision risk between Train %s and Train %s"
	collisionResolvedMessage = "COLLISION_RESOLVED: Collision risk between Train %s and Train %s resolved"
	deviationWarningMessage  = "DEVIATION_WARNING: Train %s deviated from route %s by %.0fm"
	deviationResolvedMessage = "DEVIATION_RESOLVED: Train %s returned to route %s"
	trainStoppedMessage      = "TRAIN_STOPPED: Train %s stopped at %s"
	trainResumedMessage      = "TRAIN_RESUMED: Train %s resumed from %s"
	scheduleDelayedMessage   = "SCHEDULE_DELAYED: Train %s running %dm behind schedule on route %s"
	routeCompletedMessage    = "ROUTE_COMPLETED: Train %s completed route %s"
)

func formatLocation(location *rtdf.Location) string {
	if location == nil {
		return "[unknown]"
	}
	return fmt.Sprintf("[%.5f, %.5f]", location.Longitude(), location.Latitude())
}

// systemAlerts builds the alert records for one logical event: one to the
// real recipient and one copy to the fixed monitoring recipient, both from
// the fixed system sender. Emission is always this explicit list - never a
// hidden fan-out flag.
func (o *Orchestrator) systemAlerts(recipient string, message string, location *rtdf.Location, timestamp time.Time) []rtdf.Alert {
	return []rtdf.Alert{
		{
			SenderRef:    o.config.SystemSenderID,
			RecipientRef: recipient,
			Message:      message,
			Location:     location,
			Timestamp:    timestamp,
		},
		{
			SenderRef:    o.config.SystemSenderID,
			RecipientRef: o.config.MonitoringRecipientID,
			Message:      message,
			Location:     location,
			Timestamp:    timestamp,
		},
	}
}
