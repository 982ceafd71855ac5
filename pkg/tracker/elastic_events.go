package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/railwatch/railwatch/pkg/elastic_client"
)

type trackingEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Subject   string    `json:"subject"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
}

// recordEvent pushes one tracking transition into the weekly events index.
func (o *Orchestrator) recordEvent(subject string, eventType string, message string, timestamp time.Time) {
	event := trackingEvent{
		Timestamp: timestamp,
		Subject:   subject,
		EventType: eventType,
		Message:   message,
	}

	eventJSON, _ := json.Marshal(event)
	elastic_client.IndexRequest(trackingEventsIndexName(timestamp), bytes.NewReader(eventJSON))
}

func trackingEventsIndexName(timestamp time.Time) string {
	year, week := timestamp.ISOWeek()
	return fmt.Sprintf("railwatch-tracking-events-%d-%d", year, week)
}
