package rtdf

import "time"

type Train struct {
	PrimaryIdentifier string `groups:"basic" bson:"primaryidentifier"`
	Name              string `groups:"basic" bson:"name"`

	Status TrainStatus `groups:"basic" bson:"status"`

	// RouteRef is empty when the train has no assigned route
	RouteRef string `groups:"detailed" bson:"routeref"`

	LastKnownLocation *Location `groups:"detailed" bson:"lastknownlocation"`
	LastReportedAt    time.Time `groups:"detailed" bson:"lastreportedat"`

	CreationDateTime     time.Time `groups:"internal" bson:"creationdatetime"`
	ModificationDateTime time.Time `groups:"internal" bson:"modificationdatetime"`
}

type TrainStatus string

const (
	TrainStatusRunning          TrainStatus = "running"
	TrainStatusStoppedInService TrainStatus = "stopped-in-service"
	TrainStatusMaintenance      TrainStatus = "maintenance"
	TrainStatusOutOfService     TrainStatus = "out-of-service"
)

// IsActive reports whether the train takes part in tracking, schedule and
// collision evaluation.
func (t *Train) IsActive() bool {
	return t.Status == TrainStatusRunning || t.Status == TrainStatusStoppedInService
}
