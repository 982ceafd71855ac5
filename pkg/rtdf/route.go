package rtdf

import "time"

type Route struct {
	PrimaryIdentifier string `groups:"basic" bson:"primaryidentifier"`
	Name              string `groups:"basic" bson:"name"`

	// StartTime is nil for self-timed routes, which never produce schedule
	// alerts
	StartTime *time.Time `groups:"detailed" bson:"starttime"`

	AssignedTrainRef string `groups:"detailed" bson:"assignedtrainref"`

	// Checkpoints are ordered; the sequence defines the direction of travel
	// and the route polyline
	Checkpoints []Checkpoint `groups:"detailed" bson:"checkpoints"`

	CreationDateTime     time.Time `groups:"internal" bson:"creationdatetime"`
	ModificationDateTime time.Time `groups:"internal" bson:"modificationdatetime"`
}

type Checkpoint struct {
	Location Location `groups:"basic" bson:"location"`

	// Name is set when the checkpoint is a named station
	Name string `groups:"basic" bson:"name"`

	// ExpectedTag is the RFID tag expected to be read at this checkpoint,
	// empty when no physical confirmation happens here
	ExpectedTag string `groups:"detailed" bson:"expectedtag"`

	// IntervalSeconds is the offset from route start to expected arrival.
	// Non-decreasing along the checkpoint sequence
	IntervalSeconds int `groups:"basic" bson:"intervalseconds"`
}

// Polyline returns the checkpoint coordinates in sequence order.
func (r *Route) Polyline() []Location {
	points := make([]Location, len(r.Checkpoints))
	for i, checkpoint := range r.Checkpoints {
		points[i] = checkpoint.Location
	}
	return points
}

// ExpectedArrival returns the expected arrival time at the checkpoint with
// the given index, or false when the route is self-timed or the index is out
// of range.
func (r *Route) ExpectedArrival(index int) (time.Time, bool) {
	if r.StartTime == nil || index < 0 || index >= len(r.Checkpoints) {
		return time.Time{}, false
	}
	return r.StartTime.Add(time.Duration(r.Checkpoints[index].IntervalSeconds) * time.Second), true
}
