package rtdf

import "time"

// LocationReport is a single GPS/RFID observation from a train. Location is
// nil when the receiver had no fix, in which case the report only carries a
// tag/timestamp observation.
type LocationReport struct {
	TrainRef string `groups:"basic" bson:"trainref"`

	DetectedTag string    `groups:"detailed" bson:"detectedtag"`
	Location    *Location `groups:"basic" bson:"location"`

	HDOP       float64 `groups:"internal" bson:"hdop"`
	Satellites int     `groups:"internal" bson:"satellites"`

	Accuracy AccuracyType `groups:"basic" bson:"accuracy"`

	RecordedAt time.Time `groups:"basic" bson:"recordedat"`

	// TestData reports are recorded but never fed into tracking state
	TestData bool `groups:"internal" bson:"testdata"`
}

type AccuracyType string

const (
	AccuracyExcellent AccuracyType = "excellent"
	AccuracyGood      AccuracyType = "good"
	AccuracyModerate  AccuracyType = "moderate"
	AccuracyPoor      AccuracyType = "poor"
	AccuracyInvalid   AccuracyType = "invalid"
)

// ClassifyAccuracy buckets a GPS fix by horizontal dilution of precision and
// satellite count.
func ClassifyAccuracy(hdop float64, satellites int) AccuracyType {
	if hdop <= 0 || satellites == 0 {
		return AccuracyInvalid
	}

	switch {
	case hdop <= 1.0 && satellites >= 6:
		return AccuracyExcellent
	case hdop <= 2.0 && satellites >= 5:
		return AccuracyGood
	case hdop <= 5.0 && satellites >= 4:
		return AccuracyModerate
	case hdop <= 10.0 && satellites >= 3:
		return AccuracyPoor
	default:
		return AccuracyInvalid
	}
}
