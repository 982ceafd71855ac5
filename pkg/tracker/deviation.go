package tracker

import "github.com/railwatch/railwatch/pkg/rtdf"

type DeviationStatus string

const (
	DeviationStatusInPath   DeviationStatus = "in-path"
	DeviationStatusDeviated DeviationStatus = "deviated"
)

// ClassifyDeviation measures the train's distance from the route polyline
// and classifies it against the threshold. ok is false when the polyline is
// empty and no classification is possible.
func ClassifyDeviation(location *rtdf.Location, polyline []rtdf.Location, thresholdMeters float64) (status DeviationStatus, distance float64, ok bool) {
	distance, segment := location.DistanceFromPolyline(polyline)
	if segment == -1 {
		return DeviationStatusInPath, 0, false
	}

	if distance <= thresholdMeters {
		return DeviationStatusInPath, distance, true
	}

	return DeviationStatusDeviated, distance, true
}
