package tracker

import (
	"math"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

type CheckpointMatch struct {
	Index    int
	Distance float64
}

// NearestCheckpoint returns the checkpoint nearest to the location. When two
// checkpoints are equidistant within tieEpsilon the higher index wins, so
// GPS noise at equidistant points reads as forward progress rather than
// oscillation.
func NearestCheckpoint(location *rtdf.Location, checkpoints []rtdf.Checkpoint, tieEpsilon float64) CheckpointMatch {
	nearest := CheckpointMatch{Index: -1, Distance: math.Inf(1)}

	for i := range checkpoints {
		distance := location.Distance(&checkpoints[i].Location)

		if distance < nearest.Distance-tieEpsilon {
			nearest = CheckpointMatch{Index: i, Distance: distance}
		} else if math.Abs(distance-nearest.Distance) <= tieEpsilon && i > nearest.Index {
			nearest = CheckpointMatch{Index: i, Distance: distance}
		}
	}

	return nearest
}

// AdvanceProgress returns the new confirmed checkpoint index for a report
// given the previous one. Progress is monotonic: the result is never below
// lastConfirmed, even if the raw nearest checkpoint sits earlier on the
// route.
//
// A checkpoint is confirmed either by a tag read matching its ExpectedTag
// (looked for from the next expected checkpoint up to TagLookahead past it,
// since untagged checkpoints in between may have been missed) or by GPS
// proximity - and a tagged checkpoint is never confirmed by proximity alone.
func AdvanceProgress(lastConfirmed int, location *rtdf.Location, detectedTag string, route *rtdf.Route, config TrackerConfig) int {
	confirmed := lastConfirmed
	checkpoints := route.Checkpoints

	if detectedTag != "" {
		expected := lastConfirmed + 1
		limit := expected + config.TagLookahead
		if limit > len(checkpoints)-1 {
			limit = len(checkpoints) - 1
		}

		for i := expected; i <= limit; i++ {
			if checkpoints[i].ExpectedTag == detectedTag {
				confirmed = i
				break
			}
		}
	}

	if location == nil {
		return confirmed
	}

	nearest := NearestCheckpoint(location, checkpoints, config.CheckpointTieEpsilonMeters)
	if nearest.Index <= confirmed || nearest.Distance > config.CheckpointProximityMeters {
		return confirmed
	}

	checkpoint := checkpoints[nearest.Index]
	if checkpoint.ExpectedTag != "" && checkpoint.ExpectedTag != detectedTag {
		// physical confirmation expected here but not observed
		return confirmed
	}

	return nearest.Index
}
