package tracker

import (
	"fmt"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

type RiskLevel string

const (
	RiskLevelClear    RiskLevel = "clear"
	RiskLevelWarning  RiskLevel = "warning"
	RiskLevelCritical RiskLevel = "critical"
)

// AtRisk reports whether the level trips the pair state machine.
func (r RiskLevel) AtRisk() bool {
	return r == RiskLevelWarning || r == RiskLevelCritical
}

// ClassifyRisk classifies the separation between two trains. Within the
// warning band (but never at critical distance) a pair whose separation grew
// since the previous evaluation is downgraded to clear - trains on parallel
// tracks moving apart are not a risk worth waking anyone for.
func ClassifyRisk(distance float64, previousDistance float64, hasPrevious bool, config TrackerConfig) RiskLevel {
	if distance <= config.CollisionCriticalMeters {
		return RiskLevelCritical
	}

	if distance <= config.CollisionWarningMeters {
		if hasPrevious && distance > previousDistance {
			return RiskLevelClear
		}
		return RiskLevelWarning
	}

	return RiskLevelClear
}

// RoutesDisjoint reports whether two assigned routes are distinct and their
// polylines never come within the warning threshold of each other. Point
// sampling at checkpoint resolution only - a best-effort convenience, never
// a safety guarantee, so callers must only use it to suppress the warning
// tier.
func RoutesDisjoint(a *rtdf.Route, b *rtdf.Route, warningMeters float64) bool {
	if a == nil || b == nil || a.PrimaryIdentifier == b.PrimaryIdentifier {
		return false
	}

	polylineA := a.Polyline()
	polylineB := b.Polyline()
	if len(polylineA) == 0 || len(polylineB) == 0 {
		return false
	}

	for i := range polylineA {
		if distance, segment := polylineA[i].DistanceFromPolyline(polylineB); segment != -1 && distance <= warningMeters {
			return false
		}
	}
	for i := range polylineB {
		if distance, segment := polylineB[i].DistanceFromPolyline(polylineA); segment != -1 && distance <= warningMeters {
			return false
		}
	}

	return true
}

// PairKey returns the canonical key for an unordered train pair.
func PairKey(a string, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}
