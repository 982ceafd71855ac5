package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTrackerConfigDefaults(t *testing.T) {
	config, err := GetTrackerConfig()

	require.NoError(t, err)
	assert.Equal(t, 100.0, config.DeviationThresholdMeters)
	assert.Equal(t, 2*time.Minute, config.StoppedAfter)
	assert.Equal(t, "system", config.SystemSenderID)
	assert.Equal(t, "guest", config.MonitoringRecipientID)
}

func TestGetTrackerConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("RAILWATCH_TRACKER_DEVIATION_THRESHOLD_METERS", "250")
	t.Setenv("RAILWATCH_TRACKER_STOPPED_AFTER", "10m")

	config, err := GetTrackerConfig()

	require.NoError(t, err)
	assert.Equal(t, 250.0, config.DeviationThresholdMeters)
	assert.Equal(t, 10*time.Minute, config.StoppedAfter)
}

func TestGetTrackerConfigRejectsInvertedCollisionBands(t *testing.T) {
	t.Setenv("RAILWATCH_TRACKER_COLLISION_WARNING_METERS", "50")

	_, err := GetTrackerConfig()

	assert.Error(t, err)
}
