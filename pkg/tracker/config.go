package tracker

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TrackerConfig carries every threshold and identifier the pipeline uses.
// It is immutable once handed to an Orchestrator; nothing in the pipeline
// reads ambient state.
type TrackerConfig struct {
	// Checkpoint is reached when within this distance of it
	CheckpointProximityMeters float64 `yaml:"checkpoint_proximity_meters" validate:"gt=0"`
	// Equidistant checkpoints within this epsilon tie-break forwards
	CheckpointTieEpsilonMeters float64 `yaml:"checkpoint_tie_epsilon_meters" validate:"gte=0"`
	// A tag read may confirm a checkpoint up to this many positions past the
	// next expected one
	TagLookahead int `yaml:"tag_lookahead" validate:"gte=0"`

	DeviationThresholdMeters float64 `yaml:"deviation_threshold_meters" validate:"gt=0"`

	// Displacement below this counts as standing still
	MovementThresholdMeters float64       `yaml:"movement_threshold_meters" validate:"gt=0"`
	StoppedAfter            time.Duration `yaml:"stopped_after" validate:"gt=0"`

	DelayThreshold time.Duration `yaml:"delay_threshold" validate:"gte=0"`

	CollisionCriticalMeters float64 `yaml:"collision_critical_meters" validate:"gt=0"`
	CollisionWarningMeters  float64 `yaml:"collision_warning_meters" validate:"gtefield=CollisionCriticalMeters"`

	// Trains whose last report is older than this are left out of collision
	// evaluation
	FreshnessWindow time.Duration `yaml:"freshness_window" validate:"gt=0"`

	// Zero disables the background sweep; reactive evaluation is unaffected
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gte=0"`

	SystemSenderID        string `yaml:"system_sender_id" validate:"required"`
	MonitoringRecipientID string `yaml:"monitoring_recipient_id" validate:"required"`
}

var defaultTrackerConfig = TrackerConfig{
	CheckpointProximityMeters:  50.0,
	CheckpointTieEpsilonMeters: 5.0,
	TagLookahead:               2,
	DeviationThresholdMeters:   100.0,
	MovementThresholdMeters:    5.0,
	StoppedAfter:               2 * time.Minute,
	DelayThreshold:             5 * time.Minute,
	CollisionCriticalMeters:    100.0,
	CollisionWarningMeters:     500.0,
	FreshnessWindow:            5 * time.Minute,
	SweepInterval:              60 * time.Second,
	SystemSenderID:             "system",
	MonitoringRecipientID:      "guest",
}

// GetTrackerConfig returns the tracker configuration from defaults, an
// optional YAML file named by RAILWATCH_CONFIG, and environment variable
// overrides, validated before use.
func GetTrackerConfig() (TrackerConfig, error) {
	config := defaultTrackerConfig

	if path := os.Getenv("RAILWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, err
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, err
		}
	}

	applyEnvironmentOverrides(&config)

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return config, err
	}

	return config, nil
}

func applyEnvironmentOverrides(config *TrackerConfig) {
	overrideFloat("RAILWATCH_TRACKER_CHECKPOINT_PROXIMITY_METERS", &config.CheckpointProximityMeters)
	overrideFloat("RAILWATCH_TRACKER_DEVIATION_THRESHOLD_METERS", &config.DeviationThresholdMeters)
	overrideFloat("RAILWATCH_TRACKER_MOVEMENT_THRESHOLD_METERS", &config.MovementThresholdMeters)
	overrideFloat("RAILWATCH_TRACKER_COLLISION_CRITICAL_METERS", &config.CollisionCriticalMeters)
	overrideFloat("RAILWATCH_TRACKER_COLLISION_WARNING_METERS", &config.CollisionWarningMeters)

	overrideDuration("RAILWATCH_TRACKER_STOPPED_AFTER", &config.StoppedAfter)
	overrideDuration("RAILWATCH_TRACKER_DELAY_THRESHOLD", &config.DelayThreshold)
	overrideDuration("RAILWATCH_TRACKER_FRESHNESS_WINDOW", &config.FreshnessWindow)
	overrideDuration("RAILWATCH_TRACKER_SWEEP_INTERVAL", &config.SweepInterval)
}

func overrideFloat(name string, target *float64) {
	if val := os.Getenv(name); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideDuration(name string, target *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*target = parsed
		}
	}
}
