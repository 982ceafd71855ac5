package tracker

import (
	"context"
	"fmt"

	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/railwatch/railwatch/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const sweepConcurrency = 4

// Orchestrator drives the evaluation pipeline for each accepted location
// report and for the periodic sweep. It owns all transient tracking state.
type Orchestrator struct {
	config TrackerConfig

	trains TrainStore
	routes RouteStore
	alerts AlertStore
	clock  Clock

	state *trackingState
}

func NewOrchestrator(config TrackerConfig, trains TrainStore, routes RouteStore, alerts AlertStore, clock Clock) *Orchestrator {
	return &Orchestrator{
		config: config,

		trains: trains,
		routes: routes,
		alerts: alerts,
		clock:  clock,

		state: newTrackingState(),
	}
}

// EvaluationResult summarises what one report did to the pipeline.
type EvaluationResult struct {
	TrainRef string

	Skipped    bool
	SkipReason string

	ConfirmedCheckpoint int
	CheckpointAdvanced  bool
	RouteCompleted      bool

	Deviation         DeviationStatus
	DeviationDistance float64
	Schedule          ScheduleStatus
	Stopped           bool

	AlertsEmitted int
}

// EvaluateReport runs the full pipeline for one location report. A missing
// or invalid input skips the sub-checks that depend on it, never the whole
// pipeline.
func (o *Orchestrator) EvaluateReport(ctx context.Context, report *rtdf.LocationReport) (*EvaluationResult, error) {
	result := &EvaluationResult{TrainRef: report.TrainRef}

	if report.TestData {
		// test reports are recorded upstream and never evaluated
		result.Skipped = true
		result.SkipReason = "test data"
		return result, nil
	}

	train, err := o.trains.Train(ctx, report.TrainRef)
	if err != nil {
		return nil, err
	}
	if train == nil {
		log.Warn().Str("train", report.TrainRef).Msg("Report for unknown train")
		result.Skipped = true
		result.SkipReason = "unknown train"
		return result, nil
	}

	var pending []rtdf.Alert
	runCollisions := false

	func() {
		state, unlock := o.state.lockTrain(train.PrimaryIdentifier)
		defer unlock()

		if report.Location != nil {
			if err := o.trains.UpdateTrainLocation(ctx, train.PrimaryIdentifier, report.Location, report.RecordedAt); err != nil {
				log.Error().Err(err).Str("train", train.PrimaryIdentifier).Msg("Failed to update last known location")
			}
		}

		if !train.IsActive() {
			result.Skipped = true
			result.SkipReason = "train not in service"
			return
		}

		pending = append(pending, o.checkMovement(state, report)...)
		result.Stopped = state.Stopped

		route := o.resolveRoute(ctx, train)

		if route != nil {
			// a reassigned train starts the new route from scratch
			if state.RouteRef != route.PrimaryIdentifier {
				state.resetRouteProgress(route.PrimaryIdentifier)
			}

			previousCheckpoint := state.LastConfirmedCheckpoint
			progressAlerts, completed := o.checkProgress(ctx, state, train, route, report)
			pending = append(pending, progressAlerts...)
			result.ConfirmedCheckpoint = state.LastConfirmedCheckpoint
			result.CheckpointAdvanced = state.LastConfirmedCheckpoint > previousCheckpoint

			if completed {
				result.RouteCompleted = true
				return
			}

			pending = append(pending, o.checkDeviation(state, train, route, report, result)...)
			pending = append(pending, o.checkSchedule(state, train, route)...)
		}

		result.Deviation = state.Deviation
		result.Schedule = state.Schedule

		runCollisions = true
	}()

	result.AlertsEmitted += o.deliver(ctx, pending)

	if runCollisions {
		result.AlertsEmitted += o.EvaluateCollisions(ctx)
	}

	return result, nil
}

// SweepActiveVehicles runs the stopped-in-place check for every active train
// and then the pairwise collision evaluation, without requiring any new
// report. Disjoint trains are checked in parallel.
func (o *Orchestrator) SweepActiveVehicles(ctx context.Context) error {
	trains, err := o.trains.ActiveTrains(ctx)
	if err != nil {
		return err
	}

	now := o.clock.Now()

	sweepPool := pool.New().WithMaxGoroutines(sweepConcurrency)
	for _, train := range trains {
		train := train
		sweepPool.Go(func() {
			state, unlock := o.state.lockTrain(train.PrimaryIdentifier)

			var pending []rtdf.Alert
			if !state.Stopped && state.AnchorLocation != nil && now.Sub(state.AnchorTime) >= o.config.StoppedAfter {
				state.Stopped = true
				message := fmt.Sprintf(trainStoppedMessage, train.PrimaryIdentifier, formatLocation(state.AnchorLocation))
				pending = o.systemAlerts(train.PrimaryIdentifier, message, state.AnchorLocation, now)
				o.recordEvent(train.PrimaryIdentifier, "train_stopped", message, now)
			}
			unlock()

			o.deliver(ctx, pending)
		})
	}
	sweepPool.Wait()

	o.EvaluateCollisions(ctx)

	activeIDs := make(map[string]bool, len(trains))
	for _, train := range trains {
		activeIDs[train.PrimaryIdentifier] = true
	}
	o.state.prune(activeIDs)

	return nil
}

// EvaluateCollisions classifies every unordered pair of fresh active trains
// and emits paired edge-triggered alerts. Returns the number of alert
// records emitted.
func (o *Orchestrator) EvaluateCollisions(ctx context.Context) int {
	trains, err := o.trains.ActiveTrains(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active trains for collision evaluation")
		return 0
	}

	now := o.clock.Now()
	freshness := o.config.FreshnessWindow
	util.InPlaceFilter(&trains, func(t *rtdf.Train) bool {
		return t.IsActive() && t.LastKnownLocation != nil && now.Sub(t.LastReportedAt) <= freshness
	})

	var pending []rtdf.Alert
	routeCache := map[string]*rtdf.Route{}

	for i := 0; i < len(trains); i++ {
		for j := i + 1; j < len(trains); j++ {
			a := trains[i]
			b := trains[j]

			distance := a.LastKnownLocation.Distance(b.LastKnownLocation)
			key := PairKey(a.PrimaryIdentifier, b.PrimaryIdentifier)

			previous, hasPrevious := o.state.pairPreviousDistance(key)
			level := ClassifyRisk(distance, previous, hasPrevious, o.config)

			if level == RiskLevelWarning {
				routeA := o.routeForSuppression(ctx, routeCache, a)
				routeB := o.routeForSuppression(ctx, routeCache, b)
				if RoutesDisjoint(routeA, routeB, o.config.CollisionWarningMeters) {
					level = RiskLevelClear
				}
			}

			edge := o.state.pairTransition(key, level, distance)
			if edge == 0 {
				continue
			}

			var message string
			if edge > 0 {
				message = fmt.Sprintf(collisionWarningMessage, a.PrimaryIdentifier, b.PrimaryIdentifier)
			} else {
				message = fmt.Sprintf(collisionResolvedMessage, a.PrimaryIdentifier, b.PrimaryIdentifier)
			}

			midpoint := a.LastKnownLocation.Midpoint(b.LastKnownLocation)
			pending = append(pending, o.systemAlerts(a.PrimaryIdentifier, message, &midpoint, now)...)
			pending = append(pending, o.systemAlerts(b.PrimaryIdentifier, message, &midpoint, now)...)

			o.recordEvent(key, "collision_"+string(level), message, now)
		}
	}

	return o.deliver(ctx, pending)
}

// checkMovement runs the stopped/resumed edge detection against the
// movement anchor.
func (o *Orchestrator) checkMovement(state *trainState, report *rtdf.LocationReport) []rtdf.Alert {
	if report.Location == nil {
		return nil
	}

	if state.AnchorLocation == nil {
		state.AnchorLocation = report.Location
		state.AnchorTime = report.RecordedAt
		return nil
	}

	moved := state.AnchorLocation.Distance(report.Location)

	if moved >= o.config.MovementThresholdMeters {
		wasStopped := state.Stopped
		state.Stopped = false
		state.AnchorLocation = report.Location
		state.AnchorTime = report.RecordedAt

		if wasStopped {
			message := fmt.Sprintf(trainResumedMessage, report.TrainRef, formatLocation(report.Location))
			o.recordEvent(report.TrainRef, "train_resumed", message, report.RecordedAt)
			return o.systemAlerts(report.TrainRef, message, report.Location, report.RecordedAt)
		}
		return nil
	}

	if !state.Stopped && report.RecordedAt.Sub(state.AnchorTime) >= o.config.StoppedAfter {
		state.Stopped = true
		message := fmt.Sprintf(trainStoppedMessage, report.TrainRef, formatLocation(report.Location))
		o.recordEvent(report.TrainRef, "train_stopped", message, report.RecordedAt)
		return o.systemAlerts(report.TrainRef, message, report.Location, report.RecordedAt)
	}

	return nil
}

// checkProgress advances checkpoint progress and handles the end-of-route
// handoff to maintenance. The returned flag stops further evaluation for
// this report.
func (o *Orchestrator) checkProgress(ctx context.Context, state *trainState, train *rtdf.Train, route *rtdf.Route, report *rtdf.LocationReport) ([]rtdf.Alert, bool) {
	if report.Location == nil && report.DetectedTag == "" {
		return nil, false
	}

	newIndex := AdvanceProgress(state.LastConfirmedCheckpoint, report.Location, report.DetectedTag, route, o.config)
	if newIndex <= state.LastConfirmedCheckpoint {
		return nil, false
	}

	state.LastConfirmedCheckpoint = newIndex

	if newIndex != len(route.Checkpoints)-1 {
		return nil, false
	}

	if err := o.trains.UpdateTrainStatus(ctx, train.PrimaryIdentifier, rtdf.TrainStatusMaintenance); err != nil {
		log.Error().Err(err).Str("train", train.PrimaryIdentifier).Msg("Failed to hand train over to maintenance")
	}

	message := fmt.Sprintf(routeCompletedMessage, train.PrimaryIdentifier, route.PrimaryIdentifier)
	o.recordEvent(train.PrimaryIdentifier, "route_completed", message, report.RecordedAt)

	return o.systemAlerts(train.PrimaryIdentifier, message, report.Location, report.RecordedAt), true
}

func (o *Orchestrator) checkDeviation(state *trainState, train *rtdf.Train, route *rtdf.Route, report *rtdf.LocationReport, result *EvaluationResult) []rtdf.Alert {
	if report.Location == nil {
		return nil
	}

	status, distance, ok := ClassifyDeviation(report.Location, route.Polyline(), o.config.DeviationThresholdMeters)
	if !ok {
		return nil
	}

	result.DeviationDistance = distance

	previous := state.Deviation
	state.Deviation = status

	if previous == status {
		return nil
	}

	var message string
	if status == DeviationStatusDeviated {
		message = fmt.Sprintf(deviationWarningMessage, train.PrimaryIdentifier, route.PrimaryIdentifier, distance)
		o.recordEvent(train.PrimaryIdentifier, "deviation_warning", message, report.RecordedAt)
	} else {
		message = fmt.Sprintf(deviationResolvedMessage, train.PrimaryIdentifier, route.PrimaryIdentifier)
		o.recordEvent(train.PrimaryIdentifier, "deviation_resolved", message, report.RecordedAt)
	}

	return o.systemAlerts(train.PrimaryIdentifier, message, report.Location, report.RecordedAt)
}

func (o *Orchestrator) checkSchedule(state *trainState, train *rtdf.Train, route *rtdf.Route) []rtdf.Alert {
	now := o.clock.Now()

	status, behind := EvaluateSchedule(route, state.LastConfirmedCheckpoint, now, o.config.DelayThreshold)

	previous := state.Schedule
	state.Schedule = status

	// the taxonomy has no recovery template; delayed->on-time flips silently
	if status != ScheduleStatusDelayed || previous == ScheduleStatusDelayed {
		return nil
	}

	message := fmt.Sprintf(scheduleDelayedMessage, train.PrimaryIdentifier, int(behind.Minutes()), route.PrimaryIdentifier)
	o.recordEvent(train.PrimaryIdentifier, "schedule_delayed", message, now)

	return o.systemAlerts(train.PrimaryIdentifier, message, train.LastKnownLocation, now)
}

// resolveRoute loads the train's assigned route. A dangling reference or an
// empty checkpoint list degrades to "no route assigned".
func (o *Orchestrator) resolveRoute(ctx context.Context, train *rtdf.Train) *rtdf.Route {
	if train.RouteRef == "" {
		return nil
	}

	route, err := o.routes.Route(ctx, train.RouteRef)
	if err != nil {
		log.Error().Err(err).Str("route", train.RouteRef).Msg("Failed to load route")
		return nil
	}
	if route == nil || len(route.Checkpoints) == 0 {
		return nil
	}

	return route
}

func (o *Orchestrator) routeForSuppression(ctx context.Context, cache map[string]*rtdf.Route, train *rtdf.Train) *rtdf.Route {
	if train.RouteRef == "" {
		return nil
	}
	if route, found := cache[train.RouteRef]; found {
		return route
	}

	route, err := o.routes.Route(ctx, train.RouteRef)
	if err != nil {
		route = nil
	}
	cache[train.RouteRef] = route
	return route
}

// deliver hands constructed alerts to the alert store. The edge state that
// produced them already flipped, so a delivery failure is logged and left to
// the store's retry discipline rather than re-derived.
func (o *Orchestrator) deliver(ctx context.Context, alerts []rtdf.Alert) int {
	if len(alerts) == 0 {
		return 0
	}

	if err := o.alerts.Emit(ctx, alerts); err != nil {
		log.Error().Err(err).Int("count", len(alerts)).Msg("Failed to emit alerts")
	}

	return len(alerts)
}
