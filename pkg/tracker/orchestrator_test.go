package tracker

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/railwatch/railwatch/pkg/rtdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrainStore struct {
	mu     sync.Mutex
	trains map[string]*rtdf.Train
}

func (s *fakeTrainStore) Train(ctx context.Context, id string) (*rtdf.Train, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trains[id], nil
}

func (s *fakeTrainStore) ActiveTrains(ctx context.Context) ([]*rtdf.Train, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*rtdf.Train
	for _, train := range s.trains {
		if train.IsActive() {
			active = append(active, train)
		}
	}
	return active, nil
}

func (s *fakeTrainStore) UpdateTrainStatus(ctx context.Context, id string, status rtdf.TrainStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if train := s.trains[id]; train != nil {
		train.Status = status
	}
	return nil
}

func (s *fakeTrainStore) UpdateTrainLocation(ctx context.Context, id string, location *rtdf.Location, reportedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if train := s.trains[id]; train != nil {
		train.LastKnownLocation = location
		train.LastReportedAt = reportedAt
	}
	return nil
}

type fakeRouteStore struct {
	routes map[string]*rtdf.Route
}

func (s *fakeRouteStore) Route(ctx context.Context, id string) (*rtdf.Route, error) {
	return s.routes[id], nil
}

type fakeAlertStore struct {
	mu     sync.Mutex
	alerts []rtdf.Alert
}

func (s *fakeAlertStore) Emit(ctx context.Context, alerts []rtdf.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *fakeAlertStore) countContaining(fragment string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, alert := range s.alerts {
		if strings.Contains(alert.Message, fragment) {
			count++
		}
	}
	return count
}

func (s *fakeAlertStore) recipientsFor(fragment string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recipients []string
	for _, alert := range s.alerts {
		if strings.Contains(alert.Message, fragment) {
			recipients = append(recipients, alert.RecipientRef)
		}
	}
	return recipients
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testHarness struct {
	orchestrator *Orchestrator
	trains       *fakeTrainStore
	routes       *fakeRouteStore
	alerts       *fakeAlertStore
	clock        *manualClock
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	trains := &fakeTrainStore{trains: map[string]*rtdf.Train{}}
	routes := &fakeRouteStore{routes: map[string]*rtdf.Route{}}
	alerts := &fakeAlertStore{}
	clock := &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	return &testHarness{
		orchestrator: NewOrchestrator(defaultTrackerConfig, trains, routes, alerts, clock),
		trains:       trains,
		routes:       routes,
		alerts:       alerts,
		clock:        clock,
	}
}

func (h *testHarness) addTrain(id string, routeRef string) {
	h.trains.trains[id] = &rtdf.Train{
		PrimaryIdentifier: id,
		Status:            rtdf.TrainStatusRunning,
		RouteRef:          routeRef,
	}
}

func (h *testHarness) report(t *testing.T, trainRef string, longitude float64, latitude float64) *EvaluationResult {
	t.Helper()

	location := rtdf.NewLocation(longitude, latitude)
	result, err := h.orchestrator.EvaluateReport(context.Background(), &rtdf.LocationReport{
		TrainRef:   trainRef,
		Location:   &location,
		RecordedAt: h.clock.Now(),
	})
	require.NoError(t, err)

	return result
}

func TestDeviationAlertsAreEdgeTriggered(t *testing.T) {
	h := newTestHarness(t)

	h.routes.routes["route-1"] = testRoute("", "", "")
	h.addTrain("train-1", "route-1")

	// in, in, deviated, deviated, deviated, in
	latitudes := []float64{0.0001, 0.0001, 0.002, 0.002, 0.002, 0.0001}
	for i, latitude := range latitudes {
		h.report(t, "train-1", 0.012+float64(i)*0.001, latitude)
		h.clock.advance(30 * time.Second)
	}

	assert.Equal(t, 2, h.alerts.countContaining("DEVIATION_WARNING"))
	assert.Equal(t, 2, h.alerts.countContaining("DEVIATION_RESOLVED"))
	assert.ElementsMatch(t, []string{"train-1", "guest"}, h.alerts.recipientsFor("DEVIATION_WARNING"))

	// the warning carries the measured distance
	assert.Equal(t, 2, h.alerts.countContaining("by 222m"))
}

func TestMaintenanceTrainsExcludedFromCollisionEvaluation(t *testing.T) {
	h := newTestHarness(t)

	h.addTrain("train-1", "")
	h.addTrain("train-2", "")

	h.report(t, "train-1", 0, 0)
	h.clock.advance(10 * time.Second)
	h.report(t, "train-2", 0.00009, 0)
	assert.Equal(t, 4, h.alerts.countContaining("COLLISION_WARNING"))

	// a fresh pair with one side out of service never trips, even this close
	h.addTrain("train-3", "")
	h.addTrain("train-4", "")
	h.trains.trains["train-4"].Status = rtdf.TrainStatusMaintenance
	h.trains.trains["train-4"].LastKnownLocation = &rtdf.Location{Type: "Point", Coordinates: []float64{1, 0}}
	h.trains.trains["train-4"].LastReportedAt = h.clock.Now()

	h.clock.advance(10 * time.Second)
	h.report(t, "train-3", 1.00009, 0)

	assert.Equal(t, 0, h.alerts.countContaining("train-3"))
}

func TestCollisionAlertsAreEdgeTriggeredAndPaired(t *testing.T) {
	h := newTestHarness(t)

	h.addTrain("train-1", "")
	h.addTrain("train-2", "")

	h.report(t, "train-1", 0, 0)
	h.clock.advance(10 * time.Second)

	// ~10m apart, well inside the critical band
	h.report(t, "train-2", 0.00009, 0)

	assert.Equal(t, 4, h.alerts.countContaining("COLLISION_WARNING"))
	assert.ElementsMatch(t,
		[]string{"train-1", "train-2", "guest", "guest"},
		h.alerts.recipientsFor("COLLISION_WARNING"))

	// still close, no repeat
	h.clock.advance(10 * time.Second)
	h.report(t, "train-2", 0.0001, 0)
	assert.Equal(t, 4, h.alerts.countContaining("COLLISION_WARNING"))

	// far apart again
	h.clock.advance(10 * time.Second)
	h.report(t, "train-2", 0.1, 0)
	assert.Equal(t, 4, h.alerts.countContaining("COLLISION_RESOLVED"))
}

func TestTestDataReportsAreNeverEvaluated(t *testing.T) {
	h := newTestHarness(t)
	h.addTrain("train-1", "")

	location := rtdf.NewLocation(0, 0)
	result, err := h.orchestrator.EvaluateReport(context.Background(), &rtdf.LocationReport{
		TrainRef:   "train-1",
		Location:   &location,
		RecordedAt: h.clock.Now(),
		TestData:   true,
	})

	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, h.alerts.alerts)
	assert.Nil(t, h.trains.trains["train-1"].LastKnownLocation)
}

func TestUnknownTrainIsSkipped(t *testing.T) {
	h := newTestHarness(t)

	result := h.report(t, "ghost-train", 0, 0)

	assert.True(t, result.Skipped)
	assert.Empty(t, h.alerts.alerts)
}

func TestInactiveTrainOnlyRecordsLocation(t *testing.T) {
	h := newTestHarness(t)
	h.addTrain("train-1", "")
	h.trains.trains["train-1"].Status = rtdf.TrainStatusMaintenance

	result := h.report(t, "train-1", 0.05, 0)

	assert.True(t, result.Skipped)
	assert.Empty(t, h.alerts.alerts)
	require.NotNil(t, h.trains.trains["train-1"].LastKnownLocation)
	assert.Equal(t, 0.05, h.trains.trains["train-1"].LastKnownLocation.Longitude())
}

func TestStoppedAndResumedAlerts(t *testing.T) {
	h := newTestHarness(t)
	h.addTrain("train-1", "")

	h.report(t, "train-1", 0.05, 0)

	h.clock.advance(3 * time.Minute)
	h.report(t, "train-1", 0.05, 0)
	assert.Equal(t, 2, h.alerts.countContaining("TRAIN_STOPPED"))

	// still standing, no repeat
	h.clock.advance(1 * time.Minute)
	h.report(t, "train-1", 0.05, 0)
	assert.Equal(t, 2, h.alerts.countContaining("TRAIN_STOPPED"))

	// ~111m away
	h.clock.advance(1 * time.Minute)
	h.report(t, "train-1", 0.051, 0)
	assert.Equal(t, 2, h.alerts.countContaining("TRAIN_RESUMED"))
}

func TestSweepDetectsStoppedTrain(t *testing.T) {
	h := newTestHarness(t)
	h.addTrain("train-1", "")

	h.report(t, "train-1", 0.05, 0)

	// no further reports arrive; the sweep notices the silence
	h.clock.advance(3 * time.Minute)
	require.NoError(t, h.orchestrator.SweepActiveVehicles(context.Background()))

	assert.Equal(t, 2, h.alerts.countContaining("TRAIN_STOPPED"))

	h.clock.advance(1 * time.Minute)
	require.NoError(t, h.orchestrator.SweepActiveVehicles(context.Background()))
	assert.Equal(t, 2, h.alerts.countContaining("TRAIN_STOPPED"))
}

func TestRouteCompletionHandsTrainToMaintenance(t *testing.T) {
	h := newTestHarness(t)

	h.routes.routes["route-1"] = testRoute("", "")
	h.addTrain("train-1", "route-1")

	h.report(t, "train-1", 0.00001, 0)
	h.clock.advance(time.Minute)

	result := h.report(t, "train-1", 0.01001, 0)

	assert.True(t, result.RouteCompleted)
	assert.Equal(t, rtdf.TrainStatusMaintenance, h.trains.trains["train-1"].Status)
	assert.Equal(t, 2, h.alerts.countContaining("ROUTE_COMPLETED"))
}

func TestRouteReassignmentResetsProgress(t *testing.T) {
	h := newTestHarness(t)

	h.routes.routes["route-1"] = testRoute("", "")
	h.addTrain("train-1", "route-1")

	h.report(t, "train-1", 0.00001, 0)
	h.clock.advance(time.Minute)
	result := h.report(t, "train-1", 0.01001, 0)
	require.True(t, result.RouteCompleted)

	// back in service on a different route
	routeB := &rtdf.Route{PrimaryIdentifier: "route-2"}
	for i := 0; i < 4; i++ {
		routeB.Checkpoints = append(routeB.Checkpoints, rtdf.Checkpoint{
			Location: rtdf.NewLocation(0.1+float64(i)*0.01, 0),
		})
	}
	h.routes.routes["route-2"] = routeB
	h.trains.trains["train-1"].Status = rtdf.TrainStatusRunning
	h.trains.trains["train-1"].RouteRef = "route-2"

	// the new route's early checkpoints confirm from scratch
	h.clock.advance(time.Minute)
	result = h.report(t, "train-1", 0.10001, 0)
	assert.True(t, result.CheckpointAdvanced)
	assert.Equal(t, 0, result.ConfirmedCheckpoint)

	h.clock.advance(time.Minute)
	result = h.report(t, "train-1", 0.11001, 0)
	assert.True(t, result.CheckpointAdvanced)
	assert.Equal(t, 1, result.ConfirmedCheckpoint)
	assert.False(t, result.RouteCompleted)
}

func TestSweepEvictsRetiredState(t *testing.T) {
	h := newTestHarness(t)

	h.addTrain("train-1", "")
	h.addTrain("train-2", "")

	h.report(t, "train-1", 0, 0)
	h.clock.advance(10 * time.Second)
	h.report(t, "train-2", 0.00009, 0)
	require.Equal(t, 4, h.alerts.countContaining("COLLISION_WARNING"))

	h.trains.trains["train-2"].Status = rtdf.TrainStatusOutOfService
	require.NoError(t, h.orchestrator.SweepActiveVehicles(context.Background()))

	state := h.orchestrator.state
	state.mu.Lock()
	_, train1Kept := state.trains["train-1"]
	_, train2Kept := state.trains["train-2"]
	state.mu.Unlock()
	assert.True(t, train1Kept)
	assert.False(t, train2Kept)

	state.pairsMu.Lock()
	_, pairKept := state.pairs[PairKey("train-1", "train-2")]
	state.pairsMu.Unlock()
	assert.False(t, pairKept)
}

func TestScheduleDelayAlertFiresOnce(t *testing.T) {
	h := newTestHarness(t)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	route := testRoute("", "", "")
	route.StartTime = &start
	h.routes.routes["route-1"] = route
	h.addTrain("train-1", "route-1")

	// confirm the first checkpoint on time
	h.report(t, "train-1", 0.00001, 0)

	// 4000s after the start; checkpoint 1 was expected at +600s
	h.clock.now = start.Add(4000 * time.Second)
	h.report(t, "train-1", 0.0047, 0)

	assert.Equal(t, 2, h.alerts.countContaining("SCHEDULE_DELAYED"))
	assert.Equal(t, 2, h.alerts.countContaining("56m behind"))

	// still delayed, no repeat
	h.clock.advance(time.Minute)
	h.report(t, "train-1", 0.0048, 0)
	assert.Equal(t, 2, h.alerts.countContaining("SCHEDULE_DELAYED"))
}
