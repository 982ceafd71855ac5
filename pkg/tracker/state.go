package tracker

import (
	"strings"
	"sync"
	"time"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

// trainState is the transient per-train tracking state the orchestrator
// keeps to detect transitions. It is never persisted truth.
type trainState struct {
	// RouteRef is the route the progress below was confirmed against; a
	// reassignment resets the route-dependent state
	RouteRef                string
	LastConfirmedCheckpoint int

	Deviation DeviationStatus
	Schedule  ScheduleStatus

	Stopped bool
	// Anchor is the last position where meaningful movement was seen; a
	// train that stays within MovementThresholdMeters of it for longer than
	// StoppedAfter is classed as stopped in place
	AnchorLocation *rtdf.Location
	AnchorTime     time.Time
}

// resetRouteProgress rebinds the state to a new route assignment. Stop
// detection is positional, not route-dependent, so the anchor survives.
func (s *trainState) resetRouteProgress(routeRef string) {
	s.RouteRef = routeRef
	s.LastConfirmedCheckpoint = -1
	s.Deviation = DeviationStatusInPath
	s.Schedule = ScheduleStatusOnTime
}

// pairState is the transient per-unordered-pair collision state.
type pairState struct {
	AtRisk       bool
	LastDistance float64
	Evaluated    bool
}

// trackingState is the keyed state store. Train state is guarded by per-key
// mutexes so a periodic sweep and a live report for the same train serialize
// while disjoint trains evaluate in parallel; pair state is guarded by a
// single lock since pairwise evaluation is one bounded unit of work.
type trackingState struct {
	mu     sync.Mutex
	trains map[string]*trainState
	locks  map[string]*sync.Mutex

	pairsMu sync.Mutex
	pairs   map[string]*pairState
}

func newTrackingState() *trackingState {
	return &trackingState{
		trains: map[string]*trainState{},
		locks:  map[string]*sync.Mutex{},
		pairs:  map[string]*pairState{},
	}
}

// lockTrain acquires the per-train mutex and returns the state record and an
// unlock function.
func (s *trackingState) lockTrain(id string) (*trainState, func()) {
	s.mu.Lock()
	lock := s.locks[id]
	if lock == nil {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	state := s.trains[id]
	if state == nil {
		state = &trainState{
			LastConfirmedCheckpoint: -1,
			Deviation:               DeviationStatusInPath,
			Schedule:                ScheduleStatusOnTime,
		}
		s.trains[id] = state
	}
	s.mu.Unlock()

	lock.Lock()
	return state, lock.Unlock
}

// pairTransition applies a risk classification to the pair's state machine
// and reports the edge: +1 on clear->at-risk, -1 on at-risk->clear, 0 when
// nothing crossed. State flips exactly once per transition.
func (s *trackingState) pairTransition(key string, level RiskLevel, distance float64) int {
	s.pairsMu.Lock()
	defer s.pairsMu.Unlock()

	state := s.pairs[key]
	if state == nil {
		state = &pairState{}
		s.pairs[key] = state
	}

	edge := 0
	if level.AtRisk() && !state.AtRisk {
		edge = 1
	} else if !level.AtRisk() && state.AtRisk {
		edge = -1
	}

	state.AtRisk = level.AtRisk()
	state.LastDistance = distance
	state.Evaluated = true

	return edge
}

// prune drops state for trains that left the active set and for pairs with
// a retired member, so a long-running monitor does not accumulate entries
// for every train ever seen. A train lock that is held or contended right
// now is left for the next pass; a pruned pair that becomes active again
// re-arms from clear.
func (s *trackingState) prune(activeIDs map[string]bool) {
	s.mu.Lock()
	for id, lock := range s.locks {
		if activeIDs[id] {
			continue
		}
		if lock.TryLock() {
			lock.Unlock()
			delete(s.locks, id)
			delete(s.trains, id)
		}
	}
	s.mu.Unlock()

	s.pairsMu.Lock()
	for key := range s.pairs {
		members := strings.SplitN(key, "|", 2)
		if !activeIDs[members[0]] || !activeIDs[members[1]] {
			delete(s.pairs, key)
		}
	}
	s.pairsMu.Unlock()
}

// pairPreviousDistance returns the separation recorded at the last
// evaluation of the pair, if any.
func (s *trackingState) pairPreviousDistance(key string) (float64, bool) {
	s.pairsMu.Lock()
	defer s.pairsMu.Unlock()

	state := s.pairs[key]
	if state == nil || !state.Evaluated {
		return 0, false
	}
	return state.LastDistance, true
}
