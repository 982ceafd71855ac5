package rtdf

import (
	"testing"
	"time"
)

func TestExpectedArrival(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	route := Route{
		PrimaryIdentifier: "route-1",
		StartTime:         &start,
		Checkpoints: []Checkpoint{
			{Location: NewLocation(0, 0), IntervalSeconds: 0},
			{Location: NewLocation(0.1, 0), IntervalSeconds: 600},
			{Location: NewLocation(0.2, 0), IntervalSeconds: 1200},
		},
	}

	expected, ok := route.ExpectedArrival(1)
	if !ok {
		t.Fatal("expected arrival for valid index")
	}
	if !expected.Equal(start.Add(10 * time.Minute)) {
		t.Errorf("unexpected arrival time %s", expected)
	}

	if _, ok := route.ExpectedArrival(3); ok {
		t.Error("expected no arrival for out of range index")
	}
	if _, ok := route.ExpectedArrival(-1); ok {
		t.Error("expected no arrival for negative index")
	}

	selfTimed := Route{
		PrimaryIdentifier: "route-2",
		Checkpoints:       route.Checkpoints,
	}
	if _, ok := selfTimed.ExpectedArrival(1); ok {
		t.Error("expected no arrival for self-timed route")
	}
}

func TestPolyline(t *testing.T) {
	route := Route{
		Checkpoints: []Checkpoint{
			{Location: NewLocation(0, 0)},
			{Location: NewLocation(1, 0)},
		},
	}

	polyline := route.Polyline()

	if len(polyline) != 2 {
		t.Fatalf("expected 2 points got %d", len(polyline))
	}
	if polyline[1].Longitude() != 1 {
		t.Errorf("polyline order does not follow checkpoint sequence")
	}
}
