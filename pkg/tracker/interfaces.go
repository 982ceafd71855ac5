package tracker

import (
	"context"
	"time"

	"github.com/railwatch/railwatch/pkg/rtdf"
)

// TrainStore is the vehicle lookup/update collaborator. Lookups return
// (nil, nil) when no train matches the identifier.
type TrainStore interface {
	Train(ctx context.Context, id string) (*rtdf.Train, error)
	ActiveTrains(ctx context.Context) ([]*rtdf.Train, error)
	UpdateTrainStatus(ctx context.Context, id string, status rtdf.TrainStatus) error
	UpdateTrainLocation(ctx context.Context, id string, location *rtdf.Location, reportedAt time.Time) error
}

// RouteStore is the route lookup collaborator. Returns (nil, nil) when no
// route matches the identifier.
type RouteStore interface {
	Route(ctx context.Context, id string) (*rtdf.Route, error)
}

// AlertStore accepts alert records for persistence and delivery. Retry on
// transient failure is the store's responsibility, not the caller's.
type AlertStore interface {
	Emit(ctx context.Context, alerts []rtdf.Alert) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
