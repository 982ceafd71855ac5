package rtdf

import "math"

const earthRadiusMeters = 6371000.0

// Location is a GeoJSON-style point. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"-" groups:"basic" bson:"type"`
	Coordinates []float64 `json:"coordinates" groups:"basic" bson:"coordinates"`
}

func NewLocation(longitude float64, latitude float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l *Location) Longitude() float64 {
	return l.Coordinates[0]
}

func (l *Location) Latitude() float64 {
	return l.Coordinates[1]
}

// Distance returns the great-circle distance in metres between the two
// locations using the haversine formula.
func (l *Location) Distance(other *Location) float64 {
	lon1 := l.Coordinates[0] * math.Pi / 180
	lat1 := l.Coordinates[1] * math.Pi / 180
	lon2 := other.Coordinates[0] * math.Pi / 180
	lat2 := other.Coordinates[1] * math.Pi / 180

	dLon := lon2 - lon1
	dLat := lat2 - lat1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusMeters * c
}

// DistanceFromLine returns the distance in metres from the location to the
// line segment a-b. The perpendicular foot is found by planar projection in
// coordinate space (fine at route scale) and clamped to the segment
// endpoints, then measured with Distance.
// Shameless taken 'inspiration' from https://stackoverflow.com/a/6853926
func (l *Location) DistanceFromLine(a Location, b Location) float64 {
	A := l.Coordinates[0] - a.Coordinates[0]
	B := l.Coordinates[1] - a.Coordinates[1]
	C := b.Coordinates[0] - a.Coordinates[0]
	D := b.Coordinates[1] - a.Coordinates[1]

	dot := A*C + B*D
	lenSq := C*C + D*D

	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	var nearest Location
	if param < 0 {
		nearest = a
	} else if param > 1 {
		nearest = b
	} else {
		nearest = NewLocation(a.Coordinates[0]+param*C, a.Coordinates[1]+param*D)
	}

	return l.Distance(&nearest)
}

// DistanceFromPolyline returns the minimum distance in metres from the
// location to the ordered points and the index of the nearest segment.
// A single point degrades to plain distance with segment index 0; an empty
// polyline returns (NaN, -1).
func (l *Location) DistanceFromPolyline(points []Location) (float64, int) {
	if len(points) == 0 {
		return math.NaN(), -1
	}
	if len(points) == 1 {
		return l.Distance(&points[0]), 0
	}

	closestDistance := math.Inf(1)
	closestSegment := -1

	for i := 0; i < len(points)-1; i++ {
		distance := l.DistanceFromLine(points[i], points[i+1])

		if distance < closestDistance {
			closestDistance = distance
			closestSegment = i
		}
	}

	return closestDistance, closestSegment
}

// Midpoint returns the coordinate halfway between the two locations. Used as
// the reference location on pairwise alerts.
func (l *Location) Midpoint(other *Location) Location {
	return NewLocation(
		(l.Coordinates[0]+other.Coordinates[0])/2,
		(l.Coordinates[1]+other.Coordinates[1])/2,
	)
}
