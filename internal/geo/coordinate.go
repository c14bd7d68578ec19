package geo

import "fmt"

// Coordinate is an immutable latitude/longitude pair identifying a query
// location. Latitude and longitude are in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ValidationError reports a coordinate outside the valid geographic range.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// NewCoordinate validates the pair and returns a Coordinate.
// Latitude must lie in [-90, 90] and longitude in [-180, 180].
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, &ValidationError{Field: "latitude", Value: lat, Min: -90, Max: 90}
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, &ValidationError{Field: "longitude", Value: lon, Min: -180, Max: 180}
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// String formats the coordinate as "(lat, lon)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lon)
}
