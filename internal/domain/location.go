package domain

import "errors"

// ErrInvalidCoordinates is returned for latitude or longitude out of range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Location is a point on the earth in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that both coordinates are in range.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return NewValidationError("latitude", "must be between -90 and 90", ErrInvalidCoordinates)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return NewValidationError("longitude", "must be between -180 and 180", ErrInvalidCoordinates)
	}
	return nil
}
