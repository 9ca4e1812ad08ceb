package models

import (
	"fmt"
	"math"
)

// Position is a latitude/longitude pair obtained by the client
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationErrorKind classifies why a position could not be obtained
type LocationErrorKind int

const (
	LocationPermissionDenied LocationErrorKind = iota + 1
	LocationPositionUnavailable
	LocationTimeout
)

// LocationError reports a failed position request
type LocationError struct {
	Kind LocationErrorKind
}

func (e *LocationError) Error() string {
	switch e.Kind {
	case LocationPermissionDenied:
		return "location permission denied"
	case LocationTimeout:
		return "location request timed out"
	default:
		return "location unavailable"
	}
}

// Is matches location errors by kind
func (e *LocationError) Is(target error) bool {
	t, ok := target.(*LocationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrLocationPermissionDenied = &LocationError{Kind: LocationPermissionDenied}
	ErrPositionUnavailable      = &LocationError{Kind: LocationPositionUnavailable}
	ErrLocationTimeout          = &LocationError{Kind: LocationTimeout}
)

// ParseLocationError maps the error codes reported by clients
func ParseLocationError(code string) error {
	switch code {
	case "permission_denied":
		return ErrLocationPermissionDenied
	case "position_unavailable":
		return ErrPositionUnavailable
	case "timeout":
		return ErrLocationTimeout
	case "":
		return nil
	default:
		return fmt.Errorf("%w: unknown code %q", ErrPositionUnavailable, code)
	}
}

// Validate rejects coordinates outside the WGS84 ranges
func (p Position) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		p.Latitude < -90 || p.Latitude > 90 ||
		p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrPositionUnavailable)
	}
	return nil
}
