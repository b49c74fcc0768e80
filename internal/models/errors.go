package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameters is returned when a nearest query lacks latitude or longitude.
	ErrMissingParameters = errors.New("missing latitude or longitude")
	// ErrInvalidParameters is returned when latitude or longitude is not a numeral.
	ErrInvalidParameters = errors.New("invalid latitude or longitude")
	// ErrInvalidDistance is returned when the maximum distance is not a non-negative integer.
	ErrInvalidDistance = errors.New("invalid maximum distance")
	// ErrInvalidReferenceSystem is returned for an SRID the service cannot resolve.
	ErrInvalidReferenceSystem = errors.New("invalid SRID")
	// ErrOutOfRangeCoordinate is returned when latitude or longitude fall outside their bounds.
	ErrOutOfRangeCoordinate = errors.New("coordinate out of range")
	// ErrDuplicateGeometry is returned when another place already has the same geometry.
	ErrDuplicateGeometry = errors.New("a place with the same coordinates already exists")
	// ErrNotFound is returned when a place does not exist.
	ErrNotFound = errors.New("place not found")
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
