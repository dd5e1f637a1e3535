package domain

import "errors"

var (
	// ErrValidation marks bad input from a command or HTTP caller.
	ErrValidation = errors.New("validation failed")

	// ErrDecode marks a persisted record that cannot be decoded.
	ErrDecode = errors.New("invalid record")

	// ErrUnknownWorld marks a world reference that does not resolve.
	ErrUnknownWorld = errors.New("unknown world")

	// ErrIO marks a persistent store failure.
	ErrIO = errors.New("store i/o failure")

	// ErrNotLoaded is returned when toggling an endpoint with no attached player.
	ErrNotLoaded = errors.New("endpoint is not loaded")
)

// ValidationError carries a message meant for the player or HTTP caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a ValidationError with msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
