package animation

import "errors"

var (
	// ErrNotFound is returned when playing a name that was never registered.
	ErrNotFound = errors.New("animation not found")
	// ErrUnsupportedKind is returned when a definition's kind has no runner.
	ErrUnsupportedKind = errors.New("unsupported animation kind")
	// ErrDuplicateRegistration is returned by strict managers on re-registration.
	ErrDuplicateRegistration = errors.New("animation already registered")
	// ErrInvalidDefinition is returned for definitions missing required parts.
	ErrInvalidDefinition = errors.New("invalid animation definition")
)
