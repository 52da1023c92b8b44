package synthesis

import "errors"

var (
	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmptyResponse is returned when the generator produced only whitespace.
	ErrEmptyResponse = errors.New("generator returned an empty response")

	// ErrNoContent is returned for a merge group none of whose members has text.
	ErrNoContent = errors.New("no member of the group has text")
)
