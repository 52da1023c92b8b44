package extract

import "errors"

var (
	// ErrUnexpectedStatus is returned when the server answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNoContent is returned when a page yields no usable text.
	ErrNoContent = errors.New("no extractable content")
)
