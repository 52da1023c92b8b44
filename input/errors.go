package input

import "errors"

var (
	// ErrEmptyInput is returned when the input holds no payload at all.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidBatch is returned when a batch fails schema validation.
	ErrInvalidBatch = errors.New("invalid document batch")

	// ErrInvalidURL is returned for lines that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL")
)
