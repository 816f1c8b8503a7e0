package token

import "errors"

var (
	// ErrTokenGeneration indicates the random source failed while building an id
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrMalformedRecord indicates a stored value could not be decoded
	ErrMalformedRecord = errors.New("malformed token record")
)
