package tokenstore

import "errors"

var (
	// ErrTokenNotFound indicates no live record exists for the id
	ErrTokenNotFound = errors.New("tokenstore: token not found")

	// ErrTokenExists indicates the id is already taken
	ErrTokenExists = errors.New("tokenstore: token already exists")

	// ErrTokenAlreadyUsed indicates the record was consumed before
	ErrTokenAlreadyUsed = errors.New("tokenstore: token already used")

	// ErrTokenExpired indicates the record is past its expiry
	ErrTokenExpired = errors.New("tokenstore: token expired")

	// ErrStoreUnavailable indicates the backend could not be reached
	ErrStoreUnavailable = errors.New("tokenstore: backend unavailable")
)
