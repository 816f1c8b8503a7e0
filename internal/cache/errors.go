package cache

import "errors"

// ErrCacheMiss is returned by Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache: miss")

var (
	ErrCacheUnavailable = errors.New("cache: redis unavailable")
	ErrInvalidValue     = errors.New("cache: cannot decode stored value")
)
