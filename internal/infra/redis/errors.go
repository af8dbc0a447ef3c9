package redis

import "errors"

// ErrCacheMiss is returned by Cache.Get when the key is not cached.
var ErrCacheMiss = errors.New("cache miss")
