package cache

import "errors"

var (
	// ErrConfig reports an invalid Options value passed to New.
	ErrConfig = errors.New("cache: invalid configuration")

	// ErrInvariant reports a broken internal invariant, e.g. a full shard
	// whose policy offers no eviction victim. It is raised via panic.
	ErrInvariant = errors.New("cache: internal invariant violated")

	// ErrNoLoader is returned by GetOrLoad when Options.Loader is nil.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrClosed is returned by GetOrLoad after Close.
	ErrClosed = errors.New("cache: closed")
)
