package pinpoint

import "errors"

var (
	// ErrNoFetcher is returned by New when no fetch collaborator was
	// configured.
	ErrNoFetcher = errors.New("engine requires a configuration fetcher")
	// ErrNoSink is returned by New when no sink collaborator was
	// configured.
	ErrNoSink = errors.New("engine requires a sink")
	// ErrConfigTimeout marks a configuration fetch that lost the race
	// against the resolver's timer. It is only ever seen on the
	// diagnostic channel; it never reaches a caller.
	ErrConfigTimeout = errors.New("configuration fetch timed out")
	// ErrAlreadyInitialized is returned by Init when a process-wide
	// engine instance already exists.
	ErrAlreadyInitialized = errors.New("engine already initialized")
	// ErrNotInitialized is returned by Instance before Init succeeded.
	ErrNotInitialized = errors.New("engine not initialized")
)
