package pinpoint

import (
	"context"
	"log"
	"time"
)

// Fetcher is the configuration fetch collaborator. It returns the raw
// configuration mapping for a call key, nil when no configuration
// exists, or an error. Implementations must honor the context; the
// transport behind the fetch (HTTP, database, file) is the
// implementation's concern.
type Fetcher func(ctx context.Context, key string) (map[string]any, error)

// DefaultFetchTimeout bounds how long a call waits for its
// configuration before being treated as unconfigured.
const DefaultFetchTimeout = 2000 * time.Millisecond

// resolver races the fetch for a key against a timer. It owns no state
// beyond the fetch function, the timeout, and the diagnostic logger it
// was constructed with; configurations are never cached across calls.
type resolver struct {
	fetch   Fetcher
	timeout time.Duration
	diag    *log.Logger
}

type fetchResult struct {
	raw map[string]any
	err error
}

// resolve fetches the configuration for a key with a bounded wait.
// Whichever of {fetch settles, timer fires, caller cancels} happens
// first determines the outcome; the loser of the race is abandoned and
// its eventual result discarded. Every failure shape collapses to a nil
// config: the call is aborted softly, nothing propagates.
func (resolver *resolver) resolve(ctx context.Context, key string) map[string]any {
	// Buffered so a late fetch can deposit its result and exit instead
	// of leaking a blocked goroutine.
	results := make(chan fetchResult, 1)

	go func() {
		raw, err := resolver.fetch(ctx, key)
		results <- fetchResult{raw: raw, err: err}
	}()

	timer := time.NewTimer(resolver.timeout)
	defer timer.Stop()

	select {
	case result := <-results:
		if result.err != nil {
			resolver.diag.Printf("[*] fetching config for key %q : %v", key, result.err)
			return nil
		}
		return result.raw
	case <-timer.C:
		resolver.diag.Printf("[*] fetching config for key %q : %v", key, ErrConfigTimeout)
		return nil
	case <-ctx.Done():
		resolver.diag.Printf("[*] fetching config for key %q : %v", key, ctx.Err())
		return nil
	}
}
