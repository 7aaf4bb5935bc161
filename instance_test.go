package pinpoint

import (
	"context"
	"errors"
	"testing"
)

func TestInstanceLifecycle(t *testing.T) {
	// The process-wide slot is shared; make sure each run starts clean.
	Teardown()
	t.Cleanup(Teardown)

	t.Run("instance before init", func(t *testing.T) {
		_, err := Instance()
		if !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("wanted: %v\ngot: %v", ErrNotInitialized, err)
		}
	})

	t.Run("init then instance", func(t *testing.T) {
		var lines []string
		engine, err := Init(
			WithFetcher(staticFetcher(nil)),
			WithSink(collectingSink(&lines)),
		)
		if err != nil {
			t.Fatalf("initializing : %v", err)
		}

		current, err := Instance()
		if err != nil {
			t.Fatalf("getting instance : %v", err)
		}
		if current != engine {
			t.Fatalf("wanted the initialized engine back\ngot: a different one")
		}
	})

	t.Run("double init rejected", func(t *testing.T) {
		var lines []string
		_, err := Init(
			WithFetcher(staticFetcher(nil)),
			WithSink(collectingSink(&lines)),
		)
		if !errors.Is(err, ErrAlreadyInitialized) {
			t.Fatalf("wanted: %v\ngot: %v", ErrAlreadyInitialized, err)
		}
	})

	t.Run("teardown frees the slot", func(t *testing.T) {
		Teardown()

		var lines []string
		engine, err := Init(
			WithFetcher(staticFetcher(nil)),
			WithSink(collectingSink(&lines)),
		)
		if err != nil {
			t.Fatalf("re-initializing after teardown : %v", err)
		}
		if outcome := engine.Log(context.Background(), "K", "m", nil); outcome != OutcomeAborted {
			t.Fatalf("wanted: %v\ngot: %v", OutcomeAborted, outcome)
		}
	})

	t.Run("failed init leaves the slot empty", func(t *testing.T) {
		Teardown()

		_, err := Init()
		if err == nil {
			t.Fatalf("wanted an error for missing collaborators\ngot: nil")
		}
		if _, err := Instance(); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("wanted: %v\ngot: %v", ErrNotInitialized, err)
		}
	})
}
