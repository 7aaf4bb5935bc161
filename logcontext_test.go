package pinpoint

import (
	"context"
	"testing"
)

func TestContextWithVars(t *testing.T) {
	t.Run("vars round-trip through the context", func(t *testing.T) {
		ctx := ContextWithVars(context.Background(), map[string]any{"request_id": "r-1"})

		vars, ok := VarsFromContext(ctx)
		if !ok {
			t.Fatalf("wanted ambient vars\ngot: none")
		}
		if vars["request_id"] != "r-1" {
			t.Fatalf("wanted r-1\ngot: %v", vars["request_id"])
		}
	})

	t.Run("absent store reads as not ok", func(t *testing.T) {
		_, ok := VarsFromContext(context.Background())
		if ok {
			t.Fatalf("wanted no ambient vars on a bare context")
		}
	})

	t.Run("child extends a snapshot without touching the parent", func(t *testing.T) {
		parent := ContextWithVars(context.Background(), map[string]any{"tenant": "acme"})
		child := ContextWithVars(parent, map[string]any{"span": "s-9"})

		parentVars, _ := VarsFromContext(parent)
		if _, exists := parentVars["span"]; exists {
			t.Fatalf("wanted child entry invisible to parent\ngot: %v", parentVars)
		}

		childVars, _ := VarsFromContext(child)
		if childVars["tenant"] != "acme" || childVars["span"] != "s-9" {
			t.Fatalf("wanted inherited plus own entries\ngot: %v", childVars)
		}
	})

	t.Run("siblings do not observe each other", func(t *testing.T) {
		parent := ContextWithVars(context.Background(), map[string]any{"tenant": "acme"})
		left := ContextWithVars(parent, map[string]any{"side": "left"})
		right := ContextWithVars(parent, map[string]any{"side": "right"})

		leftVars, _ := VarsFromContext(left)
		rightVars, _ := VarsFromContext(right)
		if leftVars["side"] != "left" || rightVars["side"] != "right" {
			t.Fatalf("wanted isolated sibling snapshots\ngot: left=%v right=%v", leftVars, rightVars)
		}
	})

	t.Run("later entries override inherited ones in the child only", func(t *testing.T) {
		parent := ContextWithVars(context.Background(), map[string]any{"stage": "outer"})
		child := ContextWithVars(parent, map[string]any{"stage": "inner"})

		childVars, _ := VarsFromContext(child)
		parentVars, _ := VarsFromContext(parent)
		if childVars["stage"] != "inner" || parentVars["stage"] != "outer" {
			t.Fatalf("wanted override scoped to child\ngot: child=%v parent=%v", childVars, parentVars)
		}
	})
}
