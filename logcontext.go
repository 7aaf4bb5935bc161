package pinpoint

import "context"

type contextKey string

// ambientVarsKey carries the ambient per-task variable snapshot
// (map[string]any). ContextWithVars and VarsFromContext are the only
// accessors; the engine only ever reads it.
const ambientVarsKey contextKey = "AmbientVars"

// ContextWithVars returns a new context carrying the given variables as
// ambient per-task state. The parent's entries are inherited into a
// fresh snapshot and never mutated, so a child task can extend its own
// view without the change becoming visible to concurrent siblings or
// the parent.
func ContextWithVars(ctx context.Context, vars map[string]any) context.Context {
	existing, _ := VarsFromContext(ctx)
	snapshot := make(map[string]any, len(existing)+len(vars))
	for name, value := range existing {
		snapshot[name] = value
	}
	for name, value := range vars {
		snapshot[name] = value
	}
	return context.WithValue(ctx, ambientVarsKey, snapshot)
}

// VarsFromContext returns the ambient variable snapshot from the
// context if it exists. Callers must treat the returned map as
// read-only; ContextWithVars is the only way to extend it.
func VarsFromContext(ctx context.Context) (map[string]any, bool) {
	vars, ok := ctx.Value(ambientVarsKey).(map[string]any)
	return vars, ok
}
