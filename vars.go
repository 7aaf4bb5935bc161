package pinpoint

import "encoding/json"

// Undefined is the sentinel value for a variable that exists by name
// but was never given a value, e.g. one injected by a scope-capture
// collaborator for a declared-but-unset local. It serializes to the
// literal text "undefined", where nil serializes to "null".
type Undefined struct{}

// Unserializable is the fixed replacement for a value that cannot be
// rendered. A serialization failure never aborts the surrounding call.
const Unserializable = "<unserializable>"

// Serialize renders a variable value for inclusion in a log line.
// Strings pass through unchanged; nil renders as "null"; the Undefined
// sentinel renders as "undefined"; everything else is rendered as
// canonical JSON.
func Serialize(value any) string {
	if value == nil {
		return "null"
	}
	switch typed := value.(type) {
	case Undefined:
		return "undefined"
	case string:
		return typed
	}
	data, err := json.Marshal(value)
	if err != nil {
		return Unserializable
	}
	return string(data)
}

// MergeVars combines the caller-supplied local variables with the
// ambient per-task variables into a single fresh lookup table. On a
// name collision the local value always wins; ambient entries only fill
// gaps. Neither input map is mutated.
func MergeVars(localVars, ambientVars map[string]any) map[string]any {
	merged := make(map[string]any, len(localVars)+len(ambientVars))
	for name, value := range ambientVars {
		merged[name] = value
	}
	for name, value := range localVars {
		merged[name] = value
	}
	return merged
}

// FilteredVar is one requested variable that was present in the merged
// context, with its value already serialized.
type FilteredVar struct {
	Name  string
	Value string
}

// FilterVars selects the requested names that are present in the merged
// context, preserving request order. Duplicate names collapse onto
// their first position; names missing from the context are silently
// omitted.
func FilterVars(names []string, vars map[string]any) []FilteredVar {
	seen := make(map[string]bool, len(names))
	filtered := make([]FilteredVar, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		value, ok := vars[name]
		if !ok {
			continue
		}
		filtered = append(filtered, FilteredVar{Name: name, Value: Serialize(value)})
	}
	return filtered
}
