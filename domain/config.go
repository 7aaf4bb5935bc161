package domain

// LogConfig is the per-call-site configuration that drives a single log
// decision. It is fetched fresh for every call; the engine never caches
// it across calls.
type LogConfig struct {
	VariablesToLog []string // Names of in-scope variables to include in the line, in order.
	SamplingRate   float64  // Probability in [0,1] that a given call is emitted.
	PrefixMessage  string   // Optional prefix prepended to the call's message.
	CustomCode     string   // Optional Lua expression to run in the sandbox. Empty means none.
}

// ParseConfig converts a raw configuration mapping, as returned by a
// fetch collaborator, into a LogConfig. The second return value is false
// when the mapping is malformed: a config lacking a numeric samplingRate
// or a sequence-typed variablesToLog is treated as absent, which is
// distinct from an explicit nil ("no config") response.
func ParseConfig(raw map[string]any) (*LogConfig, bool) {
	if raw == nil {
		return nil, false
	}

	rate, ok := toFloat(raw["samplingRate"])
	if !ok {
		return nil, false
	}

	names, ok := toStringSlice(raw["variablesToLog"])
	if !ok {
		return nil, false
	}

	config := &LogConfig{
		VariablesToLog: names,
		SamplingRate:   rate,
	}

	if prefix, ok := raw["prefixMessage"].(string); ok {
		config.PrefixMessage = prefix
	}
	if code, ok := raw["customCode"].(string); ok {
		config.CustomCode = code
	}

	return config, true
}

// toFloat accepts the numeric shapes a fetch collaborator may hand us.
// JSON decoding yields float64; repositories and in-process fetchers may
// hand over native ints.
func toFloat(value any) (float64, bool) {
	switch number := value.(type) {
	case float64:
		return number, true
	case float32:
		return float64(number), true
	case int:
		return float64(number), true
	case int64:
		return float64(number), true
	}
	return 0, false
}

// toStringSlice accepts either a decoded JSON array ([]any of strings)
// or a native []string. Non-string elements make the config malformed.
func toStringSlice(value any) ([]string, bool) {
	switch sequence := value.(type) {
	case []string:
		return sequence, true
	case []any:
		names := make([]string, 0, len(sequence))
		for _, element := range sequence {
			name, ok := element.(string)
			if !ok {
				return nil, false
			}
			names = append(names, name)
		}
		return names, true
	}
	return nil, false
}

// ConfigRepository defines the interface for managing persisted log
// point configurations keyed by call key.
type ConfigRepository interface {
	// GetConfig returns the raw configuration mapping for a call key,
	// or nil (with a nil error) when no configuration exists.
	GetConfig(key string) (map[string]any, error)
	// SetConfig creates or replaces the configuration for a call key.
	SetConfig(key string, config map[string]any) error
	// DeleteConfig removes the configuration for a call key.
	DeleteConfig(key string) error
	// ListKeys returns every call key that has a stored configuration.
	ListKeys() ([]string, error)
}
