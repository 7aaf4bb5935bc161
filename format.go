package pinpoint

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotApplicable is the custom-output sentinel used when custom code was
// attempted but produced no value.
const NotApplicable = "N/A"

// FormatLine assembles the final log line. It is a pure function of its
// inputs: identical inputs always produce an identical string. The
// variable section appears iff at least one variable was filtered in;
// the custom-output section appears iff custom code execution was
// attempted (customOutput non-nil), including when the output is an
// error or violation diagnostic.
func FormatLine(key, message string, vars []FilteredVar, customOutput *string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Unique Key: [%s] - Message: [%s]", key, message)

	if len(vars) > 0 {
		builder.WriteString(" - Variable Values: ")
		builder.WriteString(encodeVars(vars))
	}

	if customOutput != nil {
		fmt.Fprintf(&builder, " - Output of Custom Logging Code: [%s]", *customOutput)
	}

	return builder.String()
}

// encodeVars renders the filtered variables as a JSON object that
// preserves filter order, which map-based marshalling would not.
func encodeVars(vars []FilteredVar) string {
	var builder strings.Builder
	builder.WriteByte('{')
	for index, variable := range vars {
		if index > 0 {
			builder.WriteByte(',')
		}
		name, _ := json.Marshal(variable.Name)
		value, _ := json.Marshal(variable.Value)
		builder.Write(name)
		builder.WriteByte(':')
		builder.Write(value)
	}
	builder.WriteByte('}')
	return builder.String()
}
