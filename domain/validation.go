package domain

import "fmt"

// Violation describes a single construct that the static safety analyzer
// rejected, with the 1-based line number inside the expression text
// where it was found.
type Violation struct {
	Message string
	Line    int
}

// String renders the violation in "line N: message" form.
func (violation Violation) String() string {
	return fmt.Sprintf("line %d: %s", violation.Line, violation.Message)
}

// ValidationResult is the outcome of running the static safety analyzer
// over an expression. Valid is true iff zero violations accumulated;
// Violations preserve discovery order.
type ValidationResult struct {
	Valid      bool
	Violations []Violation
}
