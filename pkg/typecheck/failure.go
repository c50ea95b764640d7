package typecheck

import "fmt"

// ValidationFailure is the single failure kind validation produces.
// Expected and Actual carry the printed titles of the expected shape
// and of the shape inferred from the offending value.
type ValidationFailure struct {
	Expected string
	Actual   string
}

// Error renders the failure text. Callers match on the exact format.
func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("Expected value of type `%s`, got `%s`", e.Expected, e.Actual)
}
