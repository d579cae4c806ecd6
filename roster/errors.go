package roster

import "fmt"

// ValidationError reports a rejected member field. The store returns it
// before any write is attempted, so a failed mutation never leaves a
// partial document behind.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
