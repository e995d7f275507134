package stowage

import "fmt"

// ValidationError reports a cargo or catalog record that violates an
// input invariant. It names the offending record and field so callers
// can surface the problem to the end user.
type ValidationError struct {
	ItemID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %q: %s %s", e.ItemID, e.Field, e.Reason)
}

// ConfigurationError reports a catalog that cannot support planning at
// all, such as a missing standard container type. It aborts the whole
// plan call.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}
