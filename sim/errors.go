package sim

import "fmt"

// ConfigurationError reports an unsupported or out-of-range input
// combination. It is always detected before any simulation work begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AllocationError reports a grid or material buffer whose size cannot be
// represented. SimulationData is never partially constructed.
type AllocationError struct {
	What   string
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate %s: %s", e.What, e.Reason)
}
