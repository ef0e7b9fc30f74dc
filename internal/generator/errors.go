package generator

import "fmt"

// NoMatchingContactError reports a customer with no related contacts under the
// strict contact policy.
type NoMatchingContactError struct {
	Customer string
}

func (e *NoMatchingContactError) Error() string {
	return fmt.Sprintf("generator: no contacts belong to customer %q", e.Customer)
}

// InvalidCountError reports a batch size outside [1, Max].
type InvalidCountError struct {
	Count int
	Max   int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("generator: ticket count must be between 1 and %d, got %d", e.Max, e.Count)
}

// ConfigError wraps a generator configuration the engine refuses to run with.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "generator: invalid configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
