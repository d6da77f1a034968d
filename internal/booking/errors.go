package booking

import "fmt"

// ConfigurationError reports a missing or invalid required configuration
// value. It is surfaced before any network call is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// NetworkError reports a transport failure or an out-of-tolerance HTTP status
// during one of the session operations. It names the failing operation but
// never carries request or response bodies.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NoEligibleSlotError reports that no candidate slot had a parseable hour
// within the fallback window of any preference.
type NoEligibleSlotError struct {
	Considered int
}

func (e *NoEligibleSlotError) Error() string {
	return fmt.Sprintf("no eligible slot among %d candidate(s)", e.Considered)
}
