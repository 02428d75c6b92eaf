package model

import "fmt"

// ParseError means the raw application text is malformed beyond recovery:
// no usable year token, or no residual vehicle phrase
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

// MappingError means the vehicle phrase matched zero configured patterns
type MappingError struct {
	Phrase string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("no mapping matches vehicle phrase %q", e.Phrase)
}

// ValidationFault is an internal validator failure, distinct from an
// Error-status ValidationResult (which is data, not a fault)
type ValidationFault struct {
	Op    string
	Cause error
}

func (e *ValidationFault) Error() string {
	return fmt.Sprintf("validation fault in %s: %v", e.Op, e.Cause)
}

func (e *ValidationFault) Unwrap() error { return e.Cause }

// DatabaseError wraps reference or primary store I/O failures, including
// query timeouts against the legacy reference connections
type DatabaseError struct {
	Op    string
	Cause error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error in %s: %v", e.Op, e.Cause)
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

// ConfigurationError means the engine was used before being configured, or a
// required configuration source is missing or unreadable
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}
