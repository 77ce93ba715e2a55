package extract

import "fmt"

// ValidationError indicates bad or missing input: a missing filename, an
// oversize upload, or undecodable file content. It is reported before any
// generation work starts and never retried.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ParseError indicates that no readable main content could be isolated from
// a fetched page.
type ParseError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error for %s: %s", e.URL, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
