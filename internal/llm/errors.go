package llm

import "fmt"

// ProviderError represents a failure of the generation backend: transport
// errors, rate limiting, or a malformed provider response. It terminates the
// current invocation only.
type ProviderError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
