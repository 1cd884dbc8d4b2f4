package summary

import (
	"fmt"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

// TransientProviderError reports that the provider stayed overloaded for every attempt.
type TransientProviderError struct {
	Provider provider.ID
	Attempts int
	Err      error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("%s is overloaded: gave up after %d attempts: %v", e.Provider.CompanyName(), e.Attempts, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// ClientProviderError is a non-retryable request failure: bad credentials, exhausted
// balance, rate limiting, or a rejected request.
type ClientProviderError struct {
	Provider provider.ID
	Kind     provider.ErrorClass
	Err      error
}

func (e *ClientProviderError) Error() string {
	return fmt.Sprintf("%s rejected the request (%s): %v", e.Provider.CompanyName(), e.Kind, e.Err)
}

func (e *ClientProviderError) Unwrap() error { return e.Err }

// StructuredOutputValidationError means the provider answered, and billed for it, but the
// answer is not the expected JSON object. The raw text is saved at DumpPath.
type StructuredOutputValidationError struct {
	Model    string
	DumpPath string
	Usage    provider.Usage
	Err      error
}

func (e *StructuredOutputValidationError) Error() string {
	msg := fmt.Sprintf("%s returned invalid structured output: %v", e.Model, e.Err)
	if e.DumpPath != "" {
		msg += fmt.Sprintf(" (raw response saved to %s)", e.DumpPath)
	}
	return msg
}

func (e *StructuredOutputValidationError) Unwrap() error { return e.Err }

// UnexpectedError wraps any failure outside the provider's error taxonomy.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error while summarizing: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
