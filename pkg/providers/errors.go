package providers

import (
	"fmt"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/llm"
)

// ConfigurationError reports a missing credential or invalid setting.
type ConfigurationError struct {
	Provider string
	Key      string
	Message  string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Key, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// UnknownProviderError is returned by the registry for unregistered names.
type UnknownProviderError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q. Available providers: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// UnavailableError reports a backend capability that is missing at
// construction time.
type UnavailableError struct {
	Provider   string
	Capability string
	Reason     string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %s: %s", e.Provider, e.Capability, e.Reason)
}

// BackendRequestError wraps a failed backend call.
type BackendRequestError struct {
	Provider   string
	Reason     llm.ErrorReason
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *BackendRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (%s, status %d): %v", e.Provider, e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed (%s): %v", e.Provider, e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendRequestError) Unwrap() error {
	return e.Err
}

// NewBackendRequestError classifies err for provider.
func NewBackendRequestError(provider string, err error) *BackendRequestError {
	status := llm.StatusCodeOf(err)
	class := llm.ClassifyError(err, status)
	return &BackendRequestError{
		Provider:   provider,
		Reason:     class.Reason,
		StatusCode: status,
		Err:        err,
	}
}

// Attempt records why one candidate provider was rejected.
type Attempt struct {
	Provider string
	Reason   string
}

// FatalOrchestrationError is returned when every candidate provider failed
// construction or validation.
type FatalOrchestrationError struct {
	Attempts []Attempt
}

// Error implements the error interface.
func (e *FatalOrchestrationError) Error() string {
	var sb strings.Builder
	sb.WriteString("all providers failed")
	for _, a := range e.Attempts {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", a.Provider, a.Reason))
	}
	return sb.String()
}
