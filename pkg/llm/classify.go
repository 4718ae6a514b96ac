package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// ErrorReason categorizes why a backend call failed.
type ErrorReason string

const (
	// ReasonAuth indicates authentication failure (401, 403, invalid API key).
	ReasonAuth ErrorReason = "auth"

	// ReasonRateLimit indicates rate limiting (429).
	ReasonRateLimit ErrorReason = "rate_limit"

	// ReasonBilling indicates billing/quota issues.
	ReasonBilling ErrorReason = "billing"

	// ReasonNetwork indicates connectivity problems and timeouts.
	ReasonNetwork ErrorReason = "network"

	// ReasonServer indicates vendor-side errors (5xx).
	ReasonServer ErrorReason = "server"

	// ReasonBadResponse indicates a response that could not be parsed.
	ReasonBadResponse ErrorReason = "bad_response"

	// ReasonUnknown indicates an unclassified error.
	ReasonUnknown ErrorReason = "unknown"
)

// ErrorClassification contains error classification details.
type ErrorClassification struct {
	Reason    ErrorReason
	Retriable bool
	Message   string
}

// ClassifyError analyzes an error returned by a Client call.
// statusCode may be zero, in which case it is taken from err when possible.
func ClassifyError(err error, statusCode int) ErrorClassification {
	if err == nil {
		return ErrorClassification{Reason: ReasonUnknown, Message: "no error"}
	}
	if statusCode == 0 {
		statusCode = StatusCodeOf(err)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorClassification{Reason: ReasonAuth, Message: "authentication failed"}
	case http.StatusTooManyRequests:
		return ErrorClassification{Reason: ReasonRateLimit, Retriable: true, Message: "rate limit exceeded"}
	case http.StatusPaymentRequired, http.StatusUpgradeRequired:
		return ErrorClassification{Reason: ReasonBilling, Message: "billing or quota issue"}
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorClassification{Reason: ReasonServer, Retriable: true, Message: "service temporarily unavailable"}
	}

	if statusCode >= 500 && statusCode < 600 {
		return ErrorClassification{Reason: ReasonServer, Retriable: true, Message: "server error"}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, http.ErrHandlerTimeout) {
		return ErrorClassification{Reason: ReasonNetwork, Retriable: true, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return ErrorClassification{Reason: ReasonNetwork, Message: "request canceled"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassification{Reason: ReasonNetwork, Retriable: true, Message: "network error"}
	}

	errMsg := strings.ToLower(err.Error())

	if containsAny(errMsg, []string{"invalid api key", "invalid_api_key", "unauthorized", "forbidden", "authentication"}) {
		return ErrorClassification{Reason: ReasonAuth, Message: "authentication error"}
	}
	if containsAny(errMsg, []string{"rate limit", "rate_limit", "too many requests"}) {
		return ErrorClassification{Reason: ReasonRateLimit, Retriable: true, Message: "rate limit error"}
	}
	if containsAny(errMsg, []string{"quota", "billing", "payment", "insufficient", "credits"}) {
		return ErrorClassification{Reason: ReasonBilling, Message: "billing or quota error"}
	}
	if containsAny(errMsg, []string{"network", "connection", "timeout", "dial", "refused", "no such host"}) {
		return ErrorClassification{Reason: ReasonNetwork, Retriable: true, Message: "network error"}
	}
	if containsAny(errMsg, []string{"parsing response", "unmarshaling response", "converting response"}) {
		return ErrorClassification{Reason: ReasonBadResponse, Message: "malformed response"}
	}

	return ErrorClassification{Reason: ReasonUnknown, Message: err.Error()}
}

// containsAny checks if the string contains any of the substrings.
func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
