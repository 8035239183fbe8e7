package analysis

import "errors"

// DefaultErrorMessage is shown when the service does not supply an error
// message of its own.
const DefaultErrorMessage = "Failed to analyze receipt"

// ServiceError is an error response from the analysis service.
type ServiceError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return e.Message
}

// ErrorMessage extracts the user-facing message from an analysis failure.
// Service errors carry the message from the response body; anything else
// (transport failures, unreadable bodies) falls back to the default.
func ErrorMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return DefaultErrorMessage
}
