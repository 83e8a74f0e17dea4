package clusterapi

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the clustering service. Message is the
// service's own "error" field and is meant to be shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("clustering service: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("clustering service: status=%d message=%s", e.StatusCode, e.Message)
}

// TransportError indicates the service could not be reached.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates a response body that was not the expected JSON.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ServerMessage returns the service-reported message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
