package genclient

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request could not be sent or the connection dropped.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError means the service answered with a failure status.
type ServiceError struct {
	Op     string
	Status int
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: service returned %d", e.Op, e.Status)
}

// ValidationError means a successful response was structurally wrong.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid response: %s", e.Op, e.Reason)
}

// IsStreamUnsupported reports whether err indicates that the streaming chat
// endpoint is not served, so callers can fall back to the plain endpoint.
func IsStreamUnsupported(err error) bool {
	var se *ServiceError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusNotFound || se.Status == http.StatusMethodNotAllowed
}

// Detail returns the most human-readable message available for err.
func Detail(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "could not reach the study service"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "the study service returned an unexpected response"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
