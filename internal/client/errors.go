package client

import (
	"errors"
	"fmt"
)

// NetworkError means no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx response. Message is empty when the body did not
// carry an {"error": "..."} payload.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: remote status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: remote status %d: %s", e.Op, e.StatusCode, e.Message)
}

// RemoteMessage returns the server supplied message carried by err, if any.
func RemoteMessage(err error) (string, bool) {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message, true
	}
	return "", false
}
