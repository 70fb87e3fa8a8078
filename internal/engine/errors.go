package engine

import (
	"errors"

	"github.com/BuzzLyutic/task-sync/internal/client"
)

// Messages shown in the error slot when the remote store gave no reason.
const (
	MsgFetchFailed    = "Could not connect to the server."
	MsgMutationFailed = "An unexpected error occurred."
	MsgTaskNotFound   = "Task not found."
)

var (
	ErrValidation   = errors.New("validation error")
	ErrTaskNotFound = errors.New("task not found")
	ErrClosed       = errors.New("engine closed")
)

// ValidationError is a client-side rejection; it never reaches the transport.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// messageFor picks the human readable text for the error slot.
func messageFor(err error, generic string) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrTaskNotFound):
		return MsgTaskNotFound
	}
	if msg, ok := client.RemoteMessage(err); ok {
		return msg
	}
	return generic
}
