package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// RejectedError is returned when the server refused a request and said why.
// Message is the server's text, meant to be shown to the operator as is.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected: %s", e.Message)
}
