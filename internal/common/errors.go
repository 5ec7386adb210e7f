package common

import "errors"

// Callers should match these with errors.Is.
var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrUnknownOID = errors.New("unknown oid")

	// Service-level errors.
	ErrInternal = errors.New("internal error")
	ErrReadOnly = errors.New("table is read only")

	// Operator token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
