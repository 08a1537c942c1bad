package auth

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyCredentials is a local validation failure; no network
	// call is ever attempted for it.
	ErrEmptyCredentials = errors.New("email and password are required")

	// ErrInvalidCredentials covers logical login failures: the
	// upstream answered with a well-formed payload that carries no
	// token.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUpstreamUnreachable covers transport failures: no response,
	// timeout, or an unparseable body.
	ErrUpstreamUnreachable = errors.New("warehouse API unreachable")
)

type FieldError struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldValidationError carries per-field messages from the upstream.
// Its Error string joins the field messages for direct display.
type FieldValidationError struct {
	Fields []FieldError
}

func (e *FieldValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Value != "" {
			messages = append(messages, f.Value)
		}
	}
	if len(messages) == 0 {
		return "validation failed"
	}
	return strings.Join(messages, ", ")
}

// ServerMessageError carries a non-field message supplied by the
// upstream alongside a rejected login.
type ServerMessageError struct {
	Message string
}

func (e *ServerMessageError) Error() string { return e.Message }

// IsServerRejection reports whether the upstream explicitly rejected
// the attempt. Callers clear any pre-existing, possibly stale
// credentials on these paths.
func IsServerRejection(err error) bool {
	var fieldErr *FieldValidationError
	var msgErr *ServerMessageError
	return errors.Is(err, ErrInvalidCredentials) || errors.As(err, &fieldErr) || errors.As(err, &msgErr)
}
