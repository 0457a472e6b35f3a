package lspeasy

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload reports an inbound message whose params could not be
	// decoded or lack a required field. Such notifications are dropped and
	// such requests are answered with an InvalidParams error.
	ErrMalformedPayload = errors.New("lspeasy: malformed payload")

	// ErrTransportSend reports that an outbound message could not be handed
	// to the transport.
	ErrTransportSend = errors.New("lspeasy: transport send failed")

	// ErrHandshake reports that the initialize exchange did not complete.
	ErrHandshake = errors.New("lspeasy: handshake failed")

	// ErrShutdown reports that the client broke the shutdown sequence.
	ErrShutdown = errors.New("lspeasy: shutdown sequence violated")

	// ErrAlreadyResponded is returned when a request token is used twice.
	ErrAlreadyResponded = errors.New("lspeasy: request already responded")
)

// PayloadError describes a malformed inbound payload.
type PayloadError struct {
	Method string
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %v", e.Method, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// Is makes every PayloadError match ErrMalformedPayload.
func (e *PayloadError) Is(target error) bool { return target == ErrMalformedPayload }
