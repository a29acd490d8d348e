// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error variables for common client failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("OpenAI API key not configured")

	// ErrUnexpectedShape indicates a body did not match the family's success schema.
	ErrUnexpectedShape = errors.New("unexpected response shape")

	// ErrUnrecognizedBody indicates a body matched neither the success nor the error schema.
	ErrUnrecognizedBody = errors.New("unrecognized response body")

	// ErrResponseTooLarge indicates the response body hit MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// TransportError wraps a network failure. The message is the underlying
// error text so it can be surfaced verbatim.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Canceled reports whether the request was canceled by the caller.
func (e *TransportError) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}

// APIError is a semantic failure: the server answered with an error body.
type APIError struct {
	Status  int
	Message string
	Type    string
	Code    string
}

// Error implements the error interface. It returns the server message
// unchanged.
func (e *APIError) Error() string {
	return e.Message
}

// ParseError is returned when a body matched no known schema.
type ParseError struct {
	Status int
	Body   string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse response (HTTP %d): %v", e.Status, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Display returns the best text available for the user: the raw body when
// there is one, otherwise the parse failure.
func (e *ParseError) Display() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Error()
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPI reports whether err is a semantic API failure.
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// UserMessage returns the text to show for err. API errors show the
// server message, parse errors the raw body, anything else its Error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Display()
	}
	return err.Error()
}
