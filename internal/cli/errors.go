// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/gptchat-tui/internal/config"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitAPIError      = 6
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports invalid command usage.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return e.Message + "\nUsage: " + e.Usage
	}
	return e.Message
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrMissingArgument returns a UsageError for a missing argument.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{Message: "missing required argument: " + argName, Usage: usage}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var notFound *NotFoundError
	var validation config.ValidationError
	var validations config.ValidateErrors
	var transport *openai.TransportError
	var apiErr *openai.APIError
	var parseErr *openai.ParseError

	switch {
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &notFound):
		return ExitNotFoundError
	case errors.Is(err, openai.ErrNotConfigured), errors.Is(err, session.ErrMissingKey):
		return ExitAuthError
	case errors.As(err, &apiErr):
		if apiErr.Status == 401 || apiErr.Status == 403 {
			return ExitAuthError
		}
		return ExitAPIError
	case errors.As(err, &transport):
		if transport.Timeout() {
			return ExitTimeoutError
		}
		return ExitNetworkError
	case errors.As(err, &parseErr):
		return ExitAPIError
	case errors.As(err, &validation), errors.As(err, &validations):
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse("", err)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(resp)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), openai.UserMessage(err))
}
