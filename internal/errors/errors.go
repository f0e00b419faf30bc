// Package errors provides structured CLI error types for kzk.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // General error
	ExitAuth    = 2  // Authentication error
	ExitNetwork = 3  // Network/API error
	ExitConfig  = 4  // Configuration error
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// APIUnreachable returns an error when the Kaizoku server cannot be reached
// or answers with an unexpected status.
func APIUnreachable(apiURL string, cause error) *CLIError {
	hint := "Check that the Kaizoku server is running and that api.url is correct ('kzk config get api.url')"
	if cause != nil && containsAny(cause.Error(), "status 401", "status 403") {
		hint = "The server rejected the request. Run 'kzk auth login' to store an access token"
	}

	return &CLIError{
		Message: fmt.Sprintf("Cannot reach Kaizoku at %s", apiURL),
		Hint:    hint,
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// AuthFailed returns an error for a token the server rejected.
func AuthFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Authentication failed",
		Hint:    "Check your access token or run 'kzk auth login'",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// CredentialsInvalid returns an error for invalid stored credentials.
func CredentialsInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Credentials invalid",
		Hint:    "Run 'kzk auth login' to store a new token",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// TokenEmpty returns an error when the access token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "Access token cannot be empty",
		Hint:    "Enter a valid token or set the KZK_API_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your kzk config directory or run 'kzk paths'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// NotInteractive returns an error when a command needs a terminal.
func NotInteractive(command string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("'%s' needs an interactive terminal", command),
		Hint:    "Run 'kzk status' for a one-shot snapshot instead",
		Code:    ExitUsage,
	}
}

// LibraryNotReady returns an error when the server has no library yet.
func LibraryNotReady(apiURL string) *CLIError {
	return &CLIError{
		Message: "Kaizoku library is not set up yet",
		Hint:    fmt.Sprintf("Finish the library setup at %s, then retry", apiURL),
		Code:    ExitConfig,
	}
}

// InvalidInterval returns an error for a non-positive polling interval flag.
func InvalidInterval(flag string, value string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid value for --%s: %s", flag, value),
		Hint:    "Use a positive duration such as 5s or 1m",
		Code:    ExitUsage,
	}
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}

	return false
}
