package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
)

// Exit codes for different error scenarios
const (
	ExitSuccess          = 0   // Success
	ExitGeneralError     = 1   // General error (browser failure, no tokens extracted, I/O error)
	ExitInvalidArguments = 2   // Invalid arguments/usage (bad flag value, invalid config)
	ExitInterrupted      = 130 // Cancelled by the user (SIGINT)
)

// CancelledMessage is printed when the user interrupts the run
const CancelledMessage = "Operation cancelled by user."

// ExitError carries the exit code for a failed command
type ExitError struct {
	Code    int
	Message string // empty when the command already reported the problem
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("exit status %d", e.Code)
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WithCode wraps err with a specific exit code
func WithCode(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// Silent exits with code without printing anything further
func Silent(code int) *ExitError {
	return &ExitError{Code: code}
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneralError
}

// Report prints err to w and returns the exit code to use
func Report(w io.Writer, err error) int {
	code := ExitCode(err)
	switch {
	case code == ExitSuccess:
	case code == ExitInterrupted:
		fmt.Fprintf(w, "\n%s\n", CancelledMessage)
	default:
		var exitErr *ExitError
		if stderrors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Err == nil {
			break
		}
		fmt.Fprintf(w, "\nError: %v\n", err)
	}
	return code
}
