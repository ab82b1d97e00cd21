package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gitrdm/slotfd/internal/puzzle"
	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// Exit codes for CLI commands.
const (
	ExitSuccess          = 0 // Successful execution
	ExitFailure          = 1 // Input data admits no answer (malformed, infeasible, unknown item, search limit)
	ExitCommandError     = 2 // Command error (bad flags, unreadable or unparsable input)
	ExitUnderconstrained = 3 // More slots than requested items, more data is needed
)

// Error codes, stable across releases.
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeMalformedGroup   = "E002" // Group cannot describe a bijection
	ErrCodeInfeasible       = "E003" // No injective assignment exists
	ErrCodeUnknownItem      = "E004" // Wanted item has no domain
	ErrCodeUnderconstrained = "E005" // Answer has more slots than items
	ErrCodeSearchLimit      = "E006" // Step budget or timeout reached
	ErrCodeInput            = "E007" // Input could not be read or parsed
	ErrCodeConfig           = "E008" // Invalid configuration
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// an ExitError come from flag parsing and count as command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// classify maps a pipeline error to its error code and exit code.
func classify(err error) (string, int) {
	var parseErr *puzzle.ParseError
	switch {
	case errors.Is(err, slotfd.ErrMalformedGroup):
		return ErrCodeMalformedGroup, ExitFailure
	case errors.Is(err, slotfd.ErrInfeasible):
		return ErrCodeInfeasible, ExitFailure
	case errors.Is(err, slotfd.ErrUnknownItem):
		return ErrCodeUnknownItem, ExitFailure
	case errors.Is(err, slotfd.ErrUnderconstrained):
		return ErrCodeUnderconstrained, ExitUnderconstrained
	case errors.Is(err, slotfd.ErrSearchLimit):
		return ErrCodeSearchLimit, ExitFailure
	case errors.As(err, &parseErr):
		return ErrCodeInput, ExitCommandError
	}
	return ErrCodeGeneric, ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Source string      `json:"source,omitempty"` // input file the response belongs to
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	return f.SuccessFor("", data)
}

// SuccessFor is Success for one of several inputs. In text mode a non-empty
// source is printed as a header line.
func (f *OutputFormatter) SuccessFor(source string, data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Source: source,
			Data:   data,
		})
	}

	if source != "" {
		fmt.Fprintf(f.Writer, "== %s ==\n", source)
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	return f.ErrorFor("", code, message, details)
}

// ErrorFor is Error for one of several inputs.
func (f *OutputFormatter) ErrorFor(source, code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Source: source,
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	if source != "" {
		fmt.Fprintf(f.Writer, "== %s ==\n", source)
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
