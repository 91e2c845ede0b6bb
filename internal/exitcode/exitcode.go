// Package exitcode maps errors to process exit codes.
package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// StructuralError indicates the dependency graph cannot be scheduled
	StructuralError = 3

	// ValidationError indicates invalid task records, requests or preferences
	ValidationError = 4

	// ConfigError indicates an invalid configuration file
	ConfigError = 5

	// IOError indicates a task or plan file could not be read or written
	IOError = 6

	// GenerationError indicates the task generator failed
	GenerationError = 7

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode returns the exit code for err. Coded errors map by
// category; other errors fall back to message heuristics.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	switch errors.CodeOf(err).Category() {
	case "GRAPH":
		return StructuralError
	case "REQ", "TASK", "PREF":
		return ValidationError
	case "CONFIG":
		return ConfigError
	case "IO":
		return IOError
	case "GEN":
		return GenerationError
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case StructuralError:
		return "Dependency graph cannot be scheduled"
	case ValidationError:
		return "Invalid input"
	case ConfigError:
		return "Configuration error"
	case IOError:
		return "File read or write error"
	case GenerationError:
		return "Task generation failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
