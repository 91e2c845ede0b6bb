package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Request errors (REQ-001 to REQ-099)
	ErrCodeRequestInvalid  ErrorCode = "REQ-001"
	ErrCodeGoalRequired    ErrorCode = "REQ-002"
	ErrCodeDeadlineInvalid ErrorCode = "REQ-003"

	// Task record errors (TASK-001 to TASK-099)
	ErrCodeTaskInvalid   ErrorCode = "TASK-001"
	ErrCodeTaskDuplicate ErrorCode = "TASK-002"

	// Preference errors (PREF-001 to PREF-099)
	ErrCodePreferenceInvalid ErrorCode = "PREF-001"

	// Dependency graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeGraphCycle         ErrorCode = "GRAPH-001"
	ErrCodeGraphMissingDep    ErrorCode = "GRAPH-002"
	ErrCodeGraphOrderViolated ErrorCode = "GRAPH-003"

	// Task generation errors (GEN-001 to GEN-099)
	ErrCodeGenerationFailed ErrorCode = "GEN-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// Category returns the prefix of the code ("GRAPH", "TASK", ...).
func (c ErrorCode) Category() string {
	s := string(c)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}

// SmartplanError is an error with a stable code and recovery suggestions.
type SmartplanError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *SmartplanError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *SmartplanError) Unwrap() error {
	return e.Cause
}

// New creates a new SmartplanError
func New(code ErrorCode, message string) *SmartplanError {
	return &SmartplanError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new SmartplanError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *SmartplanError {
	return &SmartplanError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *SmartplanError) WithSuggestion(suggestion string) *SmartplanError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *SmartplanError) WithSuggestions(suggestions ...string) *SmartplanError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AtIndex prefixes the message with the position of the offending record.
func (e *SmartplanError) AtIndex(i int) *SmartplanError {
	e.Message = fmt.Sprintf("task at index %d: %s", i, e.Message)
	return e
}

// As finds the first SmartplanError in err's chain.
func As(err error) (*SmartplanError, bool) {
	var target *SmartplanError
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of the first SmartplanError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsStructural reports whether err stems from the shape of the dependency graph
// (cycle, dangling reference, or an ordering that violates dependencies).
func IsStructural(err error) bool {
	return CodeOf(err).Category() == "GRAPH"
}

// IsValidation reports whether err is a request, task record, or preference error.
func IsValidation(err error) bool {
	switch CodeOf(err).Category() {
	case "REQ", "TASK", "PREF":
		return true
	default:
		return false
	}
}

// Common error constructors for frequently used errors

// NewTaskInvalidError creates a malformed task record error
func NewTaskInvalidError(taskID string, details string) *SmartplanError {
	msg := fmt.Sprintf("invalid task: %s", details)
	if taskID != "" {
		msg = fmt.Sprintf("invalid task %q: %s", taskID, details)
	}
	return New(ErrCodeTaskInvalid, msg).
		WithSuggestion("Every task needs an id, a title and a non-negative est_hours").
		WithSuggestion("Run 'smartplan validate --in <file>' to check a task file")
}

// NewTaskDuplicateError creates a duplicate task id error
func NewTaskDuplicateError(taskID string, index int) *SmartplanError {
	return New(ErrCodeTaskDuplicate, fmt.Sprintf("duplicate task id %q at index %d", taskID, index)).
		WithSuggestion("Task ids must be unique within a plan")
}

// NewPreferenceInvalidError creates an invalid scheduling preference error
func NewPreferenceInvalidError(name string, value float64) *SmartplanError {
	return New(ErrCodePreferenceInvalid, fmt.Sprintf("invalid preference %s: %v", name, value)).
		WithSuggestion(fmt.Sprintf("Set %s to a positive number of hours", name)).
		WithSuggestion("Omit the preference to use the default of 4 hours per day")
}

// NewCycleError creates a dependency cycle error. path is one witness cycle,
// first and last element equal.
func NewCycleError(path []string) *SmartplanError {
	msg := "dependency cycle detected, scheduling cannot proceed"
	if len(path) > 0 {
		msg = fmt.Sprintf("dependency cycle detected, scheduling cannot proceed: %s", strings.Join(path, " -> "))
	}
	return New(ErrCodeGraphCycle, msg).
		WithSuggestion("Remove one of the dependencies along the cycle")
}

// NewMissingDependencyError creates a dangling dependency error
func NewMissingDependencyError(taskID, depID string) *SmartplanError {
	return New(ErrCodeGraphMissingDep, fmt.Sprintf("task %q depends on unknown task %q, scheduling cannot proceed", taskID, depID)).
		WithSuggestion("Dependencies must reference tasks in the same plan").
		WithSuggestion(fmt.Sprintf("Add a task with id %q or remove the dependency", depID))
}

// NewGenerationError creates a task generation failure
func NewGenerationError(generator string, cause error) *SmartplanError {
	return Wrap(ErrCodeGenerationFailed, fmt.Sprintf("task generation failed (%s)", generator), cause).
		WithSuggestion("Retry the request or supply tasks explicitly in the request body")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *SmartplanError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check smartplan.yaml or the value passed with --config")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *SmartplanError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *SmartplanError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
