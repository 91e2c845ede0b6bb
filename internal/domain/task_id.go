package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// TaskID represents a unique identifier for a task within one plan.
// This is a value object that enforces valid ID formats.
type TaskID string

// maxTaskIDLength is the maximum allowed length for a task ID
const maxTaskIDLength = 100

// NewTaskID creates a new TaskID value object with validation
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the task ID is valid. IDs come from external generators,
// so any printable text without whitespace is accepted.
func (t TaskID) Validate() error {
	s := string(t)

	if s == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	if len(s) > maxTaskIDLength {
		return fmt.Errorf("task ID %q exceeds maximum length of %d characters", s, maxTaskIDLength)
	}

	if strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) >= 0 {
		return fmt.Errorf("task ID %q cannot contain whitespace or control characters", s)
	}

	return nil
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}
