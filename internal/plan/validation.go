package plan

import (
	"fmt"
	"math"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Validate checks if the Task is a well-formed record
func (t *Task) Validate() error {
	// Validate ID using domain TaskID value object
	if _, err := domain.NewTaskID(t.ID); err != nil {
		return errors.NewTaskInvalidError(t.ID, err.Error())
	}

	// Dependencies must at least be usable as ids; existence is the resolver's job
	for i, depID := range t.Dependencies {
		if strings.TrimSpace(depID) == "" {
			return errors.NewTaskInvalidError(t.ID, fmt.Sprintf("dependency at index %d is empty", i))
		}
	}

	// Zero is allowed and floors to a one-day task
	if math.IsNaN(t.EstHours) || math.IsInf(t.EstHours, 0) {
		return errors.NewTaskInvalidError(t.ID, "est_hours must be a finite number")
	}
	if t.EstHours < 0 {
		return errors.NewTaskInvalidError(t.ID, fmt.Sprintf("est_hours must not be negative, got %v", t.EstHours))
	}

	return nil
}

// ValidateTasks checks every record and rejects duplicate ids. It runs before
// the resolver so malformed input never reaches the graph code.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]int, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		if err := task.Validate(); err != nil {
			return atIndex(i, err)
		}
		if _, dup := seen[task.ID]; dup {
			return errors.NewTaskDuplicateError(task.ID, i)
		}
		seen[task.ID] = i
	}
	return nil
}

// atIndex names the record position in err's message so it survives
// boundaries that only report the coded message.
func atIndex(i int, err error) error {
	if spErr, ok := errors.As(err); ok {
		return spErr.AtIndex(i)
	}
	return fmt.Errorf("task at index %d: %w", i, err)
}

// dependencySet returns the task's dependencies with repeats removed,
// keeping first-seen order.
func dependencySet(t Task) []string {
	if len(t.Dependencies) < 2 {
		return t.Dependencies
	}
	seen := make(map[string]bool, len(t.Dependencies))
	out := make([]string, 0, len(t.Dependencies))
	for _, dep := range t.Dependencies {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		out = append(out, dep)
	}
	return out
}
