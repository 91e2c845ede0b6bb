package plan

import (
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// TaskRecord is a task as it arrives from an external source (request body,
// task file, generator). Pointer fields distinguish a missing value from a
// zero value.
type TaskRecord struct {
	ID           string   `json:"id" yaml:"id"`
	Title        *string  `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	EstHours     *float64 `json:"est_hours" yaml:"est_hours"`
}

// ToTask converts the record after checking its required fields.
func (r TaskRecord) ToTask() (Task, error) {
	var missing []string
	if strings.TrimSpace(r.ID) == "" {
		missing = append(missing, "id")
	}
	if r.Title == nil || strings.TrimSpace(*r.Title) == "" {
		missing = append(missing, "title")
	}
	if r.EstHours == nil {
		missing = append(missing, "est_hours")
	}
	if len(missing) > 0 {
		return Task{}, errors.NewTaskInvalidError(r.ID, "missing required field(s): "+strings.Join(missing, ", "))
	}

	t := Task{
		ID:           r.ID,
		Title:        *r.Title,
		Description:  r.Description,
		Dependencies: append([]string{}, r.Dependencies...),
		EstHours:     *r.EstHours,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// ToTasks converts records in order, stopping at the first malformed one.
func ToTasks(records []TaskRecord) ([]Task, error) {
	tasks := make([]Task, 0, len(records))
	for i, r := range records {
		t, err := r.ToTask()
		if err != nil {
			return nil, atIndex(i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Record converts a Task back to its wire form.
func (t Task) Record() TaskRecord {
	title := t.Title
	hours := t.EstHours
	return TaskRecord{
		ID:           t.ID,
		Title:        &title,
		Description:  t.Description,
		Dependencies: append([]string(nil), t.Dependencies...),
		EstHours:     &hours,
	}
}
