package plan

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// TaskFile is the on-disk input format accepted by the CLI. JSON files parse
// as well since the YAML decoder accepts JSON documents.
type TaskFile struct {
	Tasks       []TaskRecord `yaml:"tasks" json:"tasks"`
	Preferences *struct {
		WorkPerDayHours *float64 `yaml:"work_per_day_hours" json:"work_per_day_hours"`
	} `yaml:"preferences,omitempty" json:"preferences,omitempty"`
	Deadline string `yaml:"deadline,omitempty" json:"deadline,omitempty"`
}

// LoadTasks reads a TaskFile from a YAML or JSON file
func LoadTasks(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read task file: %s", path), err)
	}

	var f TaskFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	return &f, nil
}

// Records converts the file into validated tasks, merged preferences and an
// optional deadline. defaults supplies the capacity when the file has none.
func (f *TaskFile) Records(defaults Preferences) ([]Task, Preferences, *domain.Date, error) {
	tasks, err := ToTasks(f.Tasks)
	if err != nil {
		return nil, Preferences{}, nil, err
	}

	prefs := defaults
	if f.Preferences != nil && f.Preferences.WorkPerDayHours != nil {
		prefs.WorkPerDayHours = *f.Preferences.WorkPerDayHours
	}

	var deadline *domain.Date
	if f.Deadline != "" {
		d, err := domain.ParseDate(f.Deadline)
		if err != nil {
			return nil, Preferences{}, nil, errors.Wrap(errors.ErrCodeDeadlineInvalid, "invalid deadline", err)
		}
		deadline = &d
	}

	return tasks, prefs, deadline, nil
}

// SavePlan writes a Plan to a JSON file
func SavePlan(p *Plan, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal plan", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("write plan file: %s", path), err)
	}

	return nil
}
