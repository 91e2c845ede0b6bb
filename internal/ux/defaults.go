package ux

import "os"

// PathDefaults provides the conventional file names used by the CLI.
type PathDefaults struct {
	TasksFile  string
	PlanFile   string
	ConfigFile string
}

// NewPathDefaults creates a new PathDefaults with sensible defaults
func NewPathDefaults() *PathDefaults {
	return &PathDefaults{
		TasksFile:  "tasks.yaml",
		PlanFile:   "plan.json",
		ConfigFile: "smartplan.yaml",
	}
}

// ResolveTasksFile returns path, or the default tasks file when path is
// empty.
func (pd *PathDefaults) ResolveTasksFile(path string) string {
	if path != "" {
		return path
	}
	return pd.TasksFile
}

// SuggestNextSteps provides contextual next steps based on what exists
func SuggestNextSteps() string {
	defaults := NewPathDefaults()

	if _, err := os.Stat(defaults.TasksFile); os.IsNotExist(err) {
		return "create tasks.yaml with a tasks list, or run 'smartplan plan --goal \"...\"' to generate one"
	}
	if _, err := os.Stat(defaults.PlanFile); os.IsNotExist(err) {
		return "run 'smartplan schedule --in tasks.yaml --out plan.json'"
	}
	return "run 'smartplan validate --in tasks.yaml' to check the task graph"
}
