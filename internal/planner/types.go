package planner

import "github.com/felixgeelhaar/smartplan/internal/plan"

// Request asks for a plan for Goal. When Tasks is nil the configured
// generator supplies them; an explicit empty list yields an empty plan.
type Request struct {
	Goal        string            `json:"goal" yaml:"goal"`
	Deadline    string            `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Preferences *PreferencesInput `json:"preferences,omitempty" yaml:"preferences,omitempty"`
	Tasks       []plan.TaskRecord `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// PreferencesInput carries per-request overrides. Nil fields fall back to
// the configured defaults.
type PreferencesInput struct {
	WorkPerDayHours *float64 `json:"work_per_day_hours,omitempty" yaml:"work_per_day_hours,omitempty"`
}

// Task sources reported in responses, logs and metrics.
const (
	SourceRequest   = "request"
	SourceGenerator = "generator"
)

// Response is a created plan.
type Response struct {
	PlanID          string               `json:"plan_id" yaml:"plan_id"`
	Goal            string               `json:"goal" yaml:"goal"`
	GeneratedAt     string               `json:"generated_at" yaml:"generated_at"`
	Fingerprint     string               `json:"fingerprint" yaml:"fingerprint"`
	TaskSource      string               `json:"task_source" yaml:"task_source"`
	Preferences     plan.Preferences     `json:"preferences" yaml:"preferences"`
	Tasks           []plan.ScheduledTask `json:"tasks" yaml:"tasks"`
	TimelineSummary plan.TimelineSummary `json:"timeline_summary" yaml:"timeline_summary"`
}

// Plan returns the response as a plan.Plan.
func (r *Response) Plan() *plan.Plan {
	return &plan.Plan{Tasks: r.Tasks, Summary: r.TimelineSummary}
}
