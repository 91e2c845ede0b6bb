package client

import "encoding/json"

// PlanRequest is the body of POST /plan. A nil Tasks slice asks the
// server's generator for tasks; an empty non-nil slice yields an empty plan.
type PlanRequest struct {
	Goal        string       `json:"goal"`
	Deadline    string       `json:"deadline,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Tasks       []Task       `json:"-"`
}

// MarshalJSON omits tasks only when Tasks is nil so an empty list reaches
// the server as [].
func (r PlanRequest) MarshalJSON() ([]byte, error) {
	type wire PlanRequest
	out := struct {
		wire
		Tasks *[]Task `json:"tasks,omitempty"`
	}{wire: wire(r)}
	if r.Tasks != nil {
		out.Tasks = &r.Tasks
	}
	return json.Marshal(out)
}

// Preferences overrides the server's scheduling defaults.
type Preferences struct {
	WorkPerDayHours float64 `json:"work_per_day_hours"`
}

// Task is a unit of work sent to or returned by the server.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	EstHours     float64  `json:"est_hours"`
}

// ScheduledTask is a task with its calendar span. Dates are YYYY-MM-DD.
type ScheduledTask struct {
	Task
	EarliestStart string `json:"earliest_start"`
	LatestEnd     string `json:"latest_end"`
}

// DeadlineCheck reports whether the plan ends on or before the deadline.
type DeadlineCheck struct {
	Deadline  string `json:"deadline"`
	Feasible  bool   `json:"feasible"`
	SlackDays int    `json:"slack_days"`
}

// TimelineSummary bounds the plan. StartDate and EndDate are empty for an
// empty plan.
type TimelineSummary struct {
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	TotalTasks int            `json:"total_tasks"`
	Deadline   *DeadlineCheck `json:"deadline,omitempty"`
}

// Plan is the response of POST /plan.
type Plan struct {
	PlanID          string          `json:"plan_id"`
	Goal            string          `json:"goal"`
	GeneratedAt     string          `json:"generated_at"`
	Fingerprint     string          `json:"fingerprint"`
	TaskSource      string          `json:"task_source"`
	Preferences     Preferences     `json:"preferences"`
	Tasks           []ScheduledTask `json:"tasks"`
	TimelineSummary TimelineSummary `json:"timeline_summary"`
}
