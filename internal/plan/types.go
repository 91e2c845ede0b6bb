package plan

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// DefaultWorkPerDayHours is the daily capacity used when none is configured.
const DefaultWorkPerDayHours = 4.0

// Task is a unit of work with declared dependencies and an effort estimate.
// Title and Description are opaque to the scheduler.
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
	EstHours     float64  `json:"est_hours" yaml:"est_hours"`
}

// Preferences holds the scheduling-relevant configuration of one run.
// It is passed by value; there is no shared default instance.
type Preferences struct {
	WorkPerDayHours float64 `json:"work_per_day_hours" yaml:"work_per_day_hours"`
}

// DefaultPreferences returns a fresh Preferences with the default capacity.
func DefaultPreferences() Preferences {
	return Preferences{WorkPerDayHours: DefaultWorkPerDayHours}
}

// Validate rejects capacities that would make durations meaningless.
func (p Preferences) Validate() error {
	h := p.WorkPerDayHours
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return errors.NewPreferenceInvalidError("work_per_day_hours", h)
	}
	return nil
}

// MaxDurationDays bounds a single task. It is the span from 0001-01-01 to
// domain.LastDate, so no task that fits a printable calendar is rejected.
const MaxDurationDays = 3652059

// DurationDays returns max(1, ceil(hours / WorkPerDayHours)). It fails when
// the quotient is not a number or exceeds MaxDurationDays. Callers must
// validate p first.
func (p Preferences) DurationDays(hours float64) (int, error) {
	days := math.Ceil(hours / p.WorkPerDayHours)
	switch {
	case math.IsNaN(days):
		return 0, fmt.Errorf("est_hours %v with work_per_day_hours %v gives no duration", hours, p.WorkPerDayHours)
	case days > MaxDurationDays:
		return 0, fmt.Errorf("est_hours %v at %v hours per day exceeds %d days", hours, p.WorkPerDayHours, MaxDurationDays)
	case days < 1:
		return 1, nil
	}
	return int(days), nil
}

// ScheduledTask is a Task annotated with its computed dates.
type ScheduledTask struct {
	Task
	EarliestStart domain.Date `json:"earliest_start" yaml:"earliest_start"`
	LatestEnd     domain.Date `json:"latest_end" yaml:"latest_end"`
}

// DurationDays returns the inclusive number of days between start and end.
func (s ScheduledTask) DurationDays() int {
	return s.EarliestStart.DaysUntil(s.LatestEnd) + 1
}

// TimelineSummary describes the overall bounds of a plan.
type TimelineSummary struct {
	StartDate  *domain.Date   `json:"start_date" yaml:"start_date"`
	EndDate    *domain.Date   `json:"end_date" yaml:"end_date"`
	TotalTasks int            `json:"total_tasks" yaml:"total_tasks"`
	Deadline   *DeadlineCheck `json:"deadline,omitempty" yaml:"deadline,omitempty"`
}

// DeadlineCheck is an advisory comparison of the plan end with a deadline.
// It never changes the schedule.
type DeadlineCheck struct {
	Deadline  domain.Date `json:"deadline" yaml:"deadline"`
	Feasible  bool        `json:"feasible" yaml:"feasible"`
	SlackDays int         `json:"slack_days" yaml:"slack_days"`
}

// Plan is the ordered list of scheduled tasks plus its summary.
type Plan struct {
	Tasks   []ScheduledTask `json:"tasks" yaml:"tasks"`
	Summary TimelineSummary `json:"timeline_summary" yaml:"timeline_summary"`
}

// Order returns the task ids in processing order.
func (p *Plan) Order() []string {
	ids := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Task looks up a scheduled task by id.
func (p *Plan) Task(id string) (ScheduledTask, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return ScheduledTask{}, false
}
