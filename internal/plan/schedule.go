package plan

import (
	"time"

	"github.com/felixgeelhaar/smartplan/internal/domain"
)

// Options controls a scheduling run.
type Options struct {
	// Now supplies the clock reading that fixes the project start date.
	// Defaults to time.Now. It is read exactly once per run.
	Now func() time.Time

	// Deadline, when set, adds an advisory DeadlineCheck to the summary.
	// It never changes any date.
	Deadline *domain.Date
}

// ProjectStart returns the UTC calendar date the run starts on.
func (o Options) ProjectStart() domain.Date {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return domain.DateOf(now())
}

// Schedule validates tasks and prefs, orders the tasks, and projects them
// onto the calendar. Errors are returned unchanged from the failing stage so
// callers can classify them; no partial plan is ever returned.
func Schedule(tasks []Task, prefs Preferences, opts Options) (*Plan, error) {
	return ScheduleFrom(tasks, prefs, opts.ProjectStart(), opts.Deadline)
}

// ScheduleFrom is Schedule with an explicit project start date.
func ScheduleFrom(tasks []Task, prefs Preferences, start domain.Date, deadline *domain.Date) (*Plan, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateTasks(tasks); err != nil {
		return nil, err
	}

	ordered, err := Order(tasks)
	if err != nil {
		return nil, err
	}

	scheduled, err := Project(ordered, prefs, start)
	if err != nil {
		return nil, err
	}

	p := &Plan{Tasks: scheduled, Summary: Summarize(scheduled)}
	if deadline != nil && p.Summary.EndDate != nil {
		check := CheckDeadline(*p.Summary.EndDate, *deadline)
		p.Summary.Deadline = &check
	}
	return p, nil
}
