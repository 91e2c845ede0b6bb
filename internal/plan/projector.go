package plan

import (
	"fmt"

	"github.com/felixgeelhaar/smartplan/internal/domain"
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Project dates tasks in a single forward pass over ordered, which must list
// every task after its dependencies (the output of Order).
//
// A task without dependencies starts on start. Any other task starts the day
// after the latest end among its dependencies. A task lasts
// max(1, ceil(EstHours/WorkPerDayHours)) days and a one-day task starts and
// ends on the same date. A task that would end after domain.LastDate is
// TASK-001. Either every task is dated or an error is returned.
func Project(ordered []Task, prefs Preferences, start domain.Date) ([]ScheduledTask, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if start.IsZero() {
		return nil, fmt.Errorf("project: start date is required")
	}

	ends := make(map[string]domain.Date, len(ordered))
	out := make([]ScheduledTask, 0, len(ordered))
	for _, t := range ordered {
		taskStart := start
		if len(t.Dependencies) > 0 {
			var latest domain.Date
			for _, dep := range t.Dependencies {
				end, ok := ends[dep]
				if !ok {
					return nil, errors.New(errors.ErrCodeGraphOrderViolated,
						fmt.Sprintf("task %q is ordered before its dependency %q", t.ID, dep)).
						WithSuggestion("Pass tasks through plan.Order before projecting them")
				}
				latest = domain.MaxDate(latest, end)
			}
			taskStart = latest.AddDays(1)
		}

		days, err := prefs.DurationDays(t.EstHours)
		if err != nil {
			return nil, errors.NewTaskInvalidError(t.ID, err.Error())
		}
		if days > taskStart.DaysUntil(domain.LastDate)+1 {
			return nil, errors.NewTaskInvalidError(t.ID,
				fmt.Sprintf("starting %s, %d days would end after %s", taskStart, days, domain.LastDate))
		}
		end := taskStart.AddDays(days - 1)
		ends[t.ID] = end
		out = append(out, ScheduledTask{
			Task:          cloneTask(t),
			EarliestStart: taskStart,
			LatestEnd:     end,
		})
	}
	return out, nil
}

// cloneTask copies the dependency slice so scheduled output never aliases
// caller input.
func cloneTask(t Task) Task {
	if t.Dependencies != nil {
		deps := make([]string, len(t.Dependencies))
		copy(deps, t.Dependencies)
		t.Dependencies = deps
	}
	return t
}
