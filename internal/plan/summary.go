package plan

import "github.com/felixgeelhaar/smartplan/internal/domain"

// Summarize computes the timeline bounds of scheduled tasks: the earliest
// start and the latest end over all of them, not just the first and last in
// processing order. An empty input yields nil dates.
func Summarize(tasks []ScheduledTask) TimelineSummary {
	summary := TimelineSummary{TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return summary
	}

	start, end := tasks[0].EarliestStart, tasks[0].LatestEnd
	for _, t := range tasks[1:] {
		start = domain.MinDate(start, t.EarliestStart)
		end = domain.MaxDate(end, t.LatestEnd)
	}
	summary.StartDate = &start
	summary.EndDate = &end
	return summary
}

// CheckDeadline compares a plan end date with a deadline. SlackDays is
// negative when the plan overruns.
func CheckDeadline(end, deadline domain.Date) DeadlineCheck {
	slack := end.DaysUntil(deadline)
	return DeadlineCheck{
		Deadline:  deadline,
		Feasible:  slack >= 0,
		SlackDays: slack,
	}
}
